package fit

import "fmt"

// ValidationError reports malformed fit input. Field identifies the
// offending argument so callers can tell a length mismatch ("flux") from
// an undersized series ("time") without parsing the message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// InsufficientDataError reports that the baseline fit was handed fewer
// distinct samples than its polynomial degree requires.
type InsufficientDataError struct {
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: baseline fit needs %d distinct time samples, got %d", e.Needed, e.Got)
}

func (e *InsufficientDataError) Is(target error) bool {
	_, ok := target.(*InsufficientDataError)
	return ok
}

// FitDidNotConvergeError reports that the optimizer exhausted its
// evaluation budget or hit a numerically singular configuration. The
// underlying solver error is available via Unwrap.
type FitDidNotConvergeError struct {
	FunEvals int
	Err      error
}

func (e *FitDidNotConvergeError) Error() string {
	return fmt.Sprintf("fit did not converge after %d function evaluations: %v", e.FunEvals, e.Err)
}

func (e *FitDidNotConvergeError) Unwrap() error { return e.Err }

func (e *FitDidNotConvergeError) Is(target error) bool {
	_, ok := target.(*FitDidNotConvergeError)
	return ok
}
