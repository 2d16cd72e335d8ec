package lightcurve

import "fmt"

// InvalidInputError reports a degenerate argument to one of the numeric
// helpers (empty array, non-positive period). Use
// errors.Is(err, &InvalidInputError{}) to check for this error kind.
type InvalidInputError struct {
	Param  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Param, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	_, ok := target.(*InvalidInputError)
	return ok
}
