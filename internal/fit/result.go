package fit

import "math"

// Result is the terminal output of one fit run. It is created once per
// Fit call and never mutated afterwards.
type Result struct {
	// Params is the optimized parameter vector.
	Params Params `json:"params"`

	// Sigma holds the 1-sigma uncertainty of each parameter, same
	// ordering as Params (square root of the covariance diagonal).
	Sigma Params `json:"sigma"`

	// Covariance is the full 7x7 parameter covariance matrix.
	Covariance [][]float64 `json:"covariance"`

	// Guess is the initial parameter vector handed to the optimizer.
	Guess Params `json:"guess"`

	// BestFit is the composite model evaluated at the input times with
	// the optimized parameters.
	BestFit []float64 `json:"bestFit"`

	// GuessFit is the composite model evaluated with the initial guess,
	// kept for the diagnostic plot.
	GuessFit []float64 `json:"guessFit,omitempty"`

	// Residuals is observed minus best-fit flux.
	Residuals []float64 `json:"residuals"`

	// RMS is the root mean square of the residuals.
	RMS float64 `json:"rms"`

	// FunEvals is the number of model evaluations the optimizer used.
	FunEvals int `json:"funEvals"`

	// NPoints is the number of fitted samples.
	NPoints int `json:"nPoints"`

	// WindowStart and WindowEnd are the nearest-sample indices of the
	// in-transit window; samples in [WindowStart, WindowEnd) were
	// excluded from the baseline fit.
	WindowStart int `json:"windowStart"`
	WindowEnd   int `json:"windowEnd"`

	// BaselineTrend is the fitted quadratic baseline.
	BaselineTrend Baseline `json:"baseline"`
}

// rms returns sqrt(mean(v^2)).
func rms(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(v)))
}
