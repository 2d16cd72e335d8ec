package fit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Baseline is the quadratic trend a*t^2 + b*t + c fitted to the
// out-of-transit flux. It is an immutable value: fit once per Fit call,
// then evaluated read-only by every optimizer iteration, so concurrent
// evaluation is safe.
type Baseline struct {
	A, B, C float64
}

// FitBaseline fits a second-degree polynomial to the given samples by
// linear least squares. At least three distinct time values are required
// for a degree-2 fit.
func FitBaseline(time, flux []float64) (Baseline, error) {
	if len(time) != len(flux) {
		return Baseline{}, &ValidationError{Field: "flux", Reason: fmt.Sprintf("length %d does not match time length %d", len(flux), len(time))}
	}
	if n := countDistinct(time); n < 3 {
		return Baseline{}, &InsufficientDataError{Needed: 3, Got: n}
	}

	m := len(time)
	v := mat.NewDense(m, 3, nil)
	y := mat.NewVecDense(m, nil)
	for i, t := range time {
		v.Set(i, 0, t*t)
		v.Set(i, 1, t)
		v.Set(i, 2, 1)
		y.SetVec(i, flux[i])
	}

	var qr mat.QR
	qr.Factorize(v)

	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, y); err != nil {
		return Baseline{}, fmt.Errorf("baseline least squares failed: %w", err)
	}

	return Baseline{A: coef.AtVec(0), B: coef.AtVec(1), C: coef.AtVec(2)}, nil
}

// Eval returns the baseline flux at time t.
func (b Baseline) Eval(t float64) float64 {
	return b.A*t*t + b.B*t + b.C
}

// EvalAll evaluates the baseline at every time in t, appending into dst
// if it has capacity.
func (b Baseline) EvalAll(dst, t []float64) []float64 {
	if cap(dst) < len(t) {
		dst = make([]float64, len(t))
	}
	dst = dst[:len(t)]
	for i, ti := range t {
		dst[i] = b.Eval(ti)
	}
	return dst
}

func countDistinct(vals []float64) int {
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}
