package fit

// TransitModel produces a dimensionless transit light curve for a
// parameter set: 1.0 outside transit, below 1.0 during transit. The
// fitter depends only on this capability, not on any particular model
// implementation. Implementations must be pure: repeated evaluation with
// identical inputs returns identical output.
type TransitModel interface {
	LightCurve(t []float64, p Params) []float64
}

// CompositeModel multiplies a transit model by an instrumental baseline
// trend. The baseline is fit once, before optimization begins, and is an
// immutable value here, so evaluation has no hidden state to mutate.
type CompositeModel struct {
	Transit  TransitModel
	Baseline Baseline
}

// Eval returns the predicted observed flux at the given times.
func (m CompositeModel) Eval(t []float64, p Params) []float64 {
	flux := m.Transit.LightCurve(t, p)
	for i, ti := range t {
		flux[i] *= m.Baseline.Eval(ti)
	}
	return flux
}
