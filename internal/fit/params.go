package fit

import "math"

// Params holds the seven transit parameters in their fixed fit ordering:
// t0, period, a/Rs, Rp/Rs, inclination, u1, u2.
type Params struct {
	T0     float64 // Mid-transit time (BJD)
	Period float64 // Orbital period (days)
	ARs    float64 // Semi-major axis in stellar radii
	RpRs   float64 // Planet-to-star radius ratio
	Inc    float64 // Orbital inclination (degrees)
	U1, U2 float64 // Quadratic limb darkening coefficients
}

// NumParams is the dimensionality of the fit parameter space.
const NumParams = 7

// ParamNames gives the human-readable name for each vector slot.
var ParamNames = [NumParams]string{
	"Mid-transit time (t0)",
	"Period",
	"a/Rs",
	"Rp/Rs",
	"Inclination (deg)",
	"u1",
	"u2",
}

// Vector encodes the parameters as a flat slice in fit ordering.
func (p Params) Vector() []float64 {
	return []float64{p.T0, p.Period, p.ARs, p.RpRs, p.Inc, p.U1, p.U2}
}

// FromVector decodes a parameter vector in fit ordering.
func FromVector(v []float64) Params {
	return Params{
		T0:     v[0],
		Period: v[1],
		ARs:    v[2],
		RpRs:   v[3],
		Inc:    v[4],
		U1:     v[5],
		U2:     v[6],
	}
}

// Bounds defines the box constraints for the optimizer.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// DefaultBounds returns the fixed search region used by the fitter:
// t0 within the observation window, period within ±1 hour of the known
// period, and the standard physical ranges for the remaining parameters.
func DefaultBounds(tFirst, tLast, period float64) Bounds {
	return Bounds{
		Lower: []float64{tFirst, period - 1.0/24, 2.0, 0.01, 80.0, 0.0, 0.01},
		Upper: []float64{tLast, period + 1.0/24, 50.0, 0.20, 90.0, 1.0, 1.0},
	}
}

// Contains reports whether v lies within the bounds (inclusive).
func (b Bounds) Contains(v []float64) bool {
	for i := range v {
		if v[i] < b.Lower[i] || v[i] > b.Upper[i] {
			return false
		}
	}
	return true
}

// Clamp limits every component of v to its bound interval, in place.
func (b Bounds) Clamp(v []float64) {
	for i := range v {
		v[i] = clamp(v[i], b.Lower[i], b.Upper[i])
	}
}

func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
