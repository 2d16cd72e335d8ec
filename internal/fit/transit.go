package fit

import "math"

// QuadLimbDark is the built-in transit-depth model: a circular orbit
// (e=0, omega=90 deg) with a quadratic limb darkening law
// I(mu) = 1 - u1*(1-mu) - u2*(1-mu)^2. The occulted flux is integrated
// numerically over annuli of the stellar disk, so the curve is accurate
// for any radius ratio the fitter's bounds allow.
type QuadLimbDark struct {
	// Rings is the number of integration annuli per sample; 0 uses
	// DefaultRings.
	Rings int
}

// DefaultRings gives flux accurate to a few 1e-7, well below the
// photometric noise floor of any real light curve.
const DefaultRings = 600

// LightCurve returns the dimensionless transit curve at the given times:
// 1.0 out of transit, dipping below 1.0 while the planet crosses the
// stellar disk.
func (m QuadLimbDark) LightCurve(t []float64, p Params) []float64 {
	rings := m.Rings
	if rings <= 0 {
		rings = DefaultRings
	}

	incRad := p.Inc * math.Pi / 180
	cosI := math.Cos(incRad)
	// Total disk intensity for a quadratic law, in units of pi.
	total := 1 - p.U1/3 - p.U2/6

	flux := make([]float64, len(t))
	for i, ti := range t {
		phase := 2 * math.Pi * (ti - p.T0) / p.Period
		sinPhi, cosPhi := math.Sincos(phase)

		// cos(phase) <= 0 puts the planet behind the star (secondary
		// eclipse side); no transit dip there.
		if cosPhi <= 0 {
			flux[i] = 1
			continue
		}

		// Sky-projected star-planet separation in stellar radii.
		z := p.ARs * math.Sqrt(sinPhi*sinPhi+cosI*cosI*cosPhi*cosPhi)
		if z >= 1+p.RpRs {
			flux[i] = 1
			continue
		}

		occ := occultedFlux(z, p.RpRs, p.U1, p.U2, rings)
		flux[i] = 1 - occ/(math.Pi*total)
	}
	return flux
}

// occultedFlux integrates the limb-darkened intensity over the part of
// the stellar disk covered by a planet of radius rp at separation z.
func occultedFlux(z, rp, u1, u2 float64, rings int) float64 {
	rLo := math.Max(0, z-rp)
	rHi := math.Min(1, z+rp)
	if rHi <= rLo {
		return 0
	}

	dr := (rHi - rLo) / float64(rings)
	var sum float64
	for k := 0; k < rings; k++ {
		r := rLo + (float64(k)+0.5)*dr

		// Half-angle of the occulted arc of the annulus at radius r.
		var alpha float64
		switch {
		case r <= rp-z:
			alpha = math.Pi
		case r >= z+rp || r <= z-rp:
			continue
		default:
			cosA := (z*z + r*r - rp*rp) / (2 * z * r)
			alpha = math.Acos(clamp(cosA, -1, 1))
		}

		mu := math.Sqrt(math.Max(0, 1-r*r))
		oneMinusMu := 1 - mu
		intensity := 1 - u1*oneMinusMu - u2*oneMinusMu*oneMinusMu
		sum += intensity * 2 * alpha * r * dr
	}
	return sum
}
