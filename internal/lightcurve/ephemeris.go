package lightcurve

import "math"

// NextTransit returns the first transit time ref + k*period (k integer)
// at or after start. Computed closed-form so the cost stays O(1) even
// when start is many thousands of periods away from the reference epoch.
func NextTransit(ref, period, start float64) (float64, error) {
	if period <= 0 {
		return 0, &InvalidInputError{Param: "period", Reason: "must be positive"}
	}

	k := math.Ceil((start - ref) / period)
	t := ref + k*period
	// Guard against the ceiling landing one period short under roundoff.
	if t < start {
		t += period
	}
	return t, nil
}
