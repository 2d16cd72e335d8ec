package lightcurve

import "math"

// NearestIndex returns the index of the element of a closest to v in
// absolute difference. Ties resolve to the lowest index.
func NearestIndex(a []float64, v float64) (int, error) {
	if len(a) == 0 {
		return 0, &InvalidInputError{Param: "array", Reason: "is empty"}
	}

	best := 0
	bestDiff := math.Abs(a[0] - v)
	for i := 1; i < len(a); i++ {
		d := math.Abs(a[i] - v)
		if d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best, nil
}

// NearestIndexND returns the row index of points whose summed absolute
// difference from target is minimal. Rows shorter than target contribute
// only their available components. Ties resolve to the lowest index.
func NearestIndexND(points [][]float64, target []float64) (int, error) {
	if len(points) == 0 {
		return 0, &InvalidInputError{Param: "points", Reason: "is empty"}
	}

	best := 0
	bestDiff := math.Inf(1)
	for i, row := range points {
		var d float64
		for j, v := range row {
			if j < len(target) {
				d += math.Abs(v - target[j])
			} else {
				d += math.Abs(v)
			}
		}
		if d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best, nil
}
