package fit

import (
	"errors"
	"math"
	"testing"
)

func TestFitBaselineRoundTrip(t *testing.T) {
	// Noiseless samples of an exact quadratic must reproduce it at
	// held-out times.
	a, b, c := 2e-5, -0.004, 1.02
	f := func(t float64) float64 { return a*t*t + b*t + c }

	var time, flux []float64
	for i := 0; i < 40; i++ {
		ti := 100.0 + float64(i)*0.25
		time = append(time, ti)
		flux = append(flux, f(ti))
	}

	base, err := FitBaseline(time, flux)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ti := range []float64{99.0, 103.13, 111.7, 120.0} {
		got := base.Eval(ti)
		want := f(ti)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Eval(%v) = %v, want %v", ti, got, want)
		}
	}
}

func TestFitBaselineMinimumSamples(t *testing.T) {
	// Exactly 3 distinct times is the degree-2 minimum.
	time := []float64{0, 1, 2}
	flux := []float64{1, 2, 5} // t^2 + 1
	base, err := FitBaseline(time, flux)
	if err != nil {
		t.Fatalf("3 distinct points should fit: %v", err)
	}
	if math.Abs(base.Eval(3)-10) > 1e-9 {
		t.Errorf("Eval(3) = %v, want 10", base.Eval(3))
	}

	for _, tc := range [][]float64{{}, {1}, {1, 2}} {
		flux := make([]float64, len(tc))
		_, err := FitBaseline(tc, flux)
		if !errors.Is(err, &InsufficientDataError{}) {
			t.Errorf("%d points: expected InsufficientDataError, got %v", len(tc), err)
		}
	}

	// Repeated times do not count as distinct samples.
	_, err = FitBaseline([]float64{1, 1, 1, 2}, []float64{5, 5, 5, 6})
	if !errors.Is(err, &InsufficientDataError{}) {
		t.Errorf("2 distinct of 4 points: expected InsufficientDataError, got %v", err)
	}
}

func TestBaselineEvalAll(t *testing.T) {
	base := Baseline{A: 1, B: 0, C: -1}
	out := base.EvalAll(nil, []float64{0, 1, 2})
	want := []float64{-1, 0, 3}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("EvalAll[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}
