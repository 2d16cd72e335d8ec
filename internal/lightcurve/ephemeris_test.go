package lightcurve

import (
	"errors"
	"math"
	"testing"
)

func TestNextTransit(t *testing.T) {
	tests := []struct {
		name   string
		ref    float64
		period float64
		start  float64
		want   float64
	}{
		{"start before reference", 100.0, 3.5, 50.0, 51.0},
		{"start at reference", 100.0, 3.5, 100.0, 100.0},
		{"start just after reference", 100.0, 3.5, 100.1, 103.5},
		{"start many periods later", 100.0, 3.5, 1000.0, 1003.0},
		{"exactly on a later transit", 0.0, 2.0, 10.0, 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextTransit(tt.ref, tt.period, tt.start)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NextTransit(%v, %v, %v) = %v, want %v",
					tt.ref, tt.period, tt.start, got, tt.want)
			}
		})
	}
}

// The result must be the first term of the ephemeris at or after start,
// regardless of how far start is from the reference epoch.
func TestNextTransitProperties(t *testing.T) {
	cases := []struct{ ref, period, start float64 }{
		{2454833.0, 3.52474859, 2459000.1},
		{0, 0.7, 1e7},
		{-500, 13.2, 499.9},
		{2450000, 1.0 / 24, 2450123.456},
	}

	for _, c := range cases {
		r, err := NextTransit(c.ref, c.period, c.start)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r < c.start {
			t.Errorf("result %v precedes start %v", r, c.start)
		}
		if r >= c.start+c.period {
			t.Errorf("result %v is not the first transit after %v (period %v)", r, c.start, c.period)
		}
		// (r - ref) must be an integer number of periods.
		k := (r - c.ref) / c.period
		if math.Abs(k-math.Round(k)) > 1e-6 {
			t.Errorf("result %v is off the ephemeris grid: k=%v", r, k)
		}
	}
}

func TestNextTransitInvalidPeriod(t *testing.T) {
	for _, p := range []float64{0, -1} {
		_, err := NextTransit(100, p, 50)
		if !errors.Is(err, &InvalidInputError{}) {
			t.Errorf("period %v: expected InvalidInputError, got %v", p, err)
		}
	}
}
