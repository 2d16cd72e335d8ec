package fit

import "testing"

func TestParamsVectorRoundTrip(t *testing.T) {
	p := Params{
		T0:     2459001.234,
		Period: 3.52,
		ARs:    11.2,
		RpRs:   0.094,
		Inc:    88.7,
		U1:     0.41,
		U2:     0.27,
	}

	v := p.Vector()
	if len(v) != NumParams {
		t.Fatalf("vector length %d, want %d", len(v), NumParams)
	}
	got := FromVector(v)
	if got != p {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestDefaultBounds(t *testing.T) {
	b := DefaultBounds(100, 110, 3.5)

	if len(b.Lower) != NumParams || len(b.Upper) != NumParams {
		t.Fatalf("bounds length %d/%d, want %d", len(b.Lower), len(b.Upper), NumParams)
	}
	for i := range b.Lower {
		if b.Lower[i] > b.Upper[i] {
			t.Errorf("bounds[%d] inverted: [%v, %v]", i, b.Lower[i], b.Upper[i])
		}
	}

	// t0 within the observation window.
	if b.Lower[0] != 100 || b.Upper[0] != 110 {
		t.Errorf("t0 bounds [%v, %v], want [100, 110]", b.Lower[0], b.Upper[0])
	}
	// Period within one hour of the known value.
	if b.Lower[1] != 3.5-1.0/24 || b.Upper[1] != 3.5+1.0/24 {
		t.Errorf("period bounds [%v, %v]", b.Lower[1], b.Upper[1])
	}
	// Inclination range in degrees.
	if b.Lower[4] != 80 || b.Upper[4] != 90 {
		t.Errorf("inclination bounds [%v, %v], want [80, 90]", b.Lower[4], b.Upper[4])
	}
}

func TestBoundsClampAndContains(t *testing.T) {
	b := DefaultBounds(0, 10, 3.5)

	v := []float64{-5, 3.5, 100, 0.05, 85, 0.5, 0.5}
	if b.Contains(v) {
		t.Error("Contains accepted an out-of-bounds vector")
	}
	b.Clamp(v)
	if !b.Contains(v) {
		t.Errorf("clamped vector still out of bounds: %v", v)
	}
	if v[0] != 0 || v[2] != 50 {
		t.Errorf("clamp produced %v, want t0=0 and a/Rs=50", v)
	}
}
