package lightcurve

import (
	"strings"
	"testing"
)

func TestNewSeriesLengthMismatch(t *testing.T) {
	_, err := NewSeries([]float64{1, 2, 3}, []float64{1, 2})
	if err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{
			name:    "plain rows",
			input:   "2459000.0,1.0\n2459000.1,0.999\n2459000.2,1.001\n",
			wantLen: 3,
		},
		{
			name:    "header skipped",
			input:   "time,flux\n2459000.0,1.0\n2459000.1,0.999\n",
			wantLen: 2,
		},
		{
			name:    "non-numeric body row",
			input:   "2459000.0,1.0\nbad,row\n",
			wantErr: true,
		},
		{
			name:    "wrong column count",
			input:   "2459000.0,1.0,extra\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadCSV(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Len() != tt.wantLen {
				t.Errorf("got %d samples, want %d", s.Len(), tt.wantLen)
			}
		})
	}
}
