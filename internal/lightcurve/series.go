// Package lightcurve holds the time/flux series type and the small
// ephemeris and index helpers the fitter is built on.
package lightcurve

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Series is an ordered photometric time series: time in BJD, flux
// normalized to unity out of transit. Both slices have equal length and
// are owned by the caller; Series never mutates them.
type Series struct {
	Time []float64
	Flux []float64
}

// NewSeries validates lengths and wraps the slices.
func NewSeries(time, flux []float64) (Series, error) {
	if len(time) != len(flux) {
		return Series{}, fmt.Errorf("time and flux length mismatch: %d vs %d", len(time), len(flux))
	}
	return Series{Time: time, Flux: flux}, nil
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.Time) }

// LoadCSV reads a two-column (time,flux) CSV light curve. A non-numeric
// first row is treated as a header and skipped.
func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("failed to open light curve: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses a two-column CSV light curve from r.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var time, flux []float64
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("failed to read light curve row %d: %w", row+1, err)
		}
		row++

		t, terr := strconv.ParseFloat(rec[0], 64)
		fl, ferr := strconv.ParseFloat(rec[1], 64)
		if terr != nil || ferr != nil {
			if row == 1 {
				// Header row
				continue
			}
			return Series{}, fmt.Errorf("non-numeric value in light curve row %d: %q,%q", row, rec[0], rec[1])
		}
		time = append(time, t)
		flux = append(flux, fl)
	}

	return NewSeries(time, flux)
}
