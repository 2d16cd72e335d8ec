package server

import (
	"fmt"

	"github.com/avollmer/transitfit/internal/lightcurve"
)

// loadSeries resolves a job's light curve: from the CSV path if given,
// otherwise from the inline arrays.
func loadSeries(cfg JobConfig) (lightcurve.Series, error) {
	if cfg.CSVPath != "" {
		series, err := lightcurve.LoadCSV(cfg.CSVPath)
		if err != nil {
			return lightcurve.Series{}, fmt.Errorf("failed to read %s: %w", cfg.CSVPath, err)
		}
		return series, nil
	}
	return lightcurve.NewSeries(cfg.Time, cfg.Flux)
}
