package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/avollmer/transitfit/internal/fit"
	"github.com/avollmer/transitfit/internal/lightcurve"
	"github.com/avollmer/transitfit/internal/opt"
	"github.com/spf13/cobra"
)

var (
	csvPath   string
	duration  float64
	period    float64
	refT0     float64
	aGuess    float64
	rpGuess   float64
	incGuess  float64
	useGlobal bool
	seed      int64
	plotPath  string
	outPath   string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a transit model to a light curve",
	Long: `Reads a time,flux CSV, fits the limb-darkened transit model plus a
quadratic baseline, and prints the fitted parameters with uncertainties.`,
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVar(&csvPath, "csv", "", "Light curve CSV path (required)")
	fitCmd.Flags().Float64Var(&duration, "duration", 0, "Known transit duration in days (required)")
	fitCmd.Flags().Float64Var(&period, "period", 0, "Known orbital period in days (required)")
	fitCmd.Flags().Float64Var(&refT0, "t0", 0, "Reference transit epoch in BJD (required)")
	fitCmd.Flags().Float64Var(&aGuess, "a", 10.0, "Scaled semi-major axis a/Rs initial guess")
	fitCmd.Flags().Float64Var(&rpGuess, "rp", 0.1, "Radius ratio Rp/Rs initial guess")
	fitCmd.Flags().Float64Var(&incGuess, "inc", 89.0, "Inclination initial guess in degrees")
	fitCmd.Flags().BoolVar(&useGlobal, "global", false, "Run a mayfly global pre-search before the local solve")
	fitCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the global pre-search")
	fitCmd.Flags().StringVar(&plotPath, "plot", "", "Write a fit plot PNG to this path")
	fitCmd.Flags().StringVar(&outPath, "out", "", "Write the full result JSON to this path")

	fitCmd.MarkFlagRequired("csv")
	fitCmd.MarkFlagRequired("duration")
	fitCmd.MarkFlagRequired("period")
	fitCmd.MarkFlagRequired("t0")
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	series, err := lightcurve.LoadCSV(csvPath)
	if err != nil {
		return fmt.Errorf("failed to load light curve: %w", err)
	}

	slog.Info("Loaded light curve", "csv", csvPath, "points", series.Len())

	solver := &opt.LevMar{
		MaxFunEvals: cfg.MaxFunEvals,
		CostTol:     cfg.CostTol,
	}
	fitter := &fit.Fitter{Solver: solver}
	if useGlobal || cfg.Global.Enabled {
		fitter.Global = opt.NewMayfly(cfg.Global.MaxIters, cfg.Global.PopSize, seed)
	}

	start := time.Now()
	res, err := fitter.Fit(fit.Request{
		Time:     series.Time,
		Flux:     series.Flux,
		Duration: duration,
		Period:   period,
		RefT0:    refT0,
		AGuess:   aGuess,
		RpGuess:  rpGuess,
		IncGuess: incGuess,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	slog.Info("Fit complete", "elapsed", elapsed, "rms", res.RMS, "fun_evals", res.FunEvals)

	if err := fit.WriteReport(os.Stdout, res); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if outPath != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize result: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		fmt.Printf("Wrote %s\n", outPath)
	}

	if plotPath != "" {
		if err := fit.SavePlot(plotPath, series.Time, series.Flux, res); err != nil {
			return fmt.Errorf("failed to write plot: %w", err)
		}
		fmt.Printf("Wrote %s\n", plotPath)
	}

	return nil
}
