package main

import (
	"fmt"

	"github.com/avollmer/transitfit/internal/lightcurve"
	"github.com/spf13/cobra"
)

var (
	predictPeriod float64
	predictT0     float64
	predictAfter  float64
	predictCount  int
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict upcoming transit times from an ephemeris",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().Float64Var(&predictPeriod, "period", 0, "Orbital period in days (required)")
	predictCmd.Flags().Float64Var(&predictT0, "t0", 0, "Reference transit epoch in BJD (required)")
	predictCmd.Flags().Float64Var(&predictAfter, "after", 0, "Earliest acceptable time in BJD (required)")
	predictCmd.Flags().IntVar(&predictCount, "count", 1, "Number of successive transits to print")

	predictCmd.MarkFlagRequired("period")
	predictCmd.MarkFlagRequired("t0")
	predictCmd.MarkFlagRequired("after")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	next, err := lightcurve.NextTransit(predictT0, predictPeriod, predictAfter)
	if err != nil {
		return err
	}

	for i := 0; i < predictCount; i++ {
		fmt.Printf("%.6f\n", next+float64(i)*predictPeriod)
	}
	return nil
}
