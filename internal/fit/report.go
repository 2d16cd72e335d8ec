package fit

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteReport renders the human-readable fit summary: guesses versus
// best-fit values with units. Rendering is a best-effort side effect and
// has no influence on the Result itself.
func WriteReport(w io.Writer, res *Result) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TRANSIT FIT RESULTS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "\nRMS residuals: %.6f\n", res.RMS)
	fmt.Fprintf(w, "Number of data points: %d\n", res.NPoints)

	guess := res.Guess.Vector()
	best := res.Params.Vector()
	sigma := res.Sigma.Vector()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(w, "\nInitial parameter guesses:")
	for i, name := range ParamNames {
		fmt.Fprintf(tw, "  %s:\t%s\n", name, formatValue(i, guess[i]))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nBest-fit parameters:")
	for i, name := range ParamNames {
		fmt.Fprintf(tw, "  %s:\t%s\n", name, formatValueErr(i, best[i], sigma[i]))
	}
	return tw.Flush()
}

// Slot indices with dedicated units in the report.
const (
	slotT0     = 0
	slotPeriod = 1
	slotInc    = 4
)

func formatValue(slot int, v float64) string {
	switch slot {
	case slotT0:
		return fmt.Sprintf("%.6f BJD", v)
	case slotPeriod:
		return fmt.Sprintf("%.6f days", v)
	case slotInc:
		return fmt.Sprintf("%.2f deg", v)
	default:
		return fmt.Sprintf("%.6f", v)
	}
}

func formatValueErr(slot int, v, err float64) string {
	switch slot {
	case slotT0:
		return fmt.Sprintf("%.6f +/- %.6f BJD", v, err)
	case slotPeriod:
		return fmt.Sprintf("%.6f +/- %.6f days", v, err)
	case slotInc:
		return fmt.Sprintf("%.2f +/- %.2f deg", v, err)
	default:
		return fmt.Sprintf("%.6f +/- %.6f", v, err)
	}
}
