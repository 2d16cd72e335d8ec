// Package fit implements the transit-light-curve fitting pipeline: a
// physical transit model times a quadratic instrumental baseline, driven
// through bounded nonlinear least squares.
package fit

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/avollmer/transitfit/internal/lightcurve"
	"github.com/avollmer/transitfit/internal/opt"
)

// MinPoints is the smallest series the fitter accepts.
const MinPoints = 10

// MaxFunEvals caps the optimizer's model evaluations per fit.
const MaxFunEvals = 5000

// Initial guesses for the quadratic limb darkening coefficients.
const (
	u1Guess = 0.4
	u2Guess = 0.3
)

// Request carries one fit invocation: the observed series plus the known
// and guessed physical parameters.
type Request struct {
	Time []float64 // BJD
	Flux []float64 // normalized

	Duration float64 // known transit duration, days
	Period   float64 // known orbital period, days
	RefT0    float64 // reference transit epoch, BJD

	AGuess   float64 // a/Rs initial guess
	RpGuess  float64 // Rp/Rs initial guess
	IncGuess float64 // inclination initial guess, degrees
}

// Fitter fits transit parameters to light curves. The zero value uses
// the built-in quadratic limb darkening model and a Levenberg-Marquardt
// solver with the standard evaluation budget. Each Fit call owns its own
// baseline and parameter state, so one Fitter may serve concurrent calls.
type Fitter struct {
	// Model supplies the dimensionless transit curve; nil uses
	// QuadLimbDark.
	Model TransitModel

	// Solver is the bounded least-squares solver; nil uses a LevMar
	// with MaxFunEvals.
	Solver *opt.LevMar

	// Global, if set, runs a bounded global pre-search to polish the
	// initial guess before the local solve.
	Global opt.Optimizer
}

// Fit runs the full pipeline: seed t0 from the ephemeris, split the
// series at the nearest-sample transit window boundaries, fit the
// out-of-window baseline, then drive the composite model through the
// solver. Any optimizer failure is logged and returned as a
// *FitDidNotConvergeError; it is never degraded into a partial result.
func (f *Fitter) Fit(req Request) (*Result, error) {
	if len(req.Time) != len(req.Flux) {
		return nil, &ValidationError{
			Field:  "flux",
			Reason: fmt.Sprintf("length %d does not match time length %d", len(req.Flux), len(req.Time)),
		}
	}
	if len(req.Time) < MinPoints {
		return nil, &ValidationError{
			Field:  "time",
			Reason: fmt.Sprintf("has %d points, need at least %d", len(req.Time), MinPoints),
		}
	}

	t0Guess, err := lightcurve.NextTransit(req.RefT0, req.Period, req.Time[0])
	if err != nil {
		return nil, err
	}

	// Nearest-sample window boundaries. This is deliberately an
	// approximation: edge samples can land on either side by up to half
	// a cadence.
	half := req.Duration / 2
	startIdx, err := lightcurve.NearestIndex(req.Time, t0Guess-half)
	if err != nil {
		return nil, err
	}
	endIdx, err := lightcurve.NearestIndex(req.Time, t0Guess+half)
	if err != nil {
		return nil, err
	}

	baseTime := make([]float64, 0, len(req.Time))
	baseFlux := make([]float64, 0, len(req.Flux))
	baseTime = append(append(baseTime, req.Time[:startIdx]...), req.Time[endIdx:]...)
	baseFlux = append(append(baseFlux, req.Flux[:startIdx]...), req.Flux[endIdx:]...)

	baseline, err := FitBaseline(baseTime, baseFlux)
	if err != nil {
		return nil, err
	}

	model := CompositeModel{Transit: f.transitModel(), Baseline: baseline}
	eval := func(p []float64) []float64 {
		return model.Eval(req.Time, FromVector(p))
	}

	guess := Params{
		T0:     t0Guess,
		Period: req.Period,
		ARs:    req.AGuess,
		RpRs:   req.RpGuess,
		Inc:    req.IncGuess,
		U1:     u1Guess,
		U2:     u2Guess,
	}
	bounds := DefaultBounds(req.Time[0], req.Time[len(req.Time)-1], req.Period)

	slog.Info("Starting transit fit",
		"points", len(req.Time),
		"t0_guess", t0Guess,
		"window_start_idx", startIdx,
		"window_end_idx", endIdx,
		"baseline_points", len(baseTime),
	)

	p0 := guess.Vector()
	if f.Global != nil {
		cost := func(p []float64) float64 {
			pred := eval(p)
			var ss float64
			for i := range pred {
				d := req.Flux[i] - pred[i]
				ss += d * d
			}
			return ss
		}
		p0, _ = f.Global.Run(cost, bounds.Lower, bounds.Upper, NumParams)
		bounds.Clamp(p0)
		slog.Info("Global pre-search complete", "seed_params", p0)
	}

	solveRes, err := f.solver().Solve(eval, req.Flux, p0, bounds.Lower, bounds.Upper)
	if err != nil {
		slog.Error("Transit fit failed",
			"error", err,
			"fun_evals", solveRes.FunEvals,
			"t0_guess", t0Guess,
			"period", req.Period,
		)
		return nil, &FitDidNotConvergeError{FunEvals: solveRes.FunEvals, Err: err}
	}

	best := FromVector(solveRes.Params)

	var sigmaVec [NumParams]float64
	cov := make([][]float64, NumParams)
	for i := 0; i < NumParams; i++ {
		cov[i] = make([]float64, NumParams)
		for j := 0; j < NumParams; j++ {
			cov[i][j] = solveRes.Covariance.At(i, j)
		}
		sigmaVec[i] = sqrtNonNeg(cov[i][i])
	}

	bestFit := model.Eval(req.Time, best)
	residuals := make([]float64, len(req.Flux))
	for i := range residuals {
		residuals[i] = req.Flux[i] - bestFit[i]
	}

	res := &Result{
		Params:        best,
		Sigma:         FromVector(sigmaVec[:]),
		Covariance:    cov,
		Guess:         guess,
		BestFit:       bestFit,
		GuessFit:      model.Eval(req.Time, guess),
		Residuals:     residuals,
		RMS:           rms(residuals),
		FunEvals:      solveRes.FunEvals,
		NPoints:       len(req.Time),
		WindowStart:   startIdx,
		WindowEnd:     endIdx,
		BaselineTrend: baseline,
	}

	slog.Info("Transit fit complete",
		"t0", best.T0,
		"period", best.Period,
		"rp_rs", best.RpRs,
		"rms", res.RMS,
		"fun_evals", res.FunEvals,
	)

	return res, nil
}

func (f *Fitter) transitModel() TransitModel {
	if f.Model != nil {
		return f.Model
	}
	return QuadLimbDark{}
}

func (f *Fitter) solver() *opt.LevMar {
	if f.Solver != nil {
		return f.Solver
	}
	return &opt.LevMar{MaxFunEvals: MaxFunEvals}
}

func sqrtNonNeg(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
