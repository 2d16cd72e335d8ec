package opt

import (
	"errors"
	"math"
	"testing"
)

// Exponential decay model y = a * exp(-b*t), a classic LM test problem.
func expModel(ts []float64) func(p []float64) []float64 {
	return func(p []float64) []float64 {
		out := make([]float64, len(ts))
		for i, t := range ts {
			out[i] = p[0] * math.Exp(-p[1]*t)
		}
		return out
	}
}

func TestLevMarRecoversExponential(t *testing.T) {
	ts := make([]float64, 50)
	for i := range ts {
		ts[i] = float64(i) * 0.1
	}
	truth := []float64{2.5, 1.3}
	model := expModel(ts)
	obs := model(truth)

	solver := &LevMar{}
	res, err := solver.Solve(model, obs, []float64{1, 0.5}, []float64{0, 0}, []float64{10, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range truth {
		if math.Abs(res.Params[i]-truth[i]) > 1e-6 {
			t.Errorf("param %d = %v, want %v", i, res.Params[i], truth[i])
		}
	}
	if res.Cost > 1e-12 {
		t.Errorf("final cost %v, expected ~0 on noiseless data", res.Cost)
	}
	if res.Covariance == nil {
		t.Fatal("missing covariance matrix")
	}
	if r, c := res.Covariance.Dims(); r != 2 || c != 2 {
		t.Errorf("covariance dims %dx%d, want 2x2", r, c)
	}
}

func TestLevMarRespectsBounds(t *testing.T) {
	ts := []float64{0, 1, 2, 3, 4, 5}
	model := expModel(ts)
	obs := model([]float64{2.5, 1.3})

	// Upper bound below the true amplitude: the solver must stay inside.
	solver := &LevMar{}
	res, err := solver.Solve(model, obs, []float64{1.5, 1.0}, []float64{0, 0}, []float64{2.0, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Params[0] > 2.0+1e-12 {
		t.Errorf("param 0 = %v exceeded upper bound 2.0", res.Params[0])
	}
}

func TestLevMarLinearCovariance(t *testing.T) {
	// Straight line through noiseless points: covariance should be tiny
	// and symmetric positive.
	ts := []float64{0, 1, 2, 3, 4}
	line := func(p []float64) []float64 {
		out := make([]float64, len(ts))
		for i, x := range ts {
			out[i] = p[0]*x + p[1]
		}
		return out
	}
	obs := line([]float64{2, -1})

	solver := &LevMar{}
	res, err := solver.Solve(line, obs, []float64{1, 0}, []float64{-10, -10}, []float64{10, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if res.Covariance.At(i, i) < 0 {
			t.Errorf("negative variance at %d: %v", i, res.Covariance.At(i, i))
		}
	}
	if math.Abs(res.Params[0]-2) > 1e-8 || math.Abs(res.Params[1]+1) > 1e-8 {
		t.Errorf("line fit = %v, want [2 -1]", res.Params)
	}
}

func TestLevMarBudgetExceeded(t *testing.T) {
	ts := make([]float64, 30)
	for i := range ts {
		ts[i] = float64(i) * 0.2
	}
	model := expModel(ts)
	obs := model([]float64{2.5, 1.3})

	solver := &LevMar{MaxFunEvals: 3}
	res, err := solver.Solve(model, obs, []float64{1, 0.5}, []float64{0, 0}, []float64{10, 10})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if res.FunEvals > 3 {
		t.Errorf("consumed %d evaluations, budget was 3", res.FunEvals)
	}
}

func TestLevMarGuessOutsideBounds(t *testing.T) {
	ts := []float64{0, 1, 2, 3}
	model := expModel(ts)
	obs := model([]float64{2.5, 1.3})

	solver := &LevMar{}
	_, err := solver.Solve(model, obs, []float64{20, 0.5}, []float64{0, 0}, []float64{10, 10})
	if err == nil {
		t.Fatal("expected error for infeasible initial guess")
	}
}

func TestLevMarUnderdetermined(t *testing.T) {
	model := func(p []float64) []float64 { return []float64{p[0] + p[1]} }
	solver := &LevMar{}
	_, err := solver.Solve(model, []float64{1}, []float64{0, 0}, []float64{-1, -1}, []float64{1, 1})
	if err == nil {
		t.Fatal("expected error when observations cannot constrain parameters")
	}
}

func TestLevMarDeterministic(t *testing.T) {
	ts := make([]float64, 40)
	for i := range ts {
		ts[i] = float64(i) * 0.15
	}
	model := expModel(ts)
	obs := model([]float64{2.5, 1.3})
	// Perturb deterministically so the fit has real residuals.
	for i := range obs {
		obs[i] += 1e-3 * math.Sin(float64(i))
	}

	run := func() *LSQResult {
		solver := &LevMar{}
		res, err := solver.Solve(model, obs, []float64{1, 0.5}, []float64{0, 0}, []float64{10, 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return res
	}

	a, b := run(), run()
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			t.Errorf("non-deterministic param %d: %v vs %v", i, a.Params[i], b.Params[i])
		}
	}
	if a.Cost != b.Cost {
		t.Errorf("non-deterministic cost: %v vs %v", a.Cost, b.Cost)
	}
}

func TestLevMarTraceCallback(t *testing.T) {
	ts := make([]float64, 20)
	for i := range ts {
		ts[i] = float64(i) * 0.2
	}
	model := expModel(ts)
	obs := model([]float64{2.5, 1.3})

	var costs []float64
	solver := &LevMar{Trace: func(_ int, cost float64) { costs = append(costs, cost) }}
	if _, err := solver.Solve(model, obs, []float64{1, 0.5}, []float64{0, 0}, []float64{10, 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(costs) == 0 {
		t.Fatal("trace callback never fired")
	}
	for i := 1; i < len(costs); i++ {
		if costs[i] > costs[i-1] {
			t.Errorf("cost increased between accepted iterations: %v -> %v", costs[i-1], costs[i])
		}
	}
}
