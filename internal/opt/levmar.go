package opt

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrBudgetExceeded is returned when the solver runs out of function
// evaluations before meeting its convergence criteria.
var ErrBudgetExceeded = errors.New("function evaluation budget exceeded")

// ErrSingular is returned when the normal equations are numerically
// singular (a parameter the data does not constrain, or a rank-deficient
// Jacobian at the solution).
var ErrSingular = errors.New("singular normal equations")

const (
	defaultMaxFunEvals = 5000
	defaultCostTol     = 1e-10
	defaultStepTol     = 1e-12
	lambdaInit         = 1e-3
	lambdaMax          = 1e12
)

// LevMar is a Levenberg-Marquardt least-squares solver with box
// constraints. Steps are projected onto the bound box, the Jacobian is
// computed by forward differences, and the damping factor follows the
// classic accept/reject schedule. The solver is fully deterministic.
type LevMar struct {
	// MaxFunEvals caps the number of model evaluations (Jacobian columns
	// included); 0 uses the default of 5000.
	MaxFunEvals int

	// CostTol is the relative cost-decrease threshold below which an
	// accepted step counts as converged; 0 uses 1e-10.
	CostTol float64

	// StepTol is the relative step-size threshold; 0 uses 1e-12.
	StepTol float64

	// Trace, if set, is called after every accepted iteration with the
	// current sum of squared residuals.
	Trace func(iteration int, cost float64)
}

// LSQResult holds the solver output.
type LSQResult struct {
	// Params is the optimized parameter vector.
	Params []float64

	// Covariance is the parameter covariance matrix
	// s^2 * (J^T J)^-1 with s^2 the residual variance at the solution.
	Covariance *mat.SymDense

	// Cost is the final sum of squared residuals.
	Cost float64

	// FunEvals is the number of model evaluations consumed.
	FunEvals int

	// Iterations is the number of accepted LM iterations.
	Iterations int
}

// Solve fits model(p) to obs in the least-squares sense, starting from
// p0 and keeping every parameter inside [lower, upper]. On failure the
// returned result still carries the evaluation count.
func (s *LevMar) Solve(model func(p []float64) []float64, obs, p0, lower, upper []float64) (*LSQResult, error) {
	n := len(p0)
	m := len(obs)
	res := &LSQResult{}

	if len(lower) != n || len(upper) != n {
		return res, fmt.Errorf("bounds dimension %d/%d does not match parameter dimension %d", len(lower), len(upper), n)
	}
	if m <= n {
		return res, fmt.Errorf("%d observations cannot constrain %d parameters", m, n)
	}
	for i := range p0 {
		if lower[i] > upper[i] {
			return res, fmt.Errorf("infeasible bounds for parameter %d: lower %v > upper %v", i, lower[i], upper[i])
		}
		if p0[i] < lower[i] || p0[i] > upper[i] {
			return res, fmt.Errorf("initial guess for parameter %d (%v) outside bounds [%v, %v]", i, p0[i], lower[i], upper[i])
		}
	}

	maxEvals := s.MaxFunEvals
	if maxEvals <= 0 {
		maxEvals = defaultMaxFunEvals
	}
	costTol := s.CostTol
	if costTol <= 0 {
		costTol = defaultCostTol
	}
	stepTol := s.StepTol
	if stepTol <= 0 {
		stepTol = defaultStepTol
	}

	p := append([]float64(nil), p0...)
	residuals := func(params []float64) ([]float64, error) {
		if res.FunEvals >= maxEvals {
			return nil, ErrBudgetExceeded
		}
		res.FunEvals++
		f := model(params)
		r := make([]float64, m)
		for i := range r {
			r[i] = obs[i] - f[i]
		}
		return r, nil
	}

	r, err := residuals(p)
	if err != nil {
		return res, err
	}
	cost := sumSquares(r)
	lambda := lambdaInit

	jac := mat.NewDense(m, n, nil)
	var jtj mat.SymDense
	g := mat.NewVecDense(n, nil)
	var delta mat.VecDense

	converged := false
	for !converged {
		if err := s.jacobian(jac, residuals, p, r, lower, upper); err != nil {
			return res, err
		}
		jtj.SymOuterK(1, jac.T())
		g.MulVec(jac.T(), mat.NewVecDense(m, r))

		if mat.Norm(g, math.Inf(1)) < 1e-14 {
			break
		}

		// Inner damping loop: raise lambda until a step improves the cost.
		accepted := false
		for lambda <= lambdaMax {
			damped := mat.NewSymDense(n, nil)
			damped.CopySym(&jtj)
			singularDiag := true
			for i := 0; i < n; i++ {
				d := jtj.At(i, i)
				if d != 0 {
					singularDiag = false
				}
				damped.SetSym(i, i, d*(1+lambda))
			}
			if singularDiag {
				return res, ErrSingular
			}

			var chol mat.Cholesky
			if ok := chol.Factorize(damped); !ok {
				lambda *= 10
				continue
			}
			if err := chol.SolveVecTo(&delta, g); err != nil {
				lambda *= 10
				continue
			}

			trial := make([]float64, n)
			for i := range trial {
				trial[i] = math.Max(lower[i], math.Min(upper[i], p[i]+delta.AtVec(i)))
			}

			rTrial, err := residuals(trial)
			if err != nil {
				return res, err
			}
			trialCost := sumSquares(rTrial)
			if math.IsNaN(trialCost) || trialCost >= cost {
				lambda *= 10
				continue
			}

			// Accepted step.
			stepNorm := 0.0
			for i := range trial {
				stepNorm += (trial[i] - p[i]) * (trial[i] - p[i])
			}
			stepNorm = math.Sqrt(stepNorm)

			relDecrease := (cost - trialCost) / cost
			p = trial
			r = rTrial
			cost = trialCost
			lambda = math.Max(lambda/10, 1e-12)
			res.Iterations++
			if s.Trace != nil {
				s.Trace(res.Iterations, cost)
			}

			if relDecrease < costTol || stepNorm < stepTol*(1+floatNorm(p)) {
				converged = true
			}
			accepted = true
			break
		}
		if !accepted {
			// Damping saturated without improvement: local minimum.
			break
		}
	}

	cov, err := s.covariance(jac, residuals, p, r, lower, upper, cost, m, n)
	if err != nil {
		return res, err
	}

	res.Params = p
	res.Covariance = cov
	res.Cost = cost
	return res, nil
}

// jacobian fills jac with forward differences of the residual vector,
// switching to backward steps where a forward step would leave the box.
// Note the residual Jacobian is the negative of the model Jacobian; the
// sign cancels in both J^T J and the normal-equation right-hand side
// J^T r used above, where r is the residual.
func (s *LevMar) jacobian(jac *mat.Dense, residuals func([]float64) ([]float64, error), p, r, lower, upper []float64) error {
	n := len(p)
	pt := append([]float64(nil), p...)
	for j := 0; j < n; j++ {
		h := math.Sqrt(machEps) * math.Max(math.Abs(p[j]), 1e-8)
		if p[j]+h > upper[j] {
			h = -h
		}
		pt[j] = p[j] + h
		rj, err := residuals(pt)
		if err != nil {
			return err
		}
		pt[j] = p[j]
		for i := range rj {
			// d(model)/dp = -(d(residual)/dp)
			jac.Set(i, j, -(rj[i]-r[i])/h)
		}
	}
	return nil
}

// covariance computes s^2 (J^T J)^-1 at the solution.
func (s *LevMar) covariance(jac *mat.Dense, residuals func([]float64) ([]float64, error), p, r, lower, upper []float64, cost float64, m, n int) (*mat.SymDense, error) {
	if err := s.jacobian(jac, residuals, p, r, lower, upper); err != nil {
		return nil, err
	}
	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&jtj); !ok {
		return nil, ErrSingular
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, ErrSingular
	}

	sigma2 := cost / float64(m-n)
	inv.ScaleSym(sigma2, &inv)
	return &inv, nil
}

var machEps = math.Nextafter(1, 2) - 1

func sumSquares(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return sum
}

func floatNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
