package opt

import (
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface.
// The library accepts a single scalar bound pair for every dimension, so
// the search runs in the unit cube and candidate positions are mapped
// affinely onto the real per-parameter bounds before evaluation.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(maxIters, popSize int, seed int64) Optimizer {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the Mayfly optimization using the external library
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	config := mayfly.NewDefaultConfig()

	// Search in the unit cube, evaluate in real parameter space.
	config.ObjectiveFunc = func(u []float64) float64 {
		return eval(fromUnitCube(u, lower, upper))
	}
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = 0
	config.UpperBound = 1

	// Set random seed for reproducibility
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Fall back to the box center if the library rejects the config.
		center := make([]float64, dim)
		for i := range center {
			center[i] = 0.5
		}
		p := fromUnitCube(center, lower, upper)
		return p, eval(p)
	}

	best := fromUnitCube(result.GlobalBest.Position, lower, upper)
	return best, result.GlobalBest.Cost
}

// fromUnitCube maps a unit-cube position onto [lower, upper].
func fromUnitCube(u, lower, upper []float64) []float64 {
	p := make([]float64, len(u))
	for i := range u {
		p[i] = lower[i] + u[i]*(upper[i]-lower[i])
	}
	return p
}
