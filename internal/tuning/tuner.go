package tuning

import (
	"context"

	"fracnet/internal/genotype"
)

// Evaluator scores one individual and returns its fitness.
type Evaluator func(ctx context.Context, net *genotype.Network) (float64, error)

// Tuner refines an individual between generations without changing its
// topology. The engine hands it the evaluation closure so tuners stay
// agnostic of the fitness mode.
type Tuner interface {
	Name() string
	Tune(ctx context.Context, net *genotype.Network, attempts int, eval Evaluator) (float64, error)
}
