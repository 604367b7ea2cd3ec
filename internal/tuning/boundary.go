package tuning

import (
	"context"
	"fmt"
	"math/rand"

	"fracnet/internal/genotype"
)

// BoundaryTuner is a stochastic hill climber over judgment boundaries: each
// attempt perturbs a clone's boundaries and keeps the perturbation only when
// the evaluated fitness improves. Edges and node counts never change, so every
// structural invariant is preserved by construction.
type BoundaryTuner struct {
	rng  *rand.Rand
	prob float64
}

// NewBoundaryTuner builds a tuner with its own generator so tuning draws do
// not disturb the population's random stream.
func NewBoundaryTuner(seed int64, prob float64) (*BoundaryTuner, error) {
	if prob <= 0 || prob > 1 {
		return nil, fmt.Errorf("tune probability %v outside (0, 1]", prob)
	}
	return &BoundaryTuner{rng: rand.New(rand.NewSource(seed)), prob: prob}, nil
}

func (t *BoundaryTuner) Name() string {
	return "boundary_hill_climb"
}

func (t *BoundaryTuner) Tune(ctx context.Context, net *genotype.Network, attempts int, eval Evaluator) (float64, error) {
	if eval == nil {
		return 0, fmt.Errorf("evaluator is required")
	}
	best, err := eval(ctx, net)
	if err != nil {
		return 0, err
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		candidate := net.Clone()
		if !t.perturb(candidate) {
			continue
		}
		fitness, err := eval(ctx, candidate)
		if err != nil {
			return 0, err
		}
		if fitness > best {
			best = fitness
			adoptBoundaries(net, candidate)
		}
	}

	// Re-score so the adopted layout's fitness is the one left on the
	// individual.
	final, err := eval(ctx, net)
	if err != nil {
		return 0, err
	}
	return final, nil
}

// perturb mutates the clone's judgment layouts and reports whether any node
// was eligible. Fractal nodes mutate through their production rule so the
// boundary layout keeps deriving from it.
func (t *BoundaryTuner) perturb(net *genotype.Network) bool {
	touched := false
	for i := range net.Inner {
		node := &net.Inner[i]
		if node.Kind != genotype.Judgment || len(node.Boundaries) == 0 {
			continue
		}
		touched = true
		if len(node.ProductionRule) > 0 {
			lo := node.Boundaries[0]
			hi := node.Boundaries[len(node.Boundaries)-1]
			_ = node.BoundaryMutationFractal(t.rng, t.prob, lo, hi)
		} else {
			node.BoundaryMutationUniform(t.rng, t.prob)
		}
	}
	return touched
}

func adoptBoundaries(dst, src *genotype.Network) {
	for i := range dst.Inner {
		if dst.Inner[i].Kind != genotype.Judgment {
			continue
		}
		dst.Inner[i].Boundaries = append([]float64(nil), src.Inner[i].Boundaries...)
		dst.Inner[i].ProductionRule = append([]float64(nil), src.Inner[i].ProductionRule...)
	}
}
