package evo

import (
	"fmt"
	"math"
	"math/rand"

	"fracnet/internal/genotype"
)

// Population owns a fixed-size vector of individuals and the shared random
// source every genetic operator draws from.
type Population struct {
	rng *rand.Rand

	Size        int
	Individuals []*genotype.Network

	BestFit      float64
	MeanFitness  float64
	MinFitness   float64
	EliteIndices []int

	bootstrapped bool
}

// NewPopulation builds ni random individuals sharing one seeded generator.
// SetAllNodeBoundaries must be called once before any fitness evaluation.
func NewPopulation(seed int64, ni, jn, jnf, pn, pnf int, fractalJudgment bool) (*Population, error) {
	if ni <= 0 {
		return nil, fmt.Errorf("population size must be > 0, got %d", ni)
	}
	rng := rand.New(rand.NewSource(seed))
	individuals := make([]*genotype.Network, 0, ni)
	for i := 0; i < ni; i++ {
		net, err := genotype.NewNetwork(rng, jn, jnf, pn, pnf, fractalJudgment)
		if err != nil {
			return nil, fmt.Errorf("individual %d: %w", i, err)
		}
		individuals = append(individuals, net)
	}
	return &Population{
		rng:         rng,
		Size:        ni,
		Individuals: individuals,
		BestFit:     genotype.LowestFitness,
		MinFitness:  genotype.LowestFitness,
	}, nil
}

// SetAllNodeBoundaries initializes the boundaries of every judgment node over
// the per-feature ranges: equal-width intervals in plain mode, production-rule
// subdivision in fractal mode.
func (p *Population) SetAllNodeBoundaries(minF, maxF []float64) error {
	if len(minF) != len(maxF) {
		return fmt.Errorf("feature range lengths differ: %d vs %d", len(minF), len(maxF))
	}
	for i, ind := range p.Individuals {
		if len(minF) < ind.JudgmentFuncs {
			return fmt.Errorf("feature ranges cover %d features, need %d", len(minF), ind.JudgmentFuncs)
		}
		for j := range ind.Inner {
			node := &ind.Inner[j]
			if node.Kind != genotype.Judgment {
				continue
			}
			lo, hi := minF[node.Function], maxF[node.Function]
			if ind.FractalJudgment {
				node.ProductionRule = genotype.RandomCuts(p.rng, node.K-1)
				lengths := genotype.FractalLengths(node.D, genotype.SortAndDistance(node.ProductionRule))
				if err := node.SetBoundaries(lo, hi, lengths); err != nil {
					return fmt.Errorf("individual %d node %d: %w", i, j, err)
				}
			} else {
				if err := node.SetBoundaries(lo, hi, nil); err != nil {
					return fmt.Errorf("individual %d node %d: %w", i, j, err)
				}
			}
		}
	}
	p.bootstrapped = true
	return nil
}

// ErrNotBootstrapped guards fitness evaluation before boundary initialization.
var ErrNotBootstrapped = fmt.Errorf("population boundaries are not initialized")

func (p *Population) requireBootstrap() error {
	if !p.bootstrapped {
		return ErrNotBootstrapped
	}
	return nil
}

// TraverseAll runs the batch traversal on every individual, populating only
// the decision vectors so the caller can compute a custom fitness. Fitness is
// not written in this mode.
func (p *Population) TraverseAll(X [][]float64, dMax int) error {
	if err := p.requireBootstrap(); err != nil {
		return err
	}
	for _, ind := range p.Individuals {
		ind.TraversePath(X, dMax)
	}
	return nil
}

// AccuracyFitness evaluates every individual on the supervised batch.
func (p *Population) AccuracyFitness(X [][]float64, y []int, dMax, penalty int) error {
	if err := p.requireBootstrap(); err != nil {
		return err
	}
	for i, ind := range p.Individuals {
		if err := ind.AccuracyFitness(X, y, dMax, penalty); err != nil {
			return fmt.Errorf("individual %d: %w", i, err)
		}
	}
	return nil
}

// TournamentSelection rebuilds the population from ni-E tournament winners of
// size n plus the E fittest individuals appended as elites. Elite destination
// indices are recorded so later operators can skip them, and the generation
// statistics are refreshed.
func (p *Population) TournamentSelection(n, e int) error {
	if n < 1 || n > p.Size {
		return fmt.Errorf("tournament size %d outside [1, %d]", n, p.Size)
	}
	if e < 0 || e >= p.Size {
		return fmt.Errorf("elite count %d outside [0, %d)", e, p.Size)
	}
	if n < 2 && e >= 1 {
		return fmt.Errorf("tournament size %d too small for elitism", n)
	}

	p.BestFit = p.Individuals[0].Fitness
	p.MinFitness = p.Individuals[0].Fitness
	p.MeanFitness = 0
	p.EliteIndices = p.EliteIndices[:0]

	selection := make([]*genotype.Network, 0, p.Size)
	for i := 0; i < p.Size-e; i++ {
		indices := p.rng.Perm(p.Size)[:n]
		winner := p.Individuals[indices[0]]
		for _, idx := range indices[1:] {
			if p.Individuals[idx].Fitness > winner.Fitness {
				winner = p.Individuals[idx]
			}
		}
		p.MeanFitness += winner.Fitness
		if winner.Fitness < p.MinFitness {
			p.MinFitness = winner.Fitness
		}
		if winner.Fitness > p.BestFit {
			p.BestFit = winner.Fitness
		}
		selection = append(selection, winner.Clone())
	}

	selection = p.setElite(selection, e)
	p.Individuals = selection
	p.MeanFitness /= float64(p.Size)
	return nil
}

// setElite appends the e fittest individuals from the pre-selection pool,
// removing each pick from the remaining pool, and records their destination
// indices. Elites update BestFit so elitism keeps it monotone.
func (p *Population) setElite(selection []*genotype.Network, e int) []*genotype.Network {
	remaining := append([]*genotype.Network(nil), p.Individuals...)
	for i := 0; i < e; i++ {
		bestIdx := 0
		for j := 1; j < len(remaining); j++ {
			if remaining[j].Fitness > remaining[bestIdx].Fitness {
				bestIdx = j
			}
		}
		elite := remaining[bestIdx]
		if elite.Fitness > p.BestFit {
			p.BestFit = elite.Fitness
		}
		p.EliteIndices = append(p.EliteIndices, len(selection))
		selection = append(selection, elite.Clone())
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selection
}

func (p *Population) isElite(idx int) bool {
	for _, e := range p.EliteIndices {
		if e == idx {
			return true
		}
	}
	return false
}

// CallEdgeMutation perturbs the edges of every non-elite individual: each
// inner-node edge with probability pInner, the start edge with pStart.
func (p *Population) CallEdgeMutation(pInner, pStart float64) {
	for idx, ind := range p.Individuals {
		if p.isElite(idx) {
			continue
		}
		size := len(ind.Inner)
		for j := range ind.Inner {
			ind.Inner[j].EdgeMutation(p.rng, pInner, size)
		}
		ind.Start.EdgeMutation(p.rng, pStart, size)
	}
}

// boundaryContext carries the per-individual inputs the scaled boundary
// mutation variants need.
type boundaryContext struct {
	networkSize int
}

func (p *Population) visitJudgmentNodes(visit func(node *genotype.Node, ctx boundaryContext) error) error {
	for idx, ind := range p.Individuals {
		if p.isElite(idx) {
			continue
		}
		ctx := boundaryContext{networkSize: len(ind.Inner)}
		for j := range ind.Inner {
			if ind.Inner[j].Kind != genotype.Judgment {
				continue
			}
			if err := visit(&ind.Inner[j], ctx); err != nil {
				return fmt.Errorf("individual %d node %d: %w", idx, j, err)
			}
		}
	}
	return nil
}

// CallBoundaryMutationUniform resamples inner boundaries uniformly between
// their neighbors with probability prob.
func (p *Population) CallBoundaryMutationUniform(prob float64) {
	_ = p.visitJudgmentNodes(func(node *genotype.Node, _ boundaryContext) error {
		node.BoundaryMutationUniform(p.rng, prob)
		return nil
	})
}

// CallBoundaryMutationNormal resamples inner boundaries from N(mu, (sigma*mu)^2).
func (p *Population) CallBoundaryMutationNormal(prob, sigma float64) {
	_ = p.visitJudgmentNodes(func(node *genotype.Node, _ boundaryContext) error {
		node.BoundaryMutationNormal(p.rng, prob, sigma)
		return nil
	})
}

// CallBoundaryMutationNetworkSizeSigma scales sigma down by the logarithm of
// the individual's inner-node count before the normal resample.
func (p *Population) CallBoundaryMutationNetworkSizeSigma(prob, sigma float64) {
	_ = p.visitJudgmentNodes(func(node *genotype.Node, ctx boundaryContext) error {
		node.BoundaryMutationNormal(p.rng, prob, sigma/math.Log(float64(ctx.networkSize)))
		return nil
	})
}

// CallBoundaryMutationEdgeSizeSigma scales sigma down by the logarithm of the
// node's own edge count before the normal resample.
func (p *Population) CallBoundaryMutationEdgeSizeSigma(prob, sigma float64) {
	_ = p.visitJudgmentNodes(func(node *genotype.Node, _ boundaryContext) error {
		node.BoundaryMutationNormal(p.rng, prob, sigma/math.Log(float64(len(node.Edges))))
		return nil
	})
}

// CallBoundaryMutationFractal perturbs production rules and regenerates the
// affected boundary layouts over the per-feature ranges.
func (p *Population) CallBoundaryMutationFractal(prob float64, minF, maxF []float64) error {
	return p.visitJudgmentNodes(func(node *genotype.Node, _ boundaryContext) error {
		return node.BoundaryMutationFractal(p.rng, prob, minF[node.Function], maxF[node.Function])
	})
}

// Crossover shuffles the population into adjacent pairs and swaps inner nodes
// positionally with probability prob per position. Pairs containing an elite
// are skipped; after every swap the strictly smaller parent is repaired, since
// a swapped node may carry edges pointing outside its shorter range.
func (p *Population) Crossover(prob float64) {
	perm := p.rng.Perm(p.Size)
	for i := 0; i+1 < len(perm); i += 2 {
		a, b := perm[i], perm[i+1]
		if p.isElite(a) || p.isElite(b) {
			continue
		}
		first, second := p.Individuals[a], p.Individuals[b]
		m := len(first.Inner)
		if len(second.Inner) < m {
			m = len(second.Inner)
		}
		for k := 0; k < m-1; k++ {
			if p.rng.Float64() >= prob {
				continue
			}
			first.Inner[k], second.Inner[k] = second.Inner[k], first.Inner[k]
			if len(first.Inner) < len(second.Inner) {
				first.ChangeFalseEdges()
			} else if len(second.Inner) < len(first.Inner) {
				second.ChangeFalseEdges()
			}
		}
	}
}

// CallAddDelNodes applies the variable-size operator to every individual. It
// must run before edge mutation within a generation: its decisions depend on
// the used flags of the last traversal, which later mutations invalidate.
func (p *Population) CallAddDelNodes(minF, maxF []float64) error {
	for i, ind := range p.Individuals {
		if err := ind.AddDelNodes(minF, maxF); err != nil {
			return fmt.Errorf("individual %d: %w", i, err)
		}
	}
	return nil
}
