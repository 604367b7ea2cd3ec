package evo

import (
	"context"
	"fmt"
	"sync"

	"fracnet/internal/genotype"
	"fracnet/internal/model"
	"fracnet/internal/scape"
	"fracnet/internal/tuning"
)

// BoundaryMutationKind selects one of the five boundary mutation variants.
type BoundaryMutationKind string

const (
	BoundaryUniform     BoundaryMutationKind = "uniform"
	BoundaryNormal      BoundaryMutationKind = "normal"
	BoundaryNetworkSize BoundaryMutationKind = "network-size"
	BoundaryEdgeSize    BoundaryMutationKind = "edge-size"
	BoundaryFractal     BoundaryMutationKind = "fractal"
)

// EngineConfig bundles every knob of the generation loop.
type EngineConfig struct {
	Seed            int64
	PopulationSize  int
	JudgmentNodes   int
	JudgmentFuncs   int
	ProcessingNodes int
	ProcessingFuncs int
	FractalJudgment bool

	Generations    int
	StallLimit     int
	TournamentSize int
	EliteCount     int

	ProbCrossover         float64
	ProbEdgeMutationInner float64
	ProbEdgeMutationStart float64
	ProbBoundaryMutation  float64
	SigmaBoundaryMutation float64
	BoundaryMutation      BoundaryMutationKind
	AddDelete             bool

	DMax    int
	Penalty int

	MinFeatures []float64
	MaxFeatures []float64

	// Tuner, when set, refines the current best individual's boundaries after
	// each evaluation (supervised or environment); the attempt policy scales the budget across
	// generations (fixed when unset).
	Tuner             tuning.Tuner
	TuneAttempts      int
	TuneAttemptPolicy tuning.AttemptPolicy

	// Workers parallelizes supervised evaluation across individuals. The
	// genetic operator phases stay serial: they share the generator and the
	// population vector.
	Workers int
}

// RunResult aggregates one engine run.
type RunResult struct {
	BestByGeneration []float64
	Diagnostics      []model.GenerationDiagnostics
	BestFitness      float64
	Best             model.Network
}

// Engine drives the generation loop over one population:
// evaluate, select, crossover, add/delete, boundary mutation, edge mutation.
type Engine struct {
	cfg EngineConfig
	pop *Population
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.TournamentSize < 1 {
		return nil, fmt.Errorf("tournament size must be >= 1")
	}
	if cfg.EliteCount < 0 || cfg.EliteCount >= cfg.PopulationSize {
		return nil, fmt.Errorf("elite count %d outside [0, %d)", cfg.EliteCount, cfg.PopulationSize)
	}
	if cfg.DMax <= 0 {
		return nil, fmt.Errorf("dMax must be > 0")
	}
	if len(cfg.MinFeatures) == 0 || len(cfg.MinFeatures) != len(cfg.MaxFeatures) {
		return nil, fmt.Errorf("feature ranges are required and must have equal length")
	}
	if len(cfg.MinFeatures) < cfg.JudgmentFuncs {
		return nil, fmt.Errorf("feature ranges cover %d features, need %d", len(cfg.MinFeatures), cfg.JudgmentFuncs)
	}
	switch cfg.BoundaryMutation {
	case "", BoundaryUniform, BoundaryNormal, BoundaryNetworkSize, BoundaryEdgeSize, BoundaryFractal:
	default:
		return nil, fmt.Errorf("unknown boundary mutation: %s", cfg.BoundaryMutation)
	}
	if cfg.BoundaryMutation == BoundaryFractal && !cfg.FractalJudgment {
		return nil, fmt.Errorf("fractal boundary mutation requires fractal judgment nodes")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Tuner != nil && cfg.TuneAttempts <= 0 {
		return nil, fmt.Errorf("tuner configured without attempts")
	}
	if cfg.Tuner != nil && cfg.TuneAttemptPolicy == nil {
		cfg.TuneAttemptPolicy = tuning.FixedAttemptPolicy{}
	}

	pop, err := NewPopulation(
		cfg.Seed,
		cfg.PopulationSize,
		cfg.JudgmentNodes, cfg.JudgmentFuncs,
		cfg.ProcessingNodes, cfg.ProcessingFuncs,
		cfg.FractalJudgment,
	)
	if err != nil {
		return nil, err
	}
	if err := pop.SetAllNodeBoundaries(cfg.MinFeatures, cfg.MaxFeatures); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, pop: pop}, nil
}

// Population exposes the engine's population, primarily for snapshotting.
func (e *Engine) Population() *Population {
	return e.pop
}

// RunSupervised evolves the population against a supervised batch.
func (e *Engine) RunSupervised(ctx context.Context, X [][]float64, y []int) (RunResult, error) {
	if len(X) == 0 || len(X) != len(y) {
		return RunResult{}, fmt.Errorf("batch of %d rows with %d targets", len(X), len(y))
	}
	evaluate := func(ctx context.Context) error {
		return e.evaluateSupervised(ctx, X, y)
	}
	tuneEval := func(ctx context.Context, net *genotype.Network) (float64, error) {
		if err := net.AccuracyFitness(X, y, e.cfg.DMax, e.cfg.Penalty); err != nil {
			return 0, err
		}
		return net.Fitness, nil
	}
	return e.run(ctx, evaluate, tuneEval)
}

// RunEnvironment evolves the population against a step environment. The
// environment is a shared external resource, so evaluation stays serial.
func (e *Engine) RunEnvironment(ctx context.Context, env scape.Environment, params EnvParams) (RunResult, error) {
	evaluate := func(ctx context.Context) error {
		return e.pop.EnvironmentFitness(ctx, env, params)
	}
	tuneEval := func(ctx context.Context, net *genotype.Network) (float64, error) {
		single := &Population{rng: e.pop.rng, Size: 1, Individuals: []*genotype.Network{net}, bootstrapped: true}
		if err := single.EnvironmentFitness(ctx, env, params); err != nil {
			return 0, err
		}
		return net.Fitness, nil
	}
	return e.run(ctx, evaluate, tuneEval)
}

func (e *Engine) run(ctx context.Context, evaluate func(context.Context) error, tuneEval tuning.Evaluator) (RunResult, error) {
	result := RunResult{
		BestByGeneration: make([]float64, 0, e.cfg.Generations),
		Diagnostics:      make([]model.GenerationDiagnostics, 0, e.cfg.Generations),
	}
	stalled := 0

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		if err := evaluate(ctx); err != nil {
			return RunResult{}, err
		}
		if err := e.tuneBest(ctx, gen, tuneEval); err != nil {
			return RunResult{}, err
		}
		if err := e.pop.TournamentSelection(e.cfg.TournamentSize, e.cfg.EliteCount); err != nil {
			return RunResult{}, err
		}
		result.BestByGeneration = append(result.BestByGeneration, e.pop.BestFit)
		result.Diagnostics = append(result.Diagnostics, e.diagnostics(gen+1))

		if gen > 0 && result.BestByGeneration[gen] <= result.BestByGeneration[gen-1] {
			stalled++
			if e.cfg.StallLimit > 0 && stalled >= e.cfg.StallLimit {
				break
			}
		} else {
			stalled = 0
		}

		e.pop.Crossover(e.cfg.ProbCrossover)
		if e.cfg.AddDelete {
			if err := e.pop.CallAddDelNodes(e.cfg.MinFeatures, e.cfg.MaxFeatures); err != nil {
				return RunResult{}, err
			}
		}
		if err := e.mutateBoundaries(); err != nil {
			return RunResult{}, err
		}
		e.pop.CallEdgeMutation(e.cfg.ProbEdgeMutationInner, e.cfg.ProbEdgeMutationStart)
	}

	best, bestIdx := e.pop.Individuals[0], 0
	for i, ind := range e.pop.Individuals {
		if ind.Fitness > best.Fitness {
			best, bestIdx = ind, i
		}
	}
	result.BestFitness = best.Fitness
	result.Best = best.Record(fmt.Sprintf("best/net-%d", bestIdx))
	return result, nil
}

// tuneBest hill-climbs the boundaries of the currently fittest individual.
// The improvement is Lamarckian: the refined layout re-enters selection.
func (e *Engine) tuneBest(ctx context.Context, generation int, tuneEval tuning.Evaluator) error {
	if e.cfg.Tuner == nil || tuneEval == nil {
		return nil
	}
	attempts := e.cfg.TuneAttemptPolicy.Attempts(e.cfg.TuneAttempts, generation, e.cfg.Generations)
	if attempts <= 0 {
		return nil
	}
	bestIdx := 0
	for i, ind := range e.pop.Individuals {
		if ind.Fitness > e.pop.Individuals[bestIdx].Fitness {
			bestIdx = i
		}
	}
	_, err := e.cfg.Tuner.Tune(ctx, e.pop.Individuals[bestIdx], attempts, tuneEval)
	return err
}

func (e *Engine) mutateBoundaries() error {
	prob, sigma := e.cfg.ProbBoundaryMutation, e.cfg.SigmaBoundaryMutation
	switch e.cfg.BoundaryMutation {
	case "", BoundaryUniform:
		e.pop.CallBoundaryMutationUniform(prob)
	case BoundaryNormal:
		e.pop.CallBoundaryMutationNormal(prob, sigma)
	case BoundaryNetworkSize:
		e.pop.CallBoundaryMutationNetworkSizeSigma(prob, sigma)
	case BoundaryEdgeSize:
		e.pop.CallBoundaryMutationEdgeSizeSigma(prob, sigma)
	case BoundaryFractal:
		return e.pop.CallBoundaryMutationFractal(prob, e.cfg.MinFeatures, e.cfg.MaxFeatures)
	}
	return nil
}

// evaluateSupervised fans the batch evaluation out over a bounded worker
// pool. Supervised traversal draws no random numbers, so individuals can be
// scored concurrently; each worker touches only its own individuals.
func (e *Engine) evaluateSupervised(ctx context.Context, X [][]float64, y []int) error {
	workers := e.cfg.Workers
	if workers > len(e.pop.Individuals) {
		workers = len(e.pop.Individuals)
	}
	if workers <= 1 {
		return e.pop.AccuracyFitness(X, y, e.cfg.DMax, e.cfg.Penalty)
	}
	if err := e.pop.requireBootstrap(); err != nil {
		return err
	}

	jobs := make(chan int)
	errs := make(chan error, len(e.pop.Individuals))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs <- err
					continue
				}
				if err := e.pop.Individuals[idx].AccuracyFitness(X, y, e.cfg.DMax, e.cfg.Penalty); err != nil {
					errs <- fmt.Errorf("individual %d: %w", idx, err)
				}
			}
		}()
	}
	for i := range e.pop.Individuals {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) diagnostics(generation int) model.GenerationDiagnostics {
	totalSize, largest := 0, 0
	for _, ind := range e.pop.Individuals {
		size := len(ind.Inner)
		totalSize += size
		if size > largest {
			largest = size
		}
	}
	return model.GenerationDiagnostics{
		Generation:  generation,
		BestFitness: e.pop.BestFit,
		MeanFitness: e.pop.MeanFitness,
		MinFitness:  e.pop.MinFitness,
		MeanSize:    float64(totalSize) / float64(len(e.pop.Individuals)),
		LargestSize: largest,
	}
}
