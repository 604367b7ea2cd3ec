package fracnet

import (
	"context"
	"fmt"
	"time"

	"fracnet/internal/evo"
	"fracnet/internal/model"
	"fracnet/internal/scape"
	"fracnet/internal/stats"
	"fracnet/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "fracnet.db"
)

// Options configure the client's storage and artifact locations.
type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

// Client wires the engine to storage and run artifacts.
type Client struct {
	store        storage.Store
	artifactsDir string
}

// RunRequest describes one evolution run against a built-in environment.
type RunRequest struct {
	RunID       string
	Environment string
	Seed        int64

	Population      int
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
	BoundaryMutation      string
	AddDelete             bool

	DMax            int
	MaxSteps        int
	MaxConsecutiveP int
	WorstFitness    float64
	Workers         int
}

// RunSummary reports where a finished run landed.
type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByGeneration []float64
	FinalBestFitness float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, artifactsDir: artifactsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run evolves a population against the requested environment, persists the
// outcome, and writes run artifacts.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	req = withRunDefaults(req)

	env, err := scape.New(req.Environment)
	if err != nil {
		return RunSummary{}, err
	}
	minF, maxF, err := featureRanges(env)
	if err != nil {
		return RunSummary{}, err
	}

	engine, err := evo.NewEngine(evo.EngineConfig{
		Seed:                  req.Seed,
		PopulationSize:        req.Population,
		JudgmentNodes:         req.JudgmentNodes,
		JudgmentFuncs:         req.JudgmentFuncs,
		ProcessingNodes:       req.ProcessingNodes,
		ProcessingFuncs:       req.ProcessingFuncs,
		FractalJudgment:       req.FractalJudgment,
		Generations:           req.Generations,
		StallLimit:            req.StallLimit,
		TournamentSize:        req.TournamentSize,
		EliteCount:            req.EliteCount,
		ProbCrossover:         req.ProbCrossover,
		ProbEdgeMutationInner: req.ProbEdgeMutationInner,
		ProbEdgeMutationStart: req.ProbEdgeMutationStart,
		ProbBoundaryMutation:  req.ProbBoundaryMutation,
		SigmaBoundaryMutation: req.SigmaBoundaryMutation,
		BoundaryMutation:      evo.BoundaryMutationKind(req.BoundaryMutation),
		AddDelete:             req.AddDelete,
		DMax:                  req.DMax,
		MinFeatures:           minF,
		MaxFeatures:           maxF,
		Workers:               req.Workers,
	})
	if err != nil {
		return RunSummary{}, err
	}

	result, err := engine.RunEnvironment(ctx, env, evo.EnvParams{
		DMax:            req.DMax,
		MaxSteps:        req.MaxSteps,
		MaxConsecutiveP: req.MaxConsecutiveP,
		WorstFitness:    req.WorstFitness,
		Seed:            req.Seed,
	})
	if err != nil {
		return RunSummary{}, err
	}

	run := model.RunRecord{
		VersionedRecord: model.CurrentVersion(),
		RunID:           req.RunID,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		Scape:           env.Name(),
		Seed:            req.Seed,
		Population:      req.Population,
		Generations:     len(result.BestByGeneration),
		BestFitness:     result.BestFitness,
	}
	if err := c.persistRun(ctx, engine, run, result); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Run:         run,
		History:     result.BestByGeneration,
		Diagnostics: result.Diagnostics,
		Best:        result.Best,
	})
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            req.RunID,
		ArtifactsDir:     runDir,
		BestByGeneration: result.BestByGeneration,
		FinalBestFitness: result.BestFitness,
	}, nil
}

func (c *Client) persistRun(ctx context.Context, engine *evo.Engine, run model.RunRecord, result evo.RunResult) error {
	if err := c.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := c.store.SaveFitnessHistory(ctx, run.RunID, result.BestByGeneration); err != nil {
		return fmt.Errorf("save fitness history: %w", err)
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, run.RunID, result.Diagnostics); err != nil {
		return fmt.Errorf("save diagnostics: %w", err)
	}
	if err := c.store.SaveNetwork(ctx, result.Best); err != nil {
		return fmt.Errorf("save best network: %w", err)
	}
	if err := c.store.SavePopulation(ctx, engine.Population().Record(run.RunID)); err != nil {
		return fmt.Errorf("save population: %w", err)
	}
	return nil
}

// Runs lists every stored run record.
func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	return c.store.ListRuns(ctx)
}

// History returns the stored best-fitness trajectory of one run.
func (c *Client) History(ctx context.Context, runID string) ([]float64, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("unknown run: %s", runID)
	}
	return history, nil
}

// Diagnostics returns the stored per-generation statistics of one run.
func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, error) {
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("unknown run: %s", runID)
	}
	return diagnostics, nil
}

// Population returns the final population snapshot of one run.
func (c *Client) Population(ctx context.Context, runID string) (model.Population, error) {
	population, ok, err := c.store.GetPopulation(ctx, runID)
	if err != nil {
		return model.Population{}, err
	}
	if !ok {
		return model.Population{}, fmt.Errorf("unknown run: %s", runID)
	}
	return population, nil
}

func withRunDefaults(req RunRequest) RunRequest {
	if req.RunID == "" {
		req.RunID = fmt.Sprintf("run-%d", time.Now().UTC().UnixNano())
	}
	if req.Environment == "" {
		req.Environment = "cart-pole"
	}
	if req.Population <= 0 {
		req.Population = 100
	}
	if req.JudgmentNodes <= 0 && req.ProcessingNodes <= 0 {
		req.JudgmentNodes = 1
		req.ProcessingNodes = 2
	}
	if req.JudgmentFuncs <= 0 && req.JudgmentNodes > 0 {
		req.JudgmentFuncs = 4
	}
	if req.ProcessingFuncs <= 0 {
		req.ProcessingFuncs = 2
	}
	if req.Generations <= 0 {
		req.Generations = 50
	}
	if req.TournamentSize <= 0 {
		req.TournamentSize = 2
	}
	if req.EliteCount <= 0 {
		req.EliteCount = 1
	}
	if req.ProbCrossover <= 0 {
		req.ProbCrossover = 0.05
	}
	if req.ProbEdgeMutationInner <= 0 {
		req.ProbEdgeMutationInner = 0.03
	}
	if req.ProbEdgeMutationStart <= 0 {
		req.ProbEdgeMutationStart = 0.03
	}
	if req.ProbBoundaryMutation <= 0 {
		req.ProbBoundaryMutation = 0.1
	}
	if req.SigmaBoundaryMutation <= 0 {
		req.SigmaBoundaryMutation = 0.1
	}
	if req.BoundaryMutation == "" {
		req.BoundaryMutation = string(evo.BoundaryUniform)
	}
	if req.DMax <= 0 {
		req.DMax = 10
	}
	if req.MaxSteps <= 0 {
		req.MaxSteps = 500
	}
	if req.MaxConsecutiveP <= 0 {
		req.MaxConsecutiveP = 5
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	return req
}

func featureRanges(env scape.Environment) ([]float64, []float64, error) {
	ranged, ok := env.(interface{ FeatureRanges() ([]float64, []float64) })
	if !ok {
		return nil, nil, fmt.Errorf("environment %s does not expose feature ranges", env.Name())
	}
	minF, maxF := ranged.FeatureRanges()
	return minF, maxF, nil
}
