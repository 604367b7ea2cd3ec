package evo

import (
	"context"
	"reflect"
	"testing"

	"fracnet/internal/tuning"
)

func supervisedBatch() ([][]float64, []int) {
	X := [][]float64{
		{0.05}, {0.15}, {0.25}, {0.35}, {0.45},
		{0.55}, {0.65}, {0.75}, {0.85}, {0.95},
	}
	y := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	return X, y
}

func supervisedConfig(seed int64) EngineConfig {
	return EngineConfig{
		Seed:                  seed,
		PopulationSize:        16,
		JudgmentNodes:         2,
		JudgmentFuncs:         1,
		ProcessingNodes:       2,
		ProcessingFuncs:       2,
		Generations:           6,
		TournamentSize:        2,
		EliteCount:            1,
		ProbCrossover:         0.1,
		ProbEdgeMutationInner: 0.05,
		ProbEdgeMutationStart: 0.05,
		ProbBoundaryMutation:  0.1,
		SigmaBoundaryMutation: 0.1,
		BoundaryMutation:      BoundaryUniform,
		DMax:                  10,
		Penalty:               5,
		MinFeatures:           []float64{0},
		MaxFeatures:           []float64{1},
	}
}

func TestEngineRunSupervised(t *testing.T) {
	engine, err := NewEngine(supervisedConfig(5))
	if err != nil {
		t.Fatal(err)
	}
	X, y := supervisedBatch()
	result, err := engine.RunSupervised(context.Background(), X, y)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.BestByGeneration) == 0 || len(result.BestByGeneration) > 6 {
		t.Fatalf("unexpected generation count %d", len(result.BestByGeneration))
	}
	if len(result.Diagnostics) != len(result.BestByGeneration) {
		t.Fatalf("diagnostics rows %d != generations %d", len(result.Diagnostics), len(result.BestByGeneration))
	}
	for _, best := range result.BestByGeneration {
		if best < 0 || best > 1 {
			t.Fatalf("accuracy fitness %v outside [0,1]", best)
		}
	}
	if result.BestFitness < 0 || result.BestFitness > 1 {
		t.Fatalf("final best fitness %v outside [0,1]", result.BestFitness)
	}
	if len(result.Best.Inner) < 2 {
		t.Fatal("best network snapshot missing")
	}
}

func TestEngineElitismKeepsBestMonotone(t *testing.T) {
	cfg := supervisedConfig(9)
	cfg.Generations = 8
	cfg.AddDelete = false
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	X, y := supervisedBatch()
	result, err := engine.RunSupervised(context.Background(), X, y)
	if err != nil {
		t.Fatal(err)
	}
	for g := 1; g < len(result.BestByGeneration); g++ {
		if result.BestByGeneration[g] < result.BestByGeneration[g-1] {
			t.Fatalf("best fitness dropped at generation %d: %v", g, result.BestByGeneration)
		}
	}
}

func TestEngineDeterminism(t *testing.T) {
	X, y := supervisedBatch()
	run := func(workers int) RunResult {
		cfg := supervisedConfig(77)
		cfg.Workers = workers
		engine, err := NewEngine(cfg)
		if err != nil {
			t.Fatal(err)
		}
		result, err := engine.RunSupervised(context.Background(), X, y)
		if err != nil {
			t.Fatal(err)
		}
		return result
	}
	serial := run(1)
	again := run(1)
	parallel := run(4)
	if !reflect.DeepEqual(serial.BestByGeneration, again.BestByGeneration) {
		t.Fatalf("same seed diverged: %v vs %v", serial.BestByGeneration, again.BestByGeneration)
	}
	if !reflect.DeepEqual(serial.BestByGeneration, parallel.BestByGeneration) {
		t.Fatalf("parallel evaluation diverged: %v vs %v", serial.BestByGeneration, parallel.BestByGeneration)
	}
}

func TestEngineStallCutoff(t *testing.T) {
	cfg := supervisedConfig(13)
	cfg.Generations = 50
	cfg.StallLimit = 2
	// Freeze evolution so the best fitness cannot move and the cutoff fires.
	cfg.ProbCrossover = 0
	cfg.ProbEdgeMutationInner = 0
	cfg.ProbEdgeMutationStart = 0
	cfg.ProbBoundaryMutation = 0
	cfg.AddDelete = false
	cfg.TournamentSize = cfg.PopulationSize
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	X, y := supervisedBatch()
	result, err := engine.RunSupervised(context.Background(), X, y)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.BestByGeneration) >= 50 {
		t.Fatalf("stall cutoff never fired: %d generations", len(result.BestByGeneration))
	}
}

func TestEngineRunEnvironment(t *testing.T) {
	cfg := supervisedConfig(21)
	cfg.JudgmentNodes = 0
	cfg.JudgmentFuncs = 0
	cfg.ProcessingNodes = 3
	cfg.Generations = 3
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	env := &stubEnv{episodeLen: 10}
	params := EnvParams{DMax: 10, MaxSteps: 20, MaxConsecutiveP: 50, WorstFitness: -1, Seed: 3}
	result, err := engine.RunEnvironment(context.Background(), env, params)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.BestByGeneration) != 3 {
		t.Fatalf("expected 3 generations, got %d", len(result.BestByGeneration))
	}
	if result.BestByGeneration[0] != 10 {
		t.Fatalf("expected full-episode reward 10, got %v", result.BestByGeneration[0])
	}
}

func TestEngineTunerRefinesBoundaries(t *testing.T) {
	cfg := supervisedConfig(33)
	tuner, err := tuning.NewBoundaryTuner(99, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Tuner = tuner
	cfg.TuneAttempts = 5
	cfg.TuneAttemptPolicy = tuning.AnnealedAttemptPolicy{}
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}

	base, err := NewEngine(supervisedConfig(33))
	if err != nil {
		t.Fatal(err)
	}

	X, y := supervisedBatch()
	tuned, err := engine.RunSupervised(context.Background(), X, y)
	if err != nil {
		t.Fatal(err)
	}
	untuned, err := base.RunSupervised(context.Background(), X, y)
	if err != nil {
		t.Fatal(err)
	}
	if tuned.BestByGeneration[0] < untuned.BestByGeneration[0] {
		t.Fatalf("tuning regressed the first generation: %v < %v",
			tuned.BestByGeneration[0], untuned.BestByGeneration[0])
	}
}

func TestEngineRejectsTunerWithoutAttempts(t *testing.T) {
	cfg := supervisedConfig(35)
	tuner, err := tuning.NewBoundaryTuner(1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Tuner = tuner
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for tuner without attempts")
	}
}

func TestNewEngineValidation(t *testing.T) {
	base := supervisedConfig(1)

	cfg := base
	cfg.PopulationSize = 0
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for zero population")
	}

	cfg = base
	cfg.MinFeatures = nil
	cfg.MaxFeatures = nil
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for missing feature ranges")
	}

	cfg = base
	cfg.BoundaryMutation = "bogus"
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for unknown boundary mutation")
	}

	cfg = base
	cfg.BoundaryMutation = BoundaryFractal
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for fractal mutation without fractal judgment")
	}
}
