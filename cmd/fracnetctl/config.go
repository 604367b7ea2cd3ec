package main

import (
	"encoding/json"
	"fmt"
	"os"

	fracnetapi "fracnet/pkg/fracnet"
)

type runConfigFile struct {
	RunID           string `json:"run_id"`
	Environment     string `json:"environment"`
	Seed            int64  `json:"seed"`
	Population      int    `json:"population"`
	JudgmentNodes   int    `json:"judgment_nodes"`
	JudgmentFuncs   int    `json:"judgment_funcs"`
	ProcessingNodes int    `json:"processing_nodes"`
	ProcessingFuncs int    `json:"processing_funcs"`
	FractalJudgment bool   `json:"fractal_judgment"`

	Generations    int `json:"generations"`
	StallLimit     int `json:"stall_limit"`
	TournamentSize int `json:"tournament_size"`
	EliteCount     int `json:"elite_count"`

	ProbCrossover         float64 `json:"prob_crossover"`
	ProbEdgeMutationInner float64 `json:"prob_edge_mutation_inner"`
	ProbEdgeMutationStart float64 `json:"prob_edge_mutation_start"`
	ProbBoundaryMutation  float64 `json:"prob_boundary_mutation"`
	SigmaBoundaryMutation float64 `json:"sigma_boundary_mutation"`
	BoundaryMutation      string  `json:"boundary_mutation"`
	AddDelete             bool    `json:"add_delete"`

	DMax            int     `json:"d_max"`
	MaxSteps        int     `json:"max_steps"`
	MaxConsecutiveP int     `json:"max_consecutive_p"`
	WorstFitness    float64 `json:"worst_fitness"`
	Workers         int     `json:"workers"`
}

func loadRunRequestFromConfig(path string) (fracnetapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fracnetapi.RunRequest{}, err
	}
	var cfg runConfigFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fracnetapi.RunRequest{}, fmt.Errorf("parse run config: %w", err)
	}
	return fracnetapi.RunRequest{
		RunID:                 cfg.RunID,
		Environment:           cfg.Environment,
		Seed:                  cfg.Seed,
		Population:            cfg.Population,
		JudgmentNodes:         cfg.JudgmentNodes,
		JudgmentFuncs:         cfg.JudgmentFuncs,
		ProcessingNodes:       cfg.ProcessingNodes,
		ProcessingFuncs:       cfg.ProcessingFuncs,
		FractalJudgment:       cfg.FractalJudgment,
		Generations:           cfg.Generations,
		StallLimit:            cfg.StallLimit,
		TournamentSize:        cfg.TournamentSize,
		EliteCount:            cfg.EliteCount,
		ProbCrossover:         cfg.ProbCrossover,
		ProbEdgeMutationInner: cfg.ProbEdgeMutationInner,
		ProbEdgeMutationStart: cfg.ProbEdgeMutationStart,
		ProbBoundaryMutation:  cfg.ProbBoundaryMutation,
		SigmaBoundaryMutation: cfg.SigmaBoundaryMutation,
		BoundaryMutation:      cfg.BoundaryMutation,
		AddDelete:             cfg.AddDelete,
		DMax:                  cfg.DMax,
		MaxSteps:              cfg.MaxSteps,
		MaxConsecutiveP:       cfg.MaxConsecutiveP,
		WorstFitness:          cfg.WorstFitness,
		Workers:               cfg.Workers,
	}, nil
}
