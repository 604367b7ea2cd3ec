package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	payload := `{
		"run_id": "run-cfg",
		"environment": "cart-pole",
		"seed": 7,
		"population": 30,
		"judgment_nodes": 2,
		"judgment_funcs": 4,
		"processing_nodes": 3,
		"processing_funcs": 2,
		"generations": 20,
		"tournament_size": 3,
		"elite_count": 2,
		"prob_crossover": 0.1,
		"boundary_mutation": "normal",
		"add_delete": true,
		"d_max": 12,
		"max_steps": 200,
		"max_consecutive_p": 4,
		"worst_fitness": -1
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if req.RunID != "run-cfg" || req.Seed != 7 || req.Population != 30 {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.BoundaryMutation != "normal" || !req.AddDelete {
		t.Fatalf("unexpected operator config %+v", req)
	}
	if req.MaxSteps != 200 || req.WorstFitness != -1 {
		t.Fatalf("unexpected episode config %+v", req)
	}
}

func TestLoadRunRequestFromConfigErrors(t *testing.T) {
	if _, err := loadRunRequestFromConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
