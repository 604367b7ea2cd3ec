package genotype

import "testing"

func TestAccuracyFitnessCountsMatches(t *testing.T) {
	net := fixedNetwork(t)
	X := [][]float64{{0.1}, {0.9}, {0.3}, {0.7}}
	y := []int{0, 1, 1, 1}
	if err := net.AccuracyFitness(X, y, 10, 5); err != nil {
		t.Fatal(err)
	}
	if net.Fitness != 0.75 {
		t.Fatalf("fitness %v, want 0.75", net.Fitness)
	}
}

func TestAccuracyFitnessInvalidation(t *testing.T) {
	net := fixedNetwork(t)
	net.Inner[0].Edges = []int{1, 1}
	net.Inner[1] = NewNode(1, Judgment, 0)
	net.Inner[1].Edges = []int{0, 0}
	net.Inner[1].Boundaries = []float64{0, 0.5, 1}

	if err := net.AccuracyFitness([][]float64{{0.2}, {0.8}}, []int{0, 1}, 10, 5); err != nil {
		t.Fatal(err)
	}
	if !net.Invalid {
		t.Fatal("cycle not flagged invalid")
	}
	if net.Fitness != 0 {
		t.Fatalf("invalid network fitness %v, want 0", net.Fitness)
	}
	if net.Decisions[0] != InvalidDecision {
		t.Fatalf("expected sentinel decision, got %d", net.Decisions[0])
	}
}

func TestAccuracyFitnessPenalizesProcessingRuns(t *testing.T) {
	net := fixedNetwork(t)
	// Chain the processing nodes so every row after the first is decided
	// without a judgment in between.
	net.Inner[1].Edges = []int{2}
	net.Inner[2].Edges = []int{1}
	net.Inner[1].Function = 0
	net.Inner[2].Function = 0

	X := [][]float64{{0.1}, {0.1}, {0.1}, {0.1}}
	y := []int{0, 0, 0, 0}
	if err := net.AccuracyFitness(X, y, 10, 2); err != nil {
		t.Fatal(err)
	}
	// Every row matches the target, but the third and fourth decisions arrive
	// after more than two consecutive processing hops and are discarded.
	if net.Fitness != 0.5 {
		t.Fatalf("fitness %v, want 0.5", net.Fitness)
	}
}

func TestAccuracyFitnessRejectsMismatchedBatch(t *testing.T) {
	net := fixedNetwork(t)
	if err := net.AccuracyFitness([][]float64{{0.1}}, []int{0, 1}, 10, 5); err == nil {
		t.Fatal("expected error for mismatched batch")
	}
	if err := net.AccuracyFitness(nil, nil, 10, 5); err == nil {
		t.Fatal("expected error for empty batch")
	}
}
