package evo

import (
	"reflect"
	"testing"
)

func TestPopulationSnapshotRoundTrip(t *testing.T) {
	pop := newBootstrappedPopulation(t, 97, 4)
	X := [][]float64{{0.2, 0.1}, {0.7, -0.4}, {0.9, 0.8}}
	y := []int{0, 1, 1}
	if err := pop.AccuracyFitness(X, y, 10, 5); err != nil {
		t.Fatal(err)
	}
	if err := pop.TournamentSelection(2, 1); err != nil {
		t.Fatal(err)
	}

	rec := pop.Record("pop-1")
	restored, err := PopulationFromRecord(97, rec)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(restored.Record("pop-1"), rec) {
		t.Fatal("snapshot round trip altered the record")
	}
	if restored.BestFit != pop.BestFit || restored.MinFitness != pop.MinFitness {
		t.Fatal("statistics differ after restore")
	}
	if !reflect.DeepEqual(restored.EliteIndices, pop.EliteIndices) {
		t.Fatal("elite indices differ after restore")
	}

	// The restored population evaluates identically without a fresh bootstrap.
	if err := restored.AccuracyFitness(X, y, 10, 5); err != nil {
		t.Fatal(err)
	}
	if err := pop.AccuracyFitness(X, y, 10, 5); err != nil {
		t.Fatal(err)
	}
	for i := range pop.Individuals {
		if pop.Individuals[i].Fitness != restored.Individuals[i].Fitness {
			t.Fatalf("individual %d fitness differs after restore", i)
		}
	}
}

func TestPopulationFromRecordValidatesShape(t *testing.T) {
	pop := newBootstrappedPopulation(t, 103, 3)
	rec := pop.Record("pop-2")
	rec.Size = 5
	if _, err := PopulationFromRecord(103, rec); err == nil {
		t.Fatal("expected error for size mismatch")
	}
}
