package storage

import (
	"context"
	"reflect"
	"testing"

	"fracnet/internal/model"
)

func sampleNetwork(id string) model.Network {
	return model.Network{
		VersionedRecord: model.CurrentVersion(),
		ID:              id,
		JudgmentCount:   1,
		JudgmentFuncs:   2,
		ProcessingCount: 2,
		ProcessingFuncs: 2,
		Start:           model.Node{ID: -1, Kind: model.KindStart, Edges: []int{0}},
		Inner: []model.Node{
			{ID: 0, Kind: model.KindJudgment, Function: 1, Edges: []int{1, 2}, Boundaries: []float64{0, 0.5, 1}},
			{ID: 1, Kind: model.KindProcessing, Edges: []int{0}},
			{ID: 2, Kind: model.KindProcessing, Function: 1, Edges: []int{0}},
		},
		Fitness: 0.75,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}

	network := sampleNetwork("net-1")
	if err := store.SaveNetwork(ctx, network); err != nil {
		t.Fatal(err)
	}
	got, ok, err := store.GetNetwork(ctx, "net-1")
	if err != nil || !ok {
		t.Fatalf("get network: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, network) {
		t.Fatal("network changed in storage")
	}

	population := model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              "pop-1",
		Size:            1,
		BestFitness:     0.75,
		Individuals:     []model.Network{network},
	}
	if err := store.SavePopulation(ctx, population); err != nil {
		t.Fatal(err)
	}
	gotPop, ok, err := store.GetPopulation(ctx, "pop-1")
	if err != nil || !ok {
		t.Fatalf("get population: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(gotPop, population) {
		t.Fatal("population changed in storage")
	}

	history := []float64{0.2, 0.4, 0.75}
	if err := store.SaveFitnessHistory(ctx, "run-1", history); err != nil {
		t.Fatal(err)
	}
	gotHistory, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(gotHistory, history) {
		t.Fatal("history changed in storage")
	}

	diagnostics := []model.GenerationDiagnostics{{Generation: 1, BestFitness: 0.2, MeanSize: 3}}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", diagnostics); err != nil {
		t.Fatal(err)
	}
	gotDiag, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get diagnostics: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(gotDiag, diagnostics) {
		t.Fatal("diagnostics changed in storage")
	}
}

func TestMemoryStoreListRunsSorted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"run-b", "run-a", "run-c"} {
		if err := store.SaveRun(ctx, model.RunRecord{VersionedRecord: model.CurrentVersion(), RunID: id}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 || runs[0].RunID != "run-a" || runs[2].RunID != "run-c" {
		t.Fatalf("unexpected run order: %+v", runs)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveNetwork(context.Background(), sampleNetwork("x")); err == nil {
		t.Fatal("expected error before Init")
	}
	if _, _, err := store.GetNetwork(context.Background(), "x"); err == nil {
		t.Fatal("expected error before Init")
	}
}

func TestMissingKeysReportAbsence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.GetNetwork(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing network: ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.GetFitnessHistory(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing history: ok=%v err=%v", ok, err)
	}
}
