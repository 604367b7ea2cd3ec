//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "fracnet.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	network := sampleNetwork("net-sql")
	if err := store.SaveNetwork(ctx, network); err != nil {
		t.Fatal(err)
	}
	got, ok, err := store.GetNetwork(ctx, "net-sql")
	if err != nil || !ok {
		t.Fatalf("get network: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, network) {
		t.Fatal("network changed through sqlite")
	}

	history := []float64{0.1, 0.5}
	if err := store.SaveFitnessHistory(ctx, "run-sql", history); err != nil {
		t.Fatal(err)
	}
	gotHistory, ok, err := store.GetFitnessHistory(ctx, "run-sql")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(gotHistory, history) {
		t.Fatal("history changed through sqlite")
	}

	if _, ok, err := store.GetNetwork(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing network: ok=%v err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	store := NewSQLiteStore("")
	if err := store.Init(context.Background()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
