package storage

import (
	"context"

	"fracnet/internal/model"
)

// Store defines persistence operations for engine snapshots and run history.
type Store interface {
	Init(ctx context.Context) error
	SaveNetwork(ctx context.Context, network model.Network) error
	GetNetwork(ctx context.Context, id string) (model.Network, bool, error)
	SavePopulation(ctx context.Context, population model.Population) error
	GetPopulation(ctx context.Context, id string) (model.Population, bool, error)
	SaveRun(ctx context.Context, run model.RunRecord) error
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
}

// CloseIfSupported closes stores that hold external resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
