package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"fracnet/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	networks    map[string]model.Network
	populations map[string]model.Population
	runs        map[string]model.RunRecord
	history     map[string][]float64
	diagnostics map[string][]model.GenerationDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var errNotInitialized = errors.New("store is not initialized")

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.networks = make(map[string]model.Network)
	s.populations = make(map[string]model.Population)
	s.runs = make(map[string]model.RunRecord)
	s.history = make(map[string][]float64)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	return nil
}

func (s *MemoryStore) SaveNetwork(_ context.Context, network model.Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.networks[network.ID] = network
	return nil
}

func (s *MemoryStore) GetNetwork(_ context.Context, id string) (model.Network, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Network{}, false, errNotInitialized
	}
	network, ok := s.networks[id]
	return network, ok, nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, population model.Population) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.populations[population.ID] = population
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, id string) (model.Population, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Population{}, false, errNotInitialized
	}
	population, ok := s.populations[id]
	return population, ok, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].RunID < runs[j].RunID })
	return runs, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, errNotInitialized
	}
	history, ok := s.history[runID]
	return append([]float64(nil), history...), ok, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.diagnostics[runID] = append([]model.GenerationDiagnostics(nil), diagnostics...)
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, errNotInitialized
	}
	diagnostics, ok := s.diagnostics[runID]
	return append([]model.GenerationDiagnostics(nil), diagnostics...), ok, nil
}
