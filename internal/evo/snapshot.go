package evo

import (
	"fmt"
	"math/rand"

	"fracnet/internal/genotype"
	"fracnet/internal/model"
)

// Record snapshots the population component-wise under the given identity.
func (p *Population) Record(id string) model.Population {
	individuals := make([]model.Network, len(p.Individuals))
	for i, ind := range p.Individuals {
		individuals[i] = ind.Record(fmt.Sprintf("%s/net-%d", id, i))
	}
	return model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              id,
		Size:            p.Size,
		BestFitness:     p.BestFit,
		MeanFitness:     p.MeanFitness,
		MinFitness:      p.MinFitness,
		EliteIDs:        append([]int(nil), p.EliteIndices...),
		Individuals:     individuals,
	}
}

// PopulationFromRecord rebuilds a population from its snapshot around a fresh
// generator seeded by the caller. Boundary bootstrap state is inferred from
// the snapshot so evaluation can resume immediately.
func PopulationFromRecord(seed int64, rec model.Population) (*Population, error) {
	if rec.Size != len(rec.Individuals) {
		return nil, fmt.Errorf("snapshot size %d holds %d individuals", rec.Size, len(rec.Individuals))
	}
	if rec.Size == 0 {
		return nil, fmt.Errorf("snapshot population is empty")
	}
	rng := rand.New(rand.NewSource(seed))
	individuals := make([]*genotype.Network, len(rec.Individuals))
	bootstrapped := true
	for i, netRec := range rec.Individuals {
		net, err := genotype.NetworkFromRecord(rng, netRec)
		if err != nil {
			return nil, fmt.Errorf("individual %d: %w", i, err)
		}
		individuals[i] = net
		for j := range net.Inner {
			if net.Inner[j].Kind == genotype.Judgment && len(net.Inner[j].Boundaries) == 0 {
				bootstrapped = false
			}
		}
	}
	return &Population{
		rng:          rng,
		Size:         rec.Size,
		Individuals:  individuals,
		BestFit:      rec.BestFitness,
		MeanFitness:  rec.MeanFitness,
		MinFitness:   rec.MinFitness,
		EliteIndices: append([]int(nil), rec.EliteIDs...),
		bootstrapped: bootstrapped,
	}, nil
}
