package evo

import (
	"context"
	"fmt"

	"fracnet/internal/genotype"
	"fracnet/internal/scape"
)

// EnvParams bound a reinforcement evaluation: the judgment depth cap, the
// episode step cap, the longest tolerated run of processing decisions between
// observations, the fitness assigned to invalidated episodes, and the seed
// handed to the environment reset.
type EnvParams struct {
	DMax            int
	MaxSteps        int
	MaxConsecutiveP int
	WorstFitness    float64
	Seed            int64
}

func (ep EnvParams) validate() error {
	if ep.DMax <= 0 {
		return fmt.Errorf("dMax must be > 0, got %d", ep.DMax)
	}
	if ep.MaxSteps <= 0 {
		return fmt.Errorf("maxSteps must be > 0, got %d", ep.MaxSteps)
	}
	if ep.MaxConsecutiveP <= 0 {
		return fmt.Errorf("maxConsecutiveP must be > 0, got %d", ep.MaxConsecutiveP)
	}
	return nil
}

// EnvironmentFitness runs one episode per individual, accumulating rewards
// into the fitness. Episodes invalidated by the depth cap or by a processing
// run past the cap score the configured worst fitness. Environment errors
// propagate unchanged.
func (p *Population) EnvironmentFitness(ctx context.Context, env scape.Environment, params EnvParams) error {
	if err := p.requireBootstrap(); err != nil {
		return err
	}
	if env == nil {
		return fmt.Errorf("environment is required")
	}
	if err := params.validate(); err != nil {
		return err
	}
	for i, ind := range p.Individuals {
		if err := runEpisode(ctx, ind, env, params); err != nil {
			return fmt.Errorf("individual %d: %w", i, err)
		}
	}
	return nil
}

func runEpisode(ctx context.Context, ind *genotype.Network, env scape.Environment, params EnvParams) error {
	obs, _, err := env.Reset(ctx, params.Seed)
	if err != nil {
		return err
	}

	ind.BeginTraversal()
	ind.Fitness = 0
	for step := 0; step < params.MaxSteps; step++ {
		decision := ind.DecisionAndNext(obs, params.DMax)
		if ind.Invalid || ind.ConsecutiveProcessing() > params.MaxConsecutiveP {
			ind.Fitness = params.WorstFitness
			return nil
		}

		next, reward, done, _, err := env.Step(ctx, decision)
		if err != nil {
			return err
		}
		ind.Fitness += reward
		if done {
			break
		}
		obs = next
	}
	return nil
}
