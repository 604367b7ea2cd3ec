package scape

import (
	"context"
	"fmt"
)

// Info carries opaque environment metadata alongside observations.
type Info map[string]any

// Environment is the step-based contract the engine consumes for
// reinforcement fitness. Reset starts an episode and returns the initial
// observation; Step applies a discrete action and returns the next
// observation, the reward, and whether the episode terminated. Truncation
// limits and action encoding are the environment's responsibility.
type Environment interface {
	Name() string
	Reset(ctx context.Context, seed int64) ([]float64, Info, error)
	Step(ctx context.Context, action int) ([]float64, float64, bool, Info, error)
}

// New resolves a built-in environment by name.
func New(name string) (Environment, error) {
	switch name {
	case "cart-pole":
		return NewCartPole(), nil
	default:
		return nil, fmt.Errorf("unknown environment: %s", name)
	}
}
