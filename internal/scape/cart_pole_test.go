package scape

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestCartPoleResetIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a := NewCartPole()
	b := NewCartPole()
	obsA, _, err := a.Reset(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	obsB, _, err := b.Reset(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(obsA, obsB) {
		t.Fatalf("same seed, different observations: %v vs %v", obsA, obsB)
	}
	for _, v := range obsA {
		if math.Abs(v) > 0.01 {
			t.Fatalf("initial state %v outside [-0.01, 0.01]", obsA)
		}
	}
}

func TestCartPoleEpisodeTerminates(t *testing.T) {
	ctx := context.Background()
	env := NewCartPole()
	if _, _, err := env.Reset(ctx, 7); err != nil {
		t.Fatal(err)
	}
	// Pushing right forever tips the pole within a bounded number of steps.
	total := 0.0
	done := false
	for step := 0; step < 1000; step++ {
		obs, reward, d, _, err := env.Step(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(obs) != 4 {
			t.Fatalf("observation length %d", len(obs))
		}
		total += reward
		if d {
			done = true
			break
		}
	}
	if !done {
		t.Fatal("one-sided policy did not terminate")
	}
	if total < 1 {
		t.Fatalf("no reward collected: %v", total)
	}
}

func TestCartPoleRejectsBadUse(t *testing.T) {
	ctx := context.Background()
	env := NewCartPole()
	if _, _, _, _, err := env.Step(ctx, 0); err == nil {
		t.Fatal("expected error stepping before reset")
	}
	if _, _, err := env.Reset(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, _, _, _, err := env.Step(ctx, 5); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestNewResolvesByName(t *testing.T) {
	env, err := New("cart-pole")
	if err != nil {
		t.Fatal(err)
	}
	if env.Name() != "cart-pole" {
		t.Fatalf("unexpected name %s", env.Name())
	}
	if _, err := New("lunar-lander"); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}
