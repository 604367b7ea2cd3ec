package scape

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// CartPole is the classic pole-balancing control task: a cart on a frictionless
// track balances a pole by applying a fixed force left or right each step.
// Observations are [x, x_dot, theta, theta_dot]; actions are 0 (left) and
// 1 (right); the reward is 1 per step until the cart leaves the track or the
// pole tips past the threshold.
type CartPole struct {
	x        float64
	xDot     float64
	theta    float64
	thetaDot float64
	done     bool
	rng      *rand.Rand
}

const (
	cartPoleGravity        = 9.8
	cartPoleMassCart       = 1.0
	cartPoleMassPole       = 0.1
	cartPoleTotalMass      = cartPoleMassCart + cartPoleMassPole
	cartPolePoleHalfLength = 0.5
	cartPolePoleMassLength = cartPoleMassPole * cartPolePoleHalfLength
	cartPoleForceMag       = 10.0
	cartPoleTau            = 0.02

	cartPoleThetaThreshold = 12 * 2 * math.Pi / 360
	cartPoleXThreshold     = 2.4
)

func NewCartPole() *CartPole {
	return &CartPole{done: true}
}

func (c *CartPole) Name() string {
	return "cart-pole"
}

func (c *CartPole) Reset(ctx context.Context, seed int64) ([]float64, Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	c.rng = rand.New(rand.NewSource(seed))
	c.x = c.uniform()
	c.xDot = c.uniform()
	c.theta = c.uniform()
	c.thetaDot = c.uniform()
	c.done = false
	return c.observation(), Info{"seed": seed}, nil
}

func (c *CartPole) Step(ctx context.Context, action int) ([]float64, float64, bool, Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, false, nil, err
	}
	if c.done {
		return nil, 0, true, nil, fmt.Errorf("step on a terminated episode")
	}
	if action != 0 && action != 1 {
		return nil, 0, false, nil, fmt.Errorf("cart-pole action must be 0 or 1, got %d", action)
	}

	force := -cartPoleForceMag
	if action == 1 {
		force = cartPoleForceMag
	}
	cosTheta := math.Cos(c.theta)
	sinTheta := math.Sin(c.theta)

	temp := (force + cartPolePoleMassLength*c.thetaDot*c.thetaDot*sinTheta) / cartPoleTotalMass
	thetaAcc := (cartPoleGravity*sinTheta - cosTheta*temp) /
		(cartPolePoleHalfLength * (4.0/3.0 - cartPoleMassPole*cosTheta*cosTheta/cartPoleTotalMass))
	xAcc := temp - cartPolePoleMassLength*thetaAcc*cosTheta/cartPoleTotalMass

	c.x += cartPoleTau * c.xDot
	c.xDot += cartPoleTau * xAcc
	c.theta += cartPoleTau * c.thetaDot
	c.thetaDot += cartPoleTau * thetaAcc

	c.done = c.x < -cartPoleXThreshold || c.x > cartPoleXThreshold ||
		c.theta < -cartPoleThetaThreshold || c.theta > cartPoleThetaThreshold

	return c.observation(), 1.0, c.done, Info{}, nil
}

// FeatureRanges returns per-feature bounds suitable for judgment boundary
// bootstrapping over cart-pole observations.
func (c *CartPole) FeatureRanges() (minF, maxF []float64) {
	return []float64{-4.8, -5, -0.418, -10}, []float64{4.8, 5, 0.418, 10}
}

func (c *CartPole) uniform() float64 {
	return c.rng.Float64()*0.02 - 0.01
}

func (c *CartPole) observation() []float64 {
	return []float64{c.x, c.xDot, c.theta, c.thetaDot}
}
