// Package simulate generates synthetic sample streams for exercising a
// collector: a ball bouncing on flat ground, observed through a noisy
// position sensor.
package simulate

import (
	"math/rand/v2"
)

// Params describes the ballistic scene.
type Params struct {
	// Start position of the ball center.
	X0, Y0 float64

	// Initial velocity.
	VX0, VY0 float64

	// Gravity along y (negative is down).
	Gravity float64

	// Dt is the integration step in seconds.
	Dt float64

	// Radius of the ball.
	Radius float64

	// Ground is the y coordinate of the ground surface.
	Ground float64

	// Restitution is the fraction of vertical speed kept on impact.
	Restitution float64

	// NoiseStdDev and NoiseScale shape the sensor error:
	// measurement = truth + NoiseScale * N(0, NoiseStdDev).
	NoiseStdDev float64
	NoiseScale  float64
}

// DefaultParams returns the reference scene: a ball launched from (0, 1)
// at (10, 100) m/s, sampled at 60 Hz.
func DefaultParams() Params {
	return Params{
		X0:          0,
		Y0:          1,
		VX0:         10,
		VY0:         100,
		Gravity:     -9.81,
		Dt:          1.0 / 60.0,
		Radius:      0.5,
		Ground:      1,
		Restitution: 1,
		NoiseStdDev: 2,
		NoiseScale:  10,
	}
}

// Measurement is one simulation step.
type Measurement struct {
	Step int
	Time float64

	// True position of the ball center.
	TrueX, TrueY float64

	// Noisy sensor reading.
	X, Y float64
}

// Ballistic integrates the scene one step at a time.
// It is not safe for concurrent use.
type Ballistic struct {
	p      Params
	rng    *rand.Rand
	step   int
	t      float64
	x, y   float64
	vx, vy float64
}

// NewBallistic creates a simulation seeded with seed.
func NewBallistic(p Params, seed uint64) *Ballistic {
	b := &Ballistic{
		p:   p,
		rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		x:   p.X0,
		y:   p.Y0,
		vx:  p.VX0,
		vy:  p.VY0,
	}
	// A start position inside the ground is lifted onto it.
	if floor := p.Ground + p.Radius; b.y < floor {
		b.y = floor
	}
	return b
}

// Next advances the simulation by one step and returns the measurement.
func (b *Ballistic) Next() Measurement {
	dt := b.p.Dt

	b.vy += b.p.Gravity * dt
	b.x += b.vx * dt
	b.y += b.vy * dt

	floor := b.p.Ground + b.p.Radius
	if b.y < floor {
		// Reflect the penetration depth and the vertical velocity.
		b.y = floor + (floor-b.y)*b.p.Restitution
		b.vy = -b.vy * b.p.Restitution
	}

	b.t += dt
	b.step++

	return Measurement{
		Step:  b.step - 1,
		Time:  b.t,
		TrueX: b.x,
		TrueY: b.y,
		X:     b.x + b.noise(),
		Y:     b.y + b.noise(),
	}
}

// Steps returns the number of steps taken so far.
func (b *Ballistic) Steps() int {
	return b.step
}

func (b *Ballistic) noise() float64 {
	if b.p.NoiseStdDev == 0 || b.p.NoiseScale == 0 {
		return 0
	}
	return b.p.NoiseScale * b.rng.NormFloat64() * b.p.NoiseStdDev
}
