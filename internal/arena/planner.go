package arena

import "math/rand"

// PlanConfig tunes how many hazards a round requests.
type PlanConfig struct {
	// PerPlayerRate scales the count with population.
	PerPlayerRate int
	// BaseOffset is added to the population before scaling, so an empty
	// server still gets a baseline shower.
	BaseOffset int
	// AbsoluteCap bounds server load no matter how full the server gets.
	AbsoluteCap int
}

// Planner decides how many hazards to request and where to place them.
// It never creates hazards itself; the round loop feeds its output to the
// hazard subsystem one request per planned unit.
//
// SamplePosition is not safe for concurrent use: the lifecycle goroutine is
// the only caller.
type Planner struct {
	cfg    PlanConfig
	bounds Bounds
	rng    *rand.Rand
}

func NewPlanner(bounds Bounds, cfg PlanConfig, rng *rand.Rand) *Planner {
	return &Planner{cfg: cfg, bounds: bounds, rng: rng}
}

// PlannedCount returns min(cap, rate*(population+offset)). Monotonically
// non-decreasing in population.
func (p *Planner) PlannedCount(population int) int {
	n := p.cfg.PerPlayerRate * (population + p.cfg.BaseOffset)
	if n > p.cfg.AbsoluteCap {
		return p.cfg.AbsoluteCap
	}
	if n < 0 {
		return 0
	}
	return n
}

// SamplePosition draws a point uniformly within the spawn bounds, each axis
// sampled independently.
func (p *Planner) SamplePosition() Vec3 {
	return Vec3{
		X: p.bounds.Min.X + p.rng.Float64()*(p.bounds.Max.X-p.bounds.Min.X),
		Y: p.bounds.Min.Y + p.rng.Float64()*(p.bounds.Max.Y-p.bounds.Min.Y),
		Z: p.bounds.Min.Z + p.rng.Float64()*(p.bounds.Max.Z-p.bounds.Min.Z),
	}
}

// Bounds returns the spawn volume the planner samples from.
func (p *Planner) Bounds() Bounds { return p.bounds }
