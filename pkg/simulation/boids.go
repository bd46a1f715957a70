package simulation

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// CohesionMode selects how the centroid of the other boids is averaged.
type CohesionMode string

const (
	// CohesionAverage scales the sum of the other positions by 1/(N-1).
	CohesionAverage CohesionMode = "average"
	// CohesionLiteral reproduces the historical arithmetic: the accumulator is seeded
	// with the first other boid, every boid at a different position is added, and the
	// sum is scaled by (1/N)-1.
	CohesionLiteral CohesionMode = "literal"
)

// SeparationMetric selects which neighbours count as "too close".
type SeparationMetric string

const (
	// SeparationSquared pushes away from neighbours with |delta|² < minDist²,
	// each push being the unit vector away from the neighbour.
	SeparationSquared SeparationMetric = "squared"
	// SeparationLiteral reproduces the historical metric: d = sqrt(|delta|) is compared
	// against minDist² and the push is delta / sqrt(d).
	SeparationLiteral SeparationMetric = "literal"
)

// Rules holds the steering constants and rule toggles for one simulation.
type Rules struct {
	ViewRange  float32 // margin from the cube walls where boundary avoidance starts
	BoundsRate float32

	CoherenceRate float32

	AvoidanceRange float32 // separation trigger distance
	AvoidanceRate  float32

	MatchVelocityRate float32

	DragMultiplier float32

	EnableBounds     bool
	EnableCohesion   bool
	EnableSeparation bool
	EnableAlignment  bool

	CohesionMode     CohesionMode
	SeparationMetric SeparationMetric
}

// DefaultRules returns the reference tuning. Alignment is off.
func DefaultRules() Rules {
	return Rules{
		ViewRange:         3.0,
		BoundsRate:        5.0,
		CoherenceRate:     2.0,
		AvoidanceRange:    2.0,
		AvoidanceRate:     5.0,
		MatchVelocityRate: 1.0,
		DragMultiplier:    30.0,
		EnableBounds:      true,
		EnableCohesion:    true,
		EnableSeparation:  true,
		EnableAlignment:   false,
		CohesionMode:      CohesionAverage,
		SeparationMetric:  SeparationSquared,
	}
}

// Perception is the frozen view of the flock every boid steers against during one pass.
// It must not be mutated while a steering pass is running.
type Perception struct {
	Positions  []mgl32.Vec3
	Velocities []mgl32.Vec3

	grid *spatialGrid
}

// NewPerception copies the positions and velocities of agents.
func NewPerception(agents []Agent) *Perception {
	p := &Perception{}
	p.capture(agents)
	return p
}

// capture refills the snapshot buffers, reusing their capacity.
func (p *Perception) capture(agents []Agent) {
	p.Positions = p.Positions[:0]
	p.Velocities = p.Velocities[:0]
	for i := range agents {
		p.Positions = append(p.Positions, agents[i].Position)
		p.Velocities = append(p.Velocities, agents[i].Velocity)
	}
}

// ComputeBoidUpdate calculates the new velocity of boid me based on boids rules.
// Rules are applied in order: bounds, cohesion, separation, alignment.
func ComputeBoidUpdate(me int, p *Perception, halfSize mgl32.Vec3, dt float32, r *Rules) mgl32.Vec3 {
	pos := p.Positions[me]
	v := p.Velocities[me]

	if r.EnableBounds {
		v = v.Add(AvoidInsideBoundsOfCube(pos, halfSize, r.ViewRange, r.BoundsRate, dt))
	}
	if r.EnableCohesion {
		v = v.Add(UpdateCoherence(me, p.Positions, r.CohesionMode, r.CoherenceRate, dt))
	}
	if r.EnableSeparation {
		if p.grid != nil {
			var buf [64]int
			v = v.Add(avoidCandidates(me, p.grid.nearby(pos, buf[:0]), p.Positions, r.AvoidanceRange, r.SeparationMetric, r.AvoidanceRate, dt))
		} else {
			v = v.Add(AvoidOthers(me, p.Positions, r.AvoidanceRange, r.SeparationMetric, r.AvoidanceRate, dt))
		}
	}
	if r.EnableAlignment {
		v = v.Add(MatchVelocity(me, v, p.Velocities, r.MatchVelocityRate, dt))
	}
	return v
}

// AvoidInsideBoundsOfCube returns the velocity change pushing a boid back inside the cube
// of the given half size. Each axis is handled independently and only past the margin.
func AvoidInsideBoundsOfCube(pos, halfSize mgl32.Vec3, avoidRange, rate, dt float32) mgl32.Vec3 {
	var delta mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		depth := abs32(pos[axis]) - halfSize[axis] + avoidRange
		if depth <= 0 {
			continue
		}
		delta[axis] = -depth * geometry.Sign(pos[axis]) * rate * dt
	}
	return delta
}

// UpdateCoherence returns the velocity change steering boid me toward the other boids.
func UpdateCoherence(me int, positions []mgl32.Vec3, mode CohesionMode, rate, dt float32) mgl32.Vec3 {
	n := len(positions)
	if n < 2 {
		return mgl32.Vec3{}
	}
	pos := positions[me]

	var center mgl32.Vec3
	switch mode {
	case CohesionLiteral:
		first := 0
		if me == 0 {
			first = 1
		}
		center = positions[first]
		for i := range positions {
			if positions[i] == pos {
				continue
			}
			center = center.Add(positions[i])
		}
		center = center.Mul(1/float32(n) - 1)
	default:
		for i := range positions {
			if i == me {
				continue
			}
			center = center.Add(positions[i])
		}
		center = center.Mul(1 / float32(n-1))
	}
	return center.Sub(pos).Mul(rate * dt)
}

// AvoidOthers returns the velocity change pushing boid me away from every boid
// closer than minDist, checking the whole flock.
func AvoidOthers(me int, positions []mgl32.Vec3, minDist float32, metric SeparationMetric, rate, dt float32) mgl32.Vec3 {
	if len(positions) < 2 {
		return mgl32.Vec3{}
	}
	pos := positions[me]
	var step mgl32.Vec3
	for i := range positions {
		if i == me {
			continue
		}
		step = step.Add(separationPush(pos.Sub(positions[i]), minDist, metric))
	}
	return step.Mul(rate * dt)
}

// avoidCandidates is AvoidOthers restricted to an ascending list of candidate indices.
// As long as candidates holds every boid within reach, the result is identical.
func avoidCandidates(me int, candidates []int, positions []mgl32.Vec3, minDist float32, metric SeparationMetric, rate, dt float32) mgl32.Vec3 {
	if len(positions) < 2 {
		return mgl32.Vec3{}
	}
	pos := positions[me]
	var step mgl32.Vec3
	for _, i := range candidates {
		if i == me {
			continue
		}
		step = step.Add(separationPush(pos.Sub(positions[i]), minDist, metric))
	}
	return step.Mul(rate * dt)
}

// separationPush is the contribution of one neighbour at offset delta (me - other).
func separationPush(delta mgl32.Vec3, minDist float32, metric SeparationMetric) mgl32.Vec3 {
	minDistSqr := minDist * minDist
	switch metric {
	case SeparationLiteral:
		d := sqrt32(delta.Len())
		if d > 0 && d < minDistSqr {
			return delta.Mul(1 / sqrt32(d))
		}
	default:
		distSq := delta.Dot(delta)
		if distSq > 0 && distSq < minDistSqr {
			return delta.Mul(1 / sqrt32(distSq))
		}
	}
	return mgl32.Vec3{}
}

// SeparationReach is the largest center distance at which separation still
// reacts under the given metric.
func SeparationReach(minDist float32, metric SeparationMetric) float32 {
	if metric == SeparationLiteral {
		sq := minDist * minDist
		return sq * sq
	}
	return minDist
}

// MatchVelocity returns the velocity change steering velocity toward the average
// velocity of the other boids.
func MatchVelocity(me int, velocity mgl32.Vec3, velocities []mgl32.Vec3, rate, dt float32) mgl32.Vec3 {
	n := len(velocities)
	if n < 2 {
		return mgl32.Vec3{}
	}
	var avg mgl32.Vec3
	for i := range velocities {
		if i == me {
			continue
		}
		avg = avg.Add(velocities[i])
	}
	avg = avg.Mul(1 / float32(n-1))
	return avg.Sub(velocity).Mul(rate * dt)
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
