package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Spawn ranges. Integer ranges are half open like [min, max).
const (
	spawnMin       = 1
	spawnMax       = 11
	spawnDragMin   = 0.01
	spawnDragRange = 0.03
	spawnDragMax   = spawnDragMin + spawnDragRange
)

// Spawner creates the initial flock.
type Spawner struct {
	rng *rand.Rand
}

// NewSpawner returns a Spawner seeded with seed. A zero seed picks a random one.
func NewSpawner(seed uint64) *Spawner {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Spawner{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Spawn creates n boids named Boid-000, Boid-001, ...
func (s *Spawner) Spawn(n int) []Agent {
	agents := make([]Agent, 0, n)
	for i := 0; i < n; i++ {
		agents = append(agents, s.SpawnRandomBoid(fmt.Sprintf("Boid-%03d", i)))
	}
	return agents
}

// SpawnRandomBoid creates one boid with integer position, velocity and acceleration
// in [1, 11) and a drag in [0.01, 0.04).
func (s *Spawner) SpawnRandomBoid(id string) Agent {
	return NewAgent(
		id,
		s.randomVec3(),
		s.randomVec3(),
		s.rangeInt(),
		s.randomDrag(),
	)
}

// randomDrag draws in [0.01, 0.04). Without the clamp the top Float32 draws round to 0.04.
func (s *Spawner) randomDrag() float32 {
	return dragInRange(s.rng.Float32())
}

func dragInRange(u float32) float32 {
	return min(spawnDragMin+u*spawnDragRange, math.Nextafter32(spawnDragMax, 0))
}

func (s *Spawner) randomVec3() mgl32.Vec3 {
	return mgl32.Vec3{s.rangeInt(), s.rangeInt(), s.rangeInt()}
}

func (s *Spawner) rangeInt() float32 {
	return float32(spawnMin + s.rng.IntN(spawnMax-spawnMin))
}
