package simulation

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// Agent is one boid of the flock.
// Acceleration and Drag are fixed at spawn time; Velocity is only written by the
// steering pass and Position/Orientation only by the integration pass.
type Agent struct {
	ID           string
	Position     mgl32.Vec3
	Orientation  mgl32.Quat
	Velocity     mgl32.Vec3
	Acceleration float32
	Drag         float32
}

// NewAgent creates an agent facing +Z.
func NewAgent(id string, pos, vel mgl32.Vec3, acceleration, drag float32) Agent {
	return Agent{
		ID:           id,
		Position:     pos,
		Orientation:  mgl32.QuatIdent(),
		Velocity:     vel,
		Acceleration: acceleration,
		Drag:         drag,
	}
}

// Heading is the direction the agent is currently facing.
func (a *Agent) Heading() mgl32.Vec3 {
	return geometry.Forward(a.Orientation)
}

// AgentState is the read-only view of one agent handed to the renderer.
type AgentState struct {
	ID          string
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Velocity    mgl32.Vec3
}

// ToState copies the renderable part of the agent.
func (a *Agent) ToState() AgentState {
	return AgentState{
		ID:          a.ID,
		Position:    a.Position,
		Orientation: a.Orientation,
		Velocity:    a.Velocity,
	}
}

// Snapshot is an immutable copy of the flock after a tick.
type Snapshot struct {
	RunID     string
	Tick      uint64
	HalfSize  mgl32.Vec3
	Agents    []AgentState
	ElapsedMs float64 // simulated time advanced by this tick
}

// NewSnapshot copies agents into a Snapshot. The result shares no memory with agents.
func NewSnapshot(runID string, tick uint64, halfSize mgl32.Vec3, agents []Agent) *Snapshot {
	s := &Snapshot{
		RunID:    runID,
		Tick:     tick,
		HalfSize: halfSize,
		Agents:   make([]AgentState, 0, len(agents)),
	}
	for i := range agents {
		s.Agents = append(s.Agents, agents[i].ToState())
	}
	return s
}

// Centroid returns the mean position of the flock, or the origin when empty.
func (s *Snapshot) Centroid() mgl32.Vec3 {
	if len(s.Agents) == 0 {
		return mgl32.Vec3{}
	}
	var c mgl32.Vec3
	for _, a := range s.Agents {
		c = c.Add(a.Position)
	}
	return c.Mul(1 / float32(len(s.Agents)))
}

// Radius returns the largest distance between an agent and the centroid.
func (s *Snapshot) Radius() float32 {
	c := s.Centroid()
	var r float32
	for _, a := range s.Agents {
		if d := a.Position.Sub(c).Len(); d > r {
			r = d
		}
	}
	return r
}

// OutOfBounds counts agents outside the world cube.
func (s *Snapshot) OutOfBounds() int {
	n := 0
	for _, a := range s.Agents {
		p := a.Position
		if abs32(p[0]) > s.HalfSize[0] || abs32(p[1]) > s.HalfSize[1] || abs32(p[2]) > s.HalfSize[2] {
			n++
		}
	}
	return n
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
