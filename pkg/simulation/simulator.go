package simulation

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidTimeStep is returned when a tick is requested with a negative or
// non-finite dt, or with a non-finite world size.
var ErrInvalidTimeStep = errors.New("invalid time step")

// minAgentsPerWorker avoids spawning goroutines for flocks too small to benefit.
const minAgentsPerWorker = 32

// Simulator advances a flock tick by tick.
//
// A Simulator reuses its snapshot buffers between ticks and must not be shared by
// goroutines ticking concurrently.
type Simulator struct {
	rules   Rules
	index   NeighborIndex
	workers int
	logger  log.Logger

	perception Perception
	grid       *spatialGrid
	ticks      uint64
}

// NewSimulator builds a Simulator from a validated configuration.
// A nil logger discards everything.
func NewSimulator(cfg *Config, logger log.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.DiscardLogger
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := &Simulator{
		rules:   cfg.Rules(),
		index:   cfg.NeighborIndex,
		workers: workers,
		logger:  logger,
	}
	return s, nil
}

// Tick advances agents by one step of dt seconds inside the cube of half size halfSize.
//
// The steering pass computes every new velocity from a snapshot taken before any
// agent is modified; the integration pass only starts once every velocity is
// written. Invalid input is rejected before anything is touched.
func (s *Simulator) Tick(agents []Agent, dt float32, halfSize mgl32.Vec3) error {
	if err := validateStep(dt, halfSize); err != nil {
		return err
	}

	// 1. Snapshot
	s.perception.capture(agents)
	s.perception.grid = nil
	if s.index == IndexGrid && s.rules.EnableSeparation {
		reach := SeparationReach(s.rules.AvoidanceRange, s.rules.SeparationMetric)
		if s.grid == nil {
			s.grid = newSpatialGrid(reach)
		}
		s.grid.rebuild(s.perception.Positions)
		s.perception.grid = s.grid
	}

	// 2. Steering
	rules := s.rules
	s.parallelFor(len(agents), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			agents[i].Velocity = ComputeBoidUpdate(i, &s.perception, halfSize, dt, &rules)
		}
	})

	// 3. Integration
	s.parallelFor(len(agents), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			Integrate(&agents[i], dt, rules.DragMultiplier)
		}
	})

	s.ticks++
	s.logger.Debugf("tick %d: %d boids, dt=%.4fs", s.ticks, len(agents), dt)
	return nil
}

// Ticks returns how many ticks were applied successfully.
func (s *Simulator) Ticks() uint64 {
	return s.ticks
}

// Rules returns a copy of the rules in use.
func (s *Simulator) Rules() Rules {
	return s.rules
}

// SetAlignment switches the velocity matching rule on or off for the next ticks.
func (s *Simulator) SetAlignment(enabled bool) {
	s.rules.EnableAlignment = enabled
}

// parallelFor splits [0, n) in contiguous chunks, runs body on each and returns
// once every chunk is done.
func (s *Simulator) parallelFor(n int, body func(lo, hi int)) {
	workers := min(s.workers, n/minAgentsPerWorker)
	if workers <= 1 {
		body(0, n)
		return
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			body(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

func validateStep(dt float32, halfSize mgl32.Vec3) error {
	if !geometry.IsFiniteScalar(dt) || dt < 0 {
		return fmt.Errorf("%w: dt=%v", ErrInvalidTimeStep, dt)
	}
	if !geometry.IsFinite(halfSize) {
		return fmt.Errorf("%w: half size %v is not finite", ErrInvalidTimeStep, halfSize)
	}
	return nil
}

// Tick advances agents by one step with the default configuration.
// It allocates a fresh Simulator on every call; long running hosts should keep one.
func Tick(agents []Agent, dt float32, halfSize mgl32.Vec3) error {
	s, err := NewSimulator(DefaultConfig(), nil)
	if err != nil {
		return err
	}
	return s.Tick(agents, dt, halfSize)
}
