package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrNotStarted is returned when the world is used before PreStart ran.
var ErrNotStarted = errors.New("world not started")

// WorldActor owns the authoritative flock and advances it on every tick message.
//
// Messages:
//   - *durationpb.Duration: advance the flock by the elapsed time and publish a Snapshot
//   - *wrapperspb.BoolValue: enable or disable the velocity matching rule
//   - *emptypb.Empty: reply with the number of ticks applied as *wrapperspb.UInt64Value
type WorldActor struct {
	runID    string
	cfg      *Config
	agents   []Agent
	halfSize mgl32.Vec3
	sim      *Simulator
	// Communication with the renderer
	snapshotCh chan<- *Snapshot
	// --- Benchmark Stats ---
	tickCount    int
	droppedCount int
	lastLogTime  time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit. When agents is nil the flock is spawned
// from cfg.Seed on start and the cube is sized for cfg.NumBoids; otherwise the world
// takes ownership of the slice and the cube is sized for len(agents).
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config, agents []Agent) (*WorldActor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	halfSize := cfg.WorldHalfSize()
	if agents != nil {
		halfSize = WorldHalfSize(uint32(len(agents)), cfg.BoidDensity, uint32(cfg.RoundWorldSizeTo))
	}
	return &WorldActor{
		runID:      uuid.NewString(),
		cfg:        cfg,
		agents:     agents,
		halfSize:   halfSize,
		snapshotCh: snapshotCh,
	}, nil
}

// HalfSize is the half extent of the world cube.
func (w *WorldActor) HalfSize() mgl32.Vec3 {
	return w.halfSize
}

// RunID identifies this world in logs and snapshots.
func (w *WorldActor) RunID() string {
	return w.runID
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	sim, err := NewSimulator(w.cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}
	w.sim = sim

	if w.agents == nil {
		logger.Infof("World %s is spawning %d boids...", w.runID, w.cfg.NumBoids)
		w.agents = NewSpawner(w.cfg.Seed).Spawn(w.cfg.NumBoids)
	}
	w.lastLogTime = time.Now()
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Infof("World %s started: %d boids, half size %s",
			w.runID, len(w.agents), geometry.FormatVec3(w.halfSize))

	// The main simulation step, driven by the host clock
	case *durationpb.Duration:
		if err := w.step(msg.AsDuration()); err != nil {
			ctx.Logger().Errorf("World %s rejected tick: %v", w.runID, err)
			return
		}
		w.logBenchmarks(ctx)
		w.pushSnapshot(msg.AsDuration())

	// Alignment toggle from the host UI
	case *wrapperspb.BoolValue:
		w.sim.SetAlignment(msg.GetValue())
		ctx.Logger().Infof("World %s alignment enabled: %t", w.runID, msg.GetValue())

	case *emptypb.Empty:
		ctx.Response(wrapperspb.UInt64(w.Ticks()))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World %s is shutdown after %d ticks", w.runID, w.Ticks())
	return nil
}

// Ticks returns how many ticks the world applied.
func (w *WorldActor) Ticks() uint64 {
	if w.sim == nil {
		return 0
	}
	return w.sim.Ticks()
}

func (w *WorldActor) step(elapsed time.Duration) error {
	if w.sim == nil {
		return ErrNotStarted
	}
	if err := w.sim.Tick(w.agents, float32(elapsed.Seconds()), w.halfSize); err != nil {
		return err
	}
	w.tickCount++
	return nil
}

func (w *WorldActor) pushSnapshot(elapsed time.Duration) {
	if w.snapshotCh == nil {
		return
	}
	snap := NewSnapshot(w.runID, w.Ticks(), w.halfSize, w.agents)
	snap.ElapsedMs = float64(elapsed) / float64(time.Millisecond)
	select {
	case w.snapshotCh <- snap:
	default:
		// Renderer busy, skip frame
		w.droppedCount++
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %d/sec (dropped snapshots: %d) | Boids: %d",
			w.tickCount, w.droppedCount, len(w.agents))
		w.tickCount = 0
		w.droppedCount = 0
		w.lastLogTime = time.Now()
	}
}
