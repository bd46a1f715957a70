package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	goaktlog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	reportEvery = time.Second
	askTimeout  = 2 * time.Second
)

func main() {
	configFile := flag.String("config", "", "JSON config file (defaults when empty)")
	schemaFile := flag.String("schema", "", "JSON schema for the config (embedded schema when empty)")
	maxTicks := flag.Int("ticks", 600, "number of ticks to run, 0 runs until interrupted")
	alignment := flag.Bool("alignment", false, "enable the velocity matching rule")
	debug := flag.Bool("debug", false, "log every tick")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = simulation.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	level := goaktlog.InfoLevel
	if *debug {
		level = goaktlog.DebugLevel
	}
	logger := goaktlog.New(level, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system, err := actor.NewActorSystem("BoidsSystem", actor.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("Failed to start actor system: %v", err)
	}
	defer func() {
		_ = system.Stop(context.Background())
	}()

	snapshotCh := make(chan *simulation.Snapshot, 10) // Buffer to avoid blocking
	world, err := simulation.NewWorldActor(snapshotCh, cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create world: %v", err)
	}
	worldPID, err := system.Spawn(ctx, "world", world)
	if err != nil {
		log.Fatalf("Failed to spawn world: %v", err)
	}
	if *alignment {
		_ = actor.Tell(ctx, worldPID, wrapperspb.Bool(true))
	}

	run(ctx, logger, worldPID, snapshotCh, cfg.TicksPerSecond, *maxTicks)

	reply, err := actor.Ask(context.Background(), worldPID, &emptypb.Empty{}, askTimeout)
	if err != nil {
		logger.Errorf("Failed to query world: %v", err)
		return
	}
	if ticks, ok := reply.(*wrapperspb.UInt64Value); ok {
		logger.Infof("Simulation %s done: %d ticks applied", world.RunID(), ticks.GetValue())
	}
}

// run drives the world with the wall clock until ctx is done or maxTicks ticks were sent.
func run(ctx context.Context, logger goaktlog.Logger, worldPID *actor.PID, snapshotCh <-chan *simulation.Snapshot, ticksPerSecond, maxTicks int) {
	ticker := time.NewTicker(time.Second / time.Duration(ticksPerSecond))
	defer ticker.Stop()

	last := time.Now()
	lastReport := last
	sent := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("Interrupted, stopping simulation")
			return

		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if err := actor.Tell(ctx, worldPID, durationpb.New(elapsed)); err != nil {
				logger.Errorf("Failed to send tick: %v", err)
				return
			}
			sent++
			if maxTicks > 0 && sent >= maxTicks {
				return
			}

		case snap := <-snapshotCh:
			if time.Since(lastReport) < reportEvery {
				continue
			}
			lastReport = time.Now()
			logger.Infof("tick %d (dt %.1fms) | centroid %s | radius %.2f | outside cube %d/%d",
				snap.Tick, snap.ElapsedMs, geometry.FormatVec3(snap.Centroid()), snap.Radius(), snap.OutOfBounds(), len(snap.Agents))
		}
	}
}
