package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/rob-hayward/zer0-graph-engine/db"
	"github.com/rob-hayward/zer0-graph-engine/engine"
	"github.com/rob-hayward/zer0-graph-engine/layout"
)

type runOptions struct {
	SnapshotPath string
	PNGPath      string
	InvertColor  bool
	MaxFrames    int
}

// run drives the engine on a synthetic clock until the reveal choreography
// finishes (or MaxFrames elapse, whichever comes first) and writes the
// resulting snapshot.
func run(ctx context.Context, source db.DataSource, conf engine.Config, opts runOptions) error {
	nodes, links, err := source.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load graph")
	}
	log.Info().Int("nodes", len(nodes)).Int("rawLinks", len(links)).Msg("graph loaded")

	clock := engine.NewManualClock(time.Now())
	m := engine.NewManager(conf, clock)
	defer m.Close()
	done := false
	m.OnAllRevealed(func() { done = true })
	m.SetData(nodes, links)

	frameInterval := conf.FrameInterval
	if frameInterval == 0 {
		frameInterval = engine.DefaultConfig().FrameInterval
	}
	frames := 0
	for ; frames < opts.MaxFrames && !done; frames++ {
		clock.Advance(frameInterval)
		m.Step()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	metrics := m.GetPerformanceMetrics()
	log.Info().
		Int("frames", frames).
		Int("rendered", metrics.RenderedNodeCount).
		Int("dropped", metrics.DroppedNodeCount).
		Int("malformed", metrics.MalformedNodeCount).
		Float64("consolidation", metrics.ConsolidationRatio).
		Str("phase", metrics.SimulationPhase).
		Int("dropTicks", metrics.Simulation.DropTicks).
		Int("settleTicks", metrics.Simulation.SettleTicks).
		Str("settledBy", metrics.Simulation.SettledBy).
		Bool("revealDone", metrics.RevealDone).
		Msg("simulation finished")
	if !done {
		log.Warn().Msgf("reveal incomplete after %d frames, forcing", frames)
		m.ForceRevealAll()
	}

	snap := m.GetRenderableSnapshot()
	if opts.SnapshotPath != "" {
		f, err := os.Create(opts.SnapshotPath)
		if err != nil {
			return errors.Wrap(err, "failed to create snapshot file")
		}
		defer f.Close()
		if err := json.NewEncoder(f).Encode(&snap); err != nil {
			return errors.Wrap(err, "failed to encode snapshot")
		}
	}
	if opts.PNGPath != "" {
		if err := layout.DrawSnapshot(snap, opts.PNGPath, opts.InvertColor); err != nil {
			return errors.Wrap(err, "failed to render snapshot")
		}
	}
	return nil
}
