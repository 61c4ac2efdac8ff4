package engine

import (
	"time"

	"github.com/caarlos0/env/v6"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
	"github.com/rob-hayward/zer0-graph-engine/layout"
)

// SchedulerPolicy selects how content nodes are fed into the simulation.
type SchedulerPolicy string

const (
	// PolicySingleNode introduces one node every NodeRenderDelay.
	PolicySingleNode SchedulerPolicy = "single"
	// PolicyBatch introduces NodesPerBatch nodes every BatchRenderDelay.
	PolicyBatch SchedulerPolicy = "batch"
)

// SchedulerConfig bounds how many nodes go live in the simulation and at
// what pace. Nodes beyond the cap stay addressable in the data model but are
// never simulated; the drop count shows up in the performance metrics.
type SchedulerConfig struct {
	Policy           SchedulerPolicy `env:"SCHEDULER_POLICY" envDefault:"batch"`
	NodeRenderDelay  time.Duration   `env:"NODE_RENDER_DELAY" envDefault:"50ms"`
	MaxSingleNodes   int             `env:"MAX_SINGLE_NODES" envDefault:"40"`
	NodesPerBatch    int             `env:"NODES_PER_BATCH" envDefault:"10"`
	BatchRenderDelay time.Duration   `env:"BATCH_RENDER_DELAY" envDefault:"500ms"`
	MaxBatches       int             `env:"MAX_BATCHES" envDefault:"20"`
}

func (c *SchedulerConfig) ApplyDefaults() {
	def := DefaultConfig().Scheduler
	if c.Policy == "" {
		c.Policy = def.Policy
	}
	if c.NodeRenderDelay == 0 {
		c.NodeRenderDelay = def.NodeRenderDelay
	}
	if c.MaxSingleNodes == 0 {
		c.MaxSingleNodes = def.MaxSingleNodes
	}
	if c.NodesPerBatch == 0 {
		c.NodesPerBatch = def.NodesPerBatch
	}
	if c.BatchRenderDelay == 0 {
		c.BatchRenderDelay = def.BatchRenderDelay
	}
	if c.MaxBatches == 0 {
		c.MaxBatches = def.MaxBatches
	}
}

// Cap is the maximum number of nodes the policy will ever introduce.
func (c SchedulerConfig) Cap() int {
	if c.Policy == PolicySingleNode {
		return c.MaxSingleNodes
	}
	return c.MaxBatches * c.NodesPerBatch
}

// RevealConfig drives the staggered fade-in after settlement.
type RevealConfig struct {
	// per-node delay between consecutive reveal starts
	NodeStagger time.Duration `env:"REVEAL_NODE_STAGGER" envDefault:"50ms"`
	// duration of one node's 0 -> 1 opacity ramp
	NodeFadeDuration time.Duration `env:"REVEAL_NODE_FADE" envDefault:"1500ms"`
	// pause between the end of the node window and the first link
	LinkRevealDelay time.Duration `env:"REVEAL_LINK_DELAY" envDefault:"500ms"`
	// window across which link reveal starts are spread
	LinkRevealWindow time.Duration `env:"REVEAL_LINK_WINDOW" envDefault:"4s"`
	// duration of one link's 0 -> 1 progress ramp
	LinkFadeDuration time.Duration `env:"REVEAL_LINK_FADE" envDefault:"1s"`
	PatternName      string        `env:"REVEAL_PATTERN" envDefault:"staggered"`
}

func (c *RevealConfig) ApplyDefaults() {
	def := DefaultConfig().Reveal
	if c.NodeStagger == 0 {
		c.NodeStagger = def.NodeStagger
	}
	if c.NodeFadeDuration == 0 {
		c.NodeFadeDuration = def.NodeFadeDuration
	}
	if c.LinkRevealDelay == 0 {
		c.LinkRevealDelay = def.LinkRevealDelay
	}
	if c.LinkRevealWindow == 0 {
		c.LinkRevealWindow = def.LinkRevealWindow
	}
	if c.LinkFadeDuration == 0 {
		c.LinkFadeDuration = def.LinkFadeDuration
	}
	if c.PatternName == "" {
		c.PatternName = def.PatternName
	}
}

// Config aggregates every engine tunable. All zero fields fall back to
// defaults, so callers only set what they want to change.
type Config struct {
	Scheduler  SchedulerConfig
	Reveal     RevealConfig
	Simulation layout.ForceSimulationConfig
	Spiral     layout.SpiralConfig
	Ring       layout.RingConfig
	// number of navigation-ring nodes around the hub
	NavCount int `env:"NAV_COUNT" envDefault:"6"`
	// wall-clock interval between frames when driven by Run
	FrameInterval time.Duration `env:"FRAME_INTERVAL" envDefault:"16ms"`
	// wake intensity used for mode changes and gentle re-syncs
	NudgeAlpha float64 `env:"NUDGE_ALPHA" envDefault:"0.15"`
}

func DefaultConfig() Config {
	return Config{
		Scheduler: SchedulerConfig{
			Policy:           PolicyBatch,
			NodeRenderDelay:  50 * time.Millisecond,
			MaxSingleNodes:   40,
			NodesPerBatch:    10,
			BatchRenderDelay: 500 * time.Millisecond,
			MaxBatches:       20,
		},
		Reveal: RevealConfig{
			NodeStagger:      50 * time.Millisecond,
			NodeFadeDuration: 1500 * time.Millisecond,
			LinkRevealDelay:  500 * time.Millisecond,
			LinkRevealWindow: 4 * time.Second,
			LinkFadeDuration: time.Second,
			PatternName:      "staggered",
		},
		Simulation:    layout.DefaultForceSimulationConfig,
		Spiral:        layout.DefaultSpiralConfig,
		Ring:          layout.DefaultRingConfig,
		NavCount:      6,
		FrameInterval: 16 * time.Millisecond,
		NudgeAlpha:    0.15,
	}
}

func (c *Config) ApplyDefaults() {
	c.Scheduler.ApplyDefaults()
	c.Reveal.ApplyDefaults()
	c.Ring.ApplyDefaults()
	// clearance is computed against the detail hub mode, the larger ring
	c.Spiral.ApplyDefaults(c.Ring.RingOuterRadius(model.NodeModeDetail))
	if c.NavCount == 0 {
		c.NavCount = DefaultConfig().NavCount
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = DefaultConfig().FrameInterval
	}
	if c.NudgeAlpha == 0 {
		c.NudgeAlpha = DefaultConfig().NudgeAlpha
	}
}

// GetEnvConfig reads the tunables from the environment, leaving defaults in
// place for anything unset.
func GetEnvConfig() Config {
	conf := DefaultConfig()
	env.Parse(&conf.Scheduler)
	env.Parse(&conf.Reveal)
	env.Parse(&conf)
	return conf
}
