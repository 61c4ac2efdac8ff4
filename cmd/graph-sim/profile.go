package main

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/rob-hayward/zer0-graph-engine/engine"
)

// profile is the TOML tuning file. Only values present in the file override
// the environment configuration; everything else keeps its default.
type profile struct {
	Scheduler  schedulerProfile  `toml:"scheduler"`
	Reveal     revealProfile     `toml:"reveal"`
	Simulation simulationProfile `toml:"simulation"`
	Spiral     spiralProfile     `toml:"spiral"`
}

type schedulerProfile struct {
	Policy           string   `toml:"policy"`
	NodeRenderDelay  duration `toml:"node_render_delay"`
	MaxSingleNodes   int      `toml:"max_single_nodes"`
	NodesPerBatch    int      `toml:"nodes_per_batch"`
	BatchRenderDelay duration `toml:"batch_render_delay"`
	MaxBatches       int      `toml:"max_batches"`
}

type revealProfile struct {
	NodeStagger      duration `toml:"node_stagger"`
	NodeFadeDuration duration `toml:"node_fade_duration"`
	LinkRevealDelay  duration `toml:"link_reveal_delay"`
	LinkRevealWindow duration `toml:"link_reveal_window"`
	LinkFadeDuration duration `toml:"link_fade_duration"`
	Pattern          string   `toml:"pattern"`
}

type simulationProfile struct {
	DropDuration      duration `toml:"drop_duration"`
	MaxDropDuration   duration `toml:"max_drop_duration"`
	MaxSettleDuration duration `toml:"max_settle_duration"`
	AlphaDecay        float64  `toml:"alpha_decay"`
	MinMovement       float64  `toml:"min_movement"`
}

type spiralProfile struct {
	BaseDistance      float64 `toml:"base_distance"`
	DistanceIncrement float64 `toml:"distance_increment"`
}

// duration parses TOML strings like "250ms" or "3s".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// loadProfile overlays the TOML file at path onto base.
func loadProfile(path string, base engine.Config) (engine.Config, error) {
	p := profile{}
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return base, errors.Wrapf(err, "failed to load profile '%s'", path)
	}
	conf := base
	if p.Scheduler.Policy != "" {
		conf.Scheduler.Policy = engine.SchedulerPolicy(p.Scheduler.Policy)
	}
	if p.Scheduler.NodeRenderDelay != 0 {
		conf.Scheduler.NodeRenderDelay = time.Duration(p.Scheduler.NodeRenderDelay)
	}
	if p.Scheduler.MaxSingleNodes != 0 {
		conf.Scheduler.MaxSingleNodes = p.Scheduler.MaxSingleNodes
	}
	if p.Scheduler.NodesPerBatch != 0 {
		conf.Scheduler.NodesPerBatch = p.Scheduler.NodesPerBatch
	}
	if p.Scheduler.BatchRenderDelay != 0 {
		conf.Scheduler.BatchRenderDelay = time.Duration(p.Scheduler.BatchRenderDelay)
	}
	if p.Scheduler.MaxBatches != 0 {
		conf.Scheduler.MaxBatches = p.Scheduler.MaxBatches
	}
	if p.Reveal.NodeStagger != 0 {
		conf.Reveal.NodeStagger = time.Duration(p.Reveal.NodeStagger)
	}
	if p.Reveal.NodeFadeDuration != 0 {
		conf.Reveal.NodeFadeDuration = time.Duration(p.Reveal.NodeFadeDuration)
	}
	if p.Reveal.LinkRevealDelay != 0 {
		conf.Reveal.LinkRevealDelay = time.Duration(p.Reveal.LinkRevealDelay)
	}
	if p.Reveal.LinkRevealWindow != 0 {
		conf.Reveal.LinkRevealWindow = time.Duration(p.Reveal.LinkRevealWindow)
	}
	if p.Reveal.LinkFadeDuration != 0 {
		conf.Reveal.LinkFadeDuration = time.Duration(p.Reveal.LinkFadeDuration)
	}
	if p.Reveal.Pattern != "" {
		conf.Reveal.PatternName = p.Reveal.Pattern
	}
	if p.Simulation.DropDuration != 0 {
		conf.Simulation.DropDuration = time.Duration(p.Simulation.DropDuration)
	}
	if p.Simulation.MaxDropDuration != 0 {
		conf.Simulation.MaxDropDuration = time.Duration(p.Simulation.MaxDropDuration)
	}
	if p.Simulation.MaxSettleDuration != 0 {
		conf.Simulation.MaxSettleDuration = time.Duration(p.Simulation.MaxSettleDuration)
	}
	if p.Simulation.AlphaDecay != 0 {
		conf.Simulation.AlphaDecay = p.Simulation.AlphaDecay
	}
	if p.Simulation.MinMovement != 0 {
		conf.Simulation.MinMovement = p.Simulation.MinMovement
	}
	if p.Spiral.BaseDistance != 0 {
		conf.Spiral.BaseDistance = p.Spiral.BaseDistance
	}
	if p.Spiral.DistanceIncrement != 0 {
		conf.Spiral.DistanceIncrement = p.Spiral.DistanceIncrement
	}
	return conf, nil
}
