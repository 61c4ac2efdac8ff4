package layout

import (
	"math"
	"sort"

	"github.com/quartercastle/vector"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

// GoldenAngle is (3 - sqrt(5)) * pi, the irrational angle increment that
// produces a self-avoiding phyllotaxis spiral: no node ever lies on a ray
// through an earlier node.
var GoldenAngle = math.Pi * (3.0 - math.Sqrt(5.0))

// SpiralConfig controls the initial placement of content nodes. BaseDistance
// must exceed the navigation ring's outer radius plus SafetyMargin so content
// never starts inside the system ring; ApplyDefaults enforces this.
type SpiralConfig struct {
	BaseDistance      float64
	DistanceIncrement float64
	// SqrtScaling switches from linear rank spacing to sqrt(rank) spacing,
	// keeping outer rings from growing too fast on large graphs.
	SqrtScaling  bool
	SafetyMargin float64
}

var DefaultSpiralConfig = SpiralConfig{
	BaseDistance:      560,
	DistanceIncrement: 60,
	SqrtScaling:       true,
	SafetyMargin:      30,
}

func (c *SpiralConfig) ApplyDefaults(ringOuterRadius float64) {
	if c.BaseDistance == 0 {
		c.BaseDistance = DefaultSpiralConfig.BaseDistance
	}
	if c.DistanceIncrement == 0 {
		c.DistanceIncrement = DefaultSpiralConfig.DistanceIncrement
	}
	if c.SafetyMargin == 0 {
		c.SafetyMargin = DefaultSpiralConfig.SafetyMargin
	}
	if min := ringOuterRadius + c.SafetyMargin; c.BaseDistance < min {
		c.BaseDistance = min
	}
}

// Target is the pre-simulation anchor of a content node: polar coordinates
// around the origin.
type Target struct {
	Angle    float64
	Distance float64
}

func (t Target) Position() vector.Vector {
	return vector.Vector{
		t.Distance * math.Cos(t.Angle),
		t.Distance * math.Sin(t.Angle),
	}
}

// RankByVotes stable-sorts content nodes by inclusion net-votes descending,
// ties broken by content net-votes, then by original order. The input slice
// is not modified.
func RankByVotes(nodes []*model.ContentNode) []*model.ContentNode {
	ranked := make([]*model.ContentNode, len(nodes))
	copy(ranked, nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].InclusionNetVotes != ranked[j].InclusionNetVotes {
			return ranked[i].InclusionNetVotes > ranked[j].InclusionNetVotes
		}
		return ranked[i].ContentNetVotes > ranked[j].ContentNetVotes
	})
	return ranked
}

// SpiralTargets assigns each ranked node a golden-angle spiral target.
// Rank 0 sits at angle 0 and BaseDistance; distance grows monotonically
// with rank so higher-consensus content starts closer to the center.
func SpiralTargets(n int, conf SpiralConfig) []Target {
	targets := make([]Target, n)
	for i := 0; i < n; i++ {
		step := float64(i)
		if conf.SqrtScaling {
			step = math.Sqrt(float64(i))
		}
		targets[i] = Target{
			Angle:    float64(i) * GoldenAngle,
			Distance: conf.BaseDistance + step*conf.DistanceIncrement,
		}
	}
	return targets
}

// RingConfig describes the hub/navigation-ring geometry for both hub modes.
type RingConfig struct {
	HubRadiusPreview float64
	HubRadiusDetail  float64
	GapPreview       float64
	GapDetail        float64
	NavNodeRadius    float64
}

var DefaultRingConfig = RingConfig{
	HubRadiusPreview: 90,
	HubRadiusDetail:  270,
	GapPreview:       40,
	GapDetail:        90,
	NavNodeRadius:    40,
}

func (c *RingConfig) ApplyDefaults() {
	if c.HubRadiusPreview == 0 {
		c.HubRadiusPreview = DefaultRingConfig.HubRadiusPreview
	}
	if c.HubRadiusDetail == 0 {
		c.HubRadiusDetail = DefaultRingConfig.HubRadiusDetail
	}
	if c.GapPreview == 0 {
		c.GapPreview = DefaultRingConfig.GapPreview
	}
	if c.GapDetail == 0 {
		c.GapDetail = DefaultRingConfig.GapDetail
	}
	if c.NavNodeRadius == 0 {
		c.NavNodeRadius = DefaultRingConfig.NavNodeRadius
	}
}

func (c RingConfig) hubRadius(mode model.NodeMode) float64 {
	if mode == model.NodeModeDetail {
		return c.HubRadiusDetail
	}
	return c.HubRadiusPreview
}

func (c RingConfig) gap(mode model.NodeMode) float64 {
	if mode == model.NodeModeDetail {
		return c.GapDetail
	}
	return c.GapPreview
}

// RingRadius is the distance from origin to each navigation node's center
// for the given hub mode.
func (c RingConfig) RingRadius(mode model.NodeMode) float64 {
	return c.hubRadius(mode) + c.gap(mode) + c.NavNodeRadius
}

// RingOuterRadius is the outermost extent of the navigation ring, used to
// keep the content spiral clear of the system nodes.
func (c RingConfig) RingOuterRadius(mode model.NodeMode) float64 {
	return c.RingRadius(mode) + c.NavNodeRadius
}

// RingTargets places navCount navigation nodes evenly around the origin,
// starting at the top and proceeding clockwise.
func RingTargets(navCount int, hubMode model.NodeMode, conf RingConfig) []vector.Vector {
	targets := make([]vector.Vector, navCount)
	if navCount == 0 {
		return targets
	}
	radius := conf.RingRadius(hubMode)
	for k := 0; k < navCount; k++ {
		angle := -math.Pi/2 + float64(k)*2*math.Pi/float64(navCount)
		targets[k] = vector.Vector{
			radius * math.Cos(angle),
			radius * math.Sin(angle),
		}
	}
	return targets
}
