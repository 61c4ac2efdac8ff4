package engine

import (
	"math"
	"sort"
	"time"
)

// RevealNode is the minimal view of a settled node the reveal patterns
// order by.
type RevealNode struct {
	ID       string
	Distance float64
	Angle    float64
	Votes    int
}

// RevealPattern decides the order in which settled nodes fade in. Patterns
// are pluggable without touching the controller's contract.
type RevealPattern interface {
	Name() string
	Order(nodes []RevealNode) []string
}

// StaggeredPattern reveals center-outward: the default choreography.
type StaggeredPattern struct{}

func (StaggeredPattern) Name() string { return "staggered" }

func (StaggeredPattern) Order(nodes []RevealNode) []string {
	sorted := append([]RevealNode{}, nodes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })
	return revealIDs(sorted)
}

// WavePattern sweeps around the origin like a radar, ties broken by
// distance.
type WavePattern struct{}

func (WavePattern) Name() string { return "wave" }

func (WavePattern) Order(nodes []RevealNode) []string {
	sorted := append([]RevealNode{}, nodes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai := math.Mod(sorted[i].Angle+2*math.Pi, 2*math.Pi)
		aj := math.Mod(sorted[j].Angle+2*math.Pi, 2*math.Pi)
		if ai != aj {
			return ai < aj
		}
		return sorted[i].Distance < sorted[j].Distance
	})
	return revealIDs(sorted)
}

// VoteOrderedPattern reveals strongest consensus first regardless of where
// it settled.
type VoteOrderedPattern struct{}

func (VoteOrderedPattern) Name() string { return "votes" }

func (VoteOrderedPattern) Order(nodes []RevealNode) []string {
	sorted := append([]RevealNode{}, nodes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Votes > sorted[j].Votes })
	return revealIDs(sorted)
}

func revealIDs(nodes []RevealNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// PatternByName resolves a configured pattern name, falling back to the
// staggered default.
func PatternByName(name string) RevealPattern {
	switch name {
	case "wave":
		return WavePattern{}
	case "votes":
		return VoteOrderedPattern{}
	default:
		return StaggeredPattern{}
	}
}

type revealState int

const (
	// revealHidden enforces the phantom invariant: every content node at
	// opacity 0 and no link rendering, no matter what else is going on.
	revealHidden revealState = iota
	revealRunning
	revealDone
)

// RevealController turns "simulation settled" into a staggered fade-in:
// nodes first, links after the node window, each link's display opacity
// being visual weight x reveal progress.
type RevealController struct {
	conf    RevealConfig
	pattern RevealPattern

	state           revealState
	nodeStart       map[string]time.Time
	linkStart       map[string]time.Time
	nodeWindowEnd   time.Time
	linkWindowStart time.Time
	allRevealedAt   time.Time
	forceAll        bool

	notifiedNodes    map[string]bool
	allRevealedFired bool
	onNodeRevealed   func(id string)
	onAllRevealed    func()
}

func NewRevealController(conf RevealConfig) *RevealController {
	conf.ApplyDefaults()
	return &RevealController{
		conf:          conf,
		pattern:       PatternByName(conf.PatternName),
		nodeStart:     map[string]time.Time{},
		linkStart:     map[string]time.Time{},
		notifiedNodes: map[string]bool{},
	}
}

// SetPattern swaps the reveal ordering. Only effective before BeginReveal.
func (r *RevealController) SetPattern(p RevealPattern) { r.pattern = p }

func (r *RevealController) OnNodeRevealed(fn func(id string)) { r.onNodeRevealed = fn }

func (r *RevealController) OnAllRevealed(fn func()) { r.onAllRevealed = fn }

// Reset returns to the hidden state for a new generation.
func (r *RevealController) Reset() {
	r.state = revealHidden
	r.nodeStart = map[string]time.Time{}
	r.linkStart = map[string]time.Time{}
	r.notifiedNodes = map[string]bool{}
	r.forceAll = false
	r.allRevealedFired = false
}

// BeginReveal schedules the staggered fade-in of the given nodes and links,
// starting now. Called by the manager from the simulation's settled
// callback.
func (r *RevealController) BeginReveal(nodes []RevealNode, linkIDs []string, now time.Time) {
	if r.state != revealHidden {
		return
	}
	order := r.pattern.Order(nodes)
	if len(order) == 0 && len(linkIDs) == 0 {
		// nothing to animate
		r.nodeWindowEnd = now
		r.linkWindowStart = now
		r.allRevealedAt = now
		r.state = revealRunning
		return
	}
	for i, id := range order {
		r.nodeStart[id] = now.Add(time.Duration(i) * r.conf.NodeStagger)
	}
	r.nodeWindowEnd = now.Add(r.conf.NodeFadeDuration)
	if len(order) > 0 {
		r.nodeWindowEnd = r.nodeStart[order[len(order)-1]].Add(r.conf.NodeFadeDuration)
	}
	r.linkWindowStart = r.nodeWindowEnd.Add(r.conf.LinkRevealDelay)
	r.allRevealedAt = r.linkWindowStart
	if len(linkIDs) > 0 {
		step := r.conf.LinkRevealWindow / time.Duration(len(linkIDs))
		for i, id := range linkIDs {
			r.linkStart[id] = r.linkWindowStart.Add(time.Duration(i) * step)
		}
		r.allRevealedAt = r.linkStart[linkIDs[len(linkIDs)-1]].Add(r.conf.LinkFadeDuration)
	}
	r.state = revealRunning
}

// ForceRevealAll snaps every node and link to fully revealed, bypassing the
// animation. Idempotent; used by tests and as a stall escape hatch.
func (r *RevealController) ForceRevealAll() {
	r.forceAll = true
	r.state = revealDone
}

// Step fires node/completion callbacks whose time has come. Called once per
// frame.
func (r *RevealController) Step(now time.Time) {
	if r.state != revealRunning {
		return
	}
	for id, start := range r.nodeStart {
		if r.notifiedNodes[id] {
			continue
		}
		if !now.Before(start.Add(r.conf.NodeFadeDuration)) {
			r.notifiedNodes[id] = true
			if r.onNodeRevealed != nil {
				r.onNodeRevealed(id)
			}
		}
	}
	if !r.allRevealedFired && !now.Before(r.allRevealedAt) {
		r.allRevealedFired = true
		r.state = revealDone
		if r.onAllRevealed != nil {
			r.onAllRevealed()
		}
	}
}

// NodeOpacity is 0 for every node until its scheduled reveal begins, then
// ramps to 1 over NodeFadeDuration.
func (r *RevealController) NodeOpacity(id string, now time.Time) float64 {
	if r.forceAll {
		return 1
	}
	if r.state == revealHidden {
		return 0
	}
	start, ok := r.nodeStart[id]
	if !ok {
		// introduced after the reveal began (gentle sync): show immediately
		return 1
	}
	return easeOutCubic(progress(start, r.conf.NodeFadeDuration, now))
}

// ShouldRenderLinks is false throughout drop, settlement and the node
// reveal window.
func (r *RevealController) ShouldRenderLinks(now time.Time) bool {
	if r.forceAll {
		return true
	}
	return r.state != revealHidden && !now.Before(r.linkWindowStart)
}

// LinkProgress is the reveal progress of one link in [0,1]. The caller
// multiplies it with the link's visual weight; the two stay separable so a
// heavy link mid-reveal can still out-draw a faint fully-revealed one.
func (r *RevealController) LinkProgress(id string, now time.Time) float64 {
	if r.forceAll {
		return 1
	}
	if r.state == revealHidden {
		return 0
	}
	start, ok := r.linkStart[id]
	if !ok {
		return 0
	}
	return easeOutCubic(progress(start, r.conf.LinkFadeDuration, now))
}

// Done reports whether the full choreography has finished (or was forced).
func (r *RevealController) Done() bool { return r.state == revealDone }

func progress(start time.Time, dur time.Duration, now time.Time) float64 {
	if now.Before(start) {
		return 0
	}
	if dur <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(dur)
	if p > 1 {
		return 1
	}
	return p
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}
