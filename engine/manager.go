package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quartercastle/vector"
	"github.com/rs/zerolog/log"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
	"github.com/rob-hayward/zer0-graph-engine/layout"
)

const HubNodeID = "hub"

// Manager is the façade over positioning, scheduling, simulation and
// reveal. It owns the authoritative node table; every other component works
// on read-only views or explicit update calls, never on shared references.
//
// All public methods are safe for concurrent use. One Manager serves one
// graph session; construct a fresh instance per session and Close it when
// done. Callbacks registered via OnSettled, OnNodeRevealed and
// OnAllRevealed run inside Step with the engine lock held and must not call
// back into the Manager.
type Manager struct {
	mu   sync.Mutex
	conf Config

	clock Clock
	// the single type-membership predicate shared by positioning,
	// scheduling, simulation and reveal. Keeping one instance here is what
	// prevents the four components from drifting apart on which kinds count
	// as content.
	contentKinds model.KindSet

	generation uuid.UUID
	nodes      map[string]*model.ContentNode
	userHidden map[string]bool
	targets    map[string]layout.Target
	links      map[string]*model.Link
	linkOrder  []string
	rawLinks   int
	malformed  int
	hubMode    model.NodeMode

	sim    *layout.ForceSimulation
	sched  *Scheduler
	reveal *RevealController

	onSettled      func()
	onNodeRevealed func(id string)
	onAllRevealed  func()

	done      chan struct{}
	closeOnce sync.Once
}

// NewManager builds an engine instance. A nil clock means wall time.
func NewManager(conf Config, clock Clock) *Manager {
	conf.ApplyDefaults()
	if clock == nil {
		clock = WallClock{}
	}
	kinds := model.ContentKinds()
	m := &Manager{
		conf:         conf,
		clock:        clock,
		contentKinds: kinds,
		nodes:        map[string]*model.ContentNode{},
		userHidden:   map[string]bool{},
		targets:      map[string]layout.Target{},
		links:        map[string]*model.Link{},
		hubMode:      model.NodeModePreview,
		sim:          layout.NewForceSimulation(conf.Simulation),
		sched:        NewScheduler(conf.Scheduler, kinds),
		reveal:       NewRevealController(conf.Reveal),
		done:         make(chan struct{}),
	}
	m.sched.OnIntroduce(m.introduce)
	m.sched.OnComplete(func() { m.sim.ScheduleComplete() })
	m.sim.SetSystemNodes(m.buildSystemNodes())
	return m
}

// OnSettled registers a callback fired once per generation when the
// simulation settles.
func (m *Manager) OnSettled(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSettled = fn
}

// OnNodeRevealed fires when a node's fade-in completes.
func (m *Manager) OnNodeRevealed(fn func(id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onNodeRevealed = fn
}

// OnAllRevealed fires once the full reveal choreography has finished.
func (m *Manager) OnAllRevealed(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAllRevealed = fn
}

// SetData performs a full reset with a new dataset: clears the simulation,
// rebuilds spiral targets, resets the reveal and hands the ranked node list
// to the scheduler. Malformed nodes are logged and dropped individually,
// never failing the whole batch.
func (m *Manager) SetData(nodes []model.ContentNode, rawLinks []model.RawLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()

	// a fresh generation invalidates every callback of the previous one
	m.generation = uuid.New()
	gen := m.generation
	m.nodes = map[string]*model.ContentNode{}
	m.userHidden = map[string]bool{}
	m.targets = map[string]layout.Target{}
	m.links = map[string]*model.Link{}
	m.linkOrder = nil
	m.malformed = 0
	m.sim.Reset()
	m.reveal.Reset()
	m.reveal.OnNodeRevealed(func(id string) {
		if m.onNodeRevealed != nil {
			m.onNodeRevealed(id)
		}
	})
	m.reveal.OnAllRevealed(func() {
		if m.onAllRevealed != nil {
			m.onAllRevealed()
		}
	})
	m.sim.OnSettled(func() { m.handleSettled(gen) })

	for _, in := range nodes {
		node := in
		if node.Mode == "" {
			node.Mode = model.NodeModePreview
		}
		if node.ID == "" || !m.contentKinds.Contains(node.Kind) ||
			model.RadiusFor(node.Kind, node.Mode) <= 0 {
			m.malformed++
			log.Warn().
				Str("id", node.ID).
				Str("kind", string(node.Kind)).
				Msg("dropping malformed node from batch")
			continue
		}
		if _, dup := m.nodes[node.ID]; dup {
			m.malformed++
			log.Warn().Str("id", node.ID).Msg("dropping duplicate node id")
			continue
		}
		m.applyCommunityVisibility(&node)
		m.nodes[node.ID] = &node
	}

	ranked := layout.RankByVotes(m.nodeList())
	targets := layout.SpiralTargets(len(ranked), m.conf.Spiral)
	for i, node := range ranked {
		m.targets[node.ID] = targets[i]
	}

	m.rawLinks = len(rawLinks)
	m.links = consolidateLinks(rawLinks, func(id string) bool {
		_, ok := m.nodes[id]
		return ok
	})
	// sorted once per generation so the per-frame snapshot stays linear
	m.linkOrder = sortedLinkIDs(m.links)

	m.hubMode = model.NodeModePreview
	m.sim.SetSystemNodes(m.buildSystemNodes())
	m.sched.Start(ranked, now)
	log.Info().
		Int("nodes", len(m.nodes)).
		Int("links", len(m.links)).
		Int("malformed", m.malformed).
		Msg("engine data set")
}

// SyncDataGently updates vote counts, visibility and payloads of existing
// nodes in place, without restarting the simulation or the reveal. This is
// the path vote casting and visibility toggles use; already-revealed nodes
// keep their opacity. Returns the number of nodes applied.
func (m *Manager) SyncDataGently(partial []model.ContentNode) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	applied := 0
	for _, in := range partial {
		node, ok := m.nodes[in.ID]
		if !ok {
			log.Warn().Str("id", in.ID).Msg("gentle sync for unknown node")
			continue
		}
		node.InclusionNetVotes = in.InclusionNetVotes
		node.ContentNetVotes = in.ContentNetVotes
		if in.Payload != nil {
			node.Payload = in.Payload
		}
		m.applyCommunityVisibility(node)
		applied++
	}
	return applied
}

// UpdateNodeMode switches a node between preview and detail. For the hub it
// repositions the navigation ring; for content nodes it resizes the
// simulation footprint and wakes the settlement forces at low intensity so
// neighbours redistribute smoothly. Returns false for unknown IDs.
func (m *Manager) UpdateNodeMode(nodeID string, mode model.NodeMode) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode != model.NodeModePreview && mode != model.NodeModeDetail {
		return false
	}
	if nodeID == HubNodeID {
		m.hubMode = mode
		positions := map[string]vector.Vector{}
		ring := layout.RingTargets(m.conf.NavCount, mode, m.conf.Ring)
		for i, pos := range ring {
			positions[navNodeID(i)] = pos
		}
		m.sim.UpdateSystemNodes(positions)
		for i := range m.sim.SystemNodes() {
			if m.sim.SystemNodes()[i].ID == HubNodeID {
				m.sim.SystemNodes()[i].Radius = model.RadiusFor(model.NodeKindHub, mode)
			}
		}
		m.sim.Wake(m.conf.NudgeAlpha)
		return true
	}
	node, ok := m.nodes[nodeID]
	if !ok {
		return false
	}
	node.Mode = mode
	m.sim.SetNodeRadius(nodeID, model.RadiusFor(node.Kind, mode))
	m.sim.Wake(m.conf.NudgeAlpha)
	return true
}

// SetUserVisibility records a user's hide/show preference for one node. A
// user preference overrides the community default. Returns false for
// unknown IDs.
func (m *Manager) SetUserVisibility(nodeID string, hidden bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok := m.nodes[nodeID]
	if !ok {
		return false
	}
	m.userHidden[nodeID] = hidden
	m.applyCommunityVisibility(node)
	return true
}

// ForceRevealAll snaps the reveal to completion, bypassing all animation.
func (m *Manager) ForceRevealAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reveal.ForceRevealAll()
}

// Step advances the engine by one frame: scheduler dispatch, simulation
// tick, reveal callbacks. Driven by Run, or called directly under a
// ManualClock.
func (m *Manager) Step() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	m.sched.Step(now)
	m.sim.Tick(now)
	m.reveal.Step(now)
}

// Run drives Step at the configured frame interval until ctx is cancelled
// or Close is called.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.conf.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			m.Step()
		}
	}
}

// Close stops Run and discards pending work. Idempotent.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// GetRenderableSnapshot returns the per-frame view of all nodes and links.
// Pure read, O(n), safe to call from a render loop.
func (m *Manager) GetRenderableSnapshot() model.RenderableSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	snap := model.RenderableSnapshot{}

	for _, system := range m.sim.SystemNodes() {
		snap.Nodes = append(snap.Nodes, model.RenderableNode{
			ID:      system.ID,
			X:       system.Pos.X(),
			Y:       system.Pos.Y(),
			Opacity: 1,
			Mode:    m.systemMode(system.ID),
			Radius:  system.Radius,
			Kind:    system.Kind,
		})
	}
	for _, sn := range m.sim.Nodes() {
		node, ok := m.nodes[sn.ID]
		if !ok || !m.contentKinds.Contains(node.Kind) {
			continue
		}
		snap.Nodes = append(snap.Nodes, model.RenderableNode{
			ID:           sn.ID,
			X:            sn.Pos.X(),
			Y:            sn.Pos.Y(),
			Opacity:      m.reveal.NodeOpacity(sn.ID, now),
			IsHidden:     node.Hidden,
			HiddenReason: node.HiddenReason,
			Mode:         node.Mode,
			Radius:       sn.Radius,
			Kind:         node.Kind,
			Payload:      node.Payload,
		})
	}

	renderLinks := m.reveal.ShouldRenderLinks(now)
	for _, id := range m.linkOrder {
		link := m.links[id]
		_, srcLive := m.sim.NodeByID(link.SourceID)
		_, dstLive := m.sim.NodeByID(link.TargetID)
		visible := renderLinks && srcLive && dstLive
		opacity := 0.0
		if visible {
			opacity = link.VisualWeight * m.reveal.LinkProgress(id, now)
		}
		snap.Links = append(snap.Links, model.RenderableLink{
			ID:       link.ID,
			SourceID: link.SourceID,
			TargetID: link.TargetID,
			Opacity:  opacity,
			Visible:  visible,
		})
	}
	return snap
}

// PerformanceMetrics exposes rendered-vs-total node counts, link
// consolidation and simulation state for diagnostics. The worst acceptable
// failure mode of the engine is "some nodes never appear", which must be
// visible here rather than crash anything.
type PerformanceMetrics struct {
	TotalNodeCount      int
	RenderedNodeCount   int
	DroppedNodeCount    int
	MalformedNodeCount  int
	RawLinkCount        int
	LinkCount           int
	ConsolidationRatio  float64
	SimulationPhase     string
	Alpha               float64
	AverageDisplacement float64
	Simulation          layout.SimulationStats
	RevealDone          bool
	Generation          string
}

func (m *Manager) GetPerformanceMetrics() PerformanceMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.sched.Stats()
	ratio := 0.0
	if m.rawLinks > 0 {
		ratio = float64(len(m.links)) / float64(m.rawLinks)
	}
	return PerformanceMetrics{
		TotalNodeCount:      len(m.nodes),
		RenderedNodeCount:   len(m.sim.Nodes()),
		DroppedNodeCount:    stats.DroppedNodes,
		MalformedNodeCount:  m.malformed,
		RawLinkCount:        m.rawLinks,
		LinkCount:           len(m.links),
		ConsolidationRatio:  ratio,
		SimulationPhase:     m.sim.Phase().String(),
		Alpha:               m.sim.Alpha(),
		AverageDisplacement: m.sim.AverageDisplacement(),
		Simulation:          m.sim.Stats(),
		RevealDone:          m.reveal.Done(),
		Generation:          m.generation.String(),
	}
}

// introduce is the scheduler's dispatch callback: it builds the physics
// representation for a batch of node IDs and hands them to the simulation.
func (m *Manager) introduce(ids []string) {
	batch := make([]*layout.Node, 0, len(ids))
	for _, id := range ids {
		node, ok := m.nodes[id]
		if !ok || !m.contentKinds.Contains(node.Kind) {
			continue
		}
		batch = append(batch, &layout.Node{
			ID:     id,
			Radius: model.RadiusFor(node.Kind, node.Mode),
			Target: m.targets[id],
		})
	}
	m.sim.AddNodes(batch, m.clock.Now())
}

// handleSettled runs inside the simulation's settled callback. The
// generation guard drops it if a SetData raced in between.
func (m *Manager) handleSettled(gen uuid.UUID) {
	if gen != m.generation {
		log.Debug().Msg("ignoring settled callback from stale generation")
		return
	}
	now := m.clock.Now()
	revealNodes := []RevealNode{}
	for _, sn := range m.sim.Nodes() {
		node, ok := m.nodes[sn.ID]
		if !ok || !m.contentKinds.Contains(node.Kind) {
			continue
		}
		revealNodes = append(revealNodes, RevealNode{
			ID:       sn.ID,
			Distance: sn.Pos.Magnitude(),
			Angle:    math.Atan2(sn.Pos.Y(), sn.Pos.X()),
			Votes:    node.InclusionNetVotes,
		})
	}
	linkIDs := []string{}
	for _, id := range m.linkOrder {
		link := m.links[id]
		_, srcLive := m.sim.NodeByID(link.SourceID)
		_, dstLive := m.sim.NodeByID(link.TargetID)
		if srcLive && dstLive {
			linkIDs = append(linkIDs, id)
		}
	}
	m.reveal.BeginReveal(revealNodes, linkIDs, now)
	if m.onSettled != nil {
		m.onSettled()
	}
}

// applyCommunityVisibility derives the hidden flag: an explicit user
// preference wins, otherwise negative inclusion consensus hides the node.
func (m *Manager) applyCommunityVisibility(node *model.ContentNode) {
	if pref, ok := m.userHidden[node.ID]; ok {
		if pref {
			node.Hidden = true
			node.HiddenReason = model.HiddenReasonUser
		} else {
			node.Hidden = false
			node.HiddenReason = ""
		}
		return
	}
	if node.InclusionNetVotes < 0 {
		node.Hidden = true
		node.HiddenReason = model.HiddenReasonCommunity
		return
	}
	node.Hidden = false
	node.HiddenReason = ""
}

func (m *Manager) buildSystemNodes() []layout.SystemNode {
	system := []layout.SystemNode{{
		ID:     HubNodeID,
		Kind:   model.NodeKindHub,
		Radius: model.RadiusFor(model.NodeKindHub, m.hubMode),
		Pos:    vector.Vector{0, 0},
	}}
	for i, pos := range layout.RingTargets(m.conf.NavCount, m.hubMode, m.conf.Ring) {
		system = append(system, layout.SystemNode{
			ID:     navNodeID(i),
			Kind:   model.NodeKindNavigation,
			Radius: m.conf.Ring.NavNodeRadius,
			Pos:    pos,
		})
	}
	return system
}

func (m *Manager) systemMode(id string) model.NodeMode {
	if id == HubNodeID {
		return m.hubMode
	}
	return model.NodeModePreview
}

func (m *Manager) nodeList() []*model.ContentNode {
	list := make([]*model.ContentNode, 0, len(m.nodes))
	for _, node := range m.nodes {
		list = append(list, node)
	}
	// map iteration is random; fix the pre-rank order so ties stay stable
	// across runs
	sortNodesByID(list)
	return list
}

func sortNodesByID(nodes []*model.ContentNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}

func navNodeID(i int) string { return fmt.Sprintf("nav-%d", i) }
