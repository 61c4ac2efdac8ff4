// adapted from https://github.com/jwhandley/graphyz/blob/main/main.go
package layout

import (
	"time"

	"github.com/quartercastle/vector"
	"github.com/rs/zerolog/log"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

// Phase is the per-generation lifecycle of the simulation.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseDrop: nodes are pinned to their spiral targets under weak forces.
	// Time-boxed, since pinned nodes cannot converge any further.
	PhaseDrop
	// PhaseSettlement: nodes are unpinned and strong forces resolve overlaps
	// while a soft radial force keeps the vote ordering near the center.
	PhaseSettlement
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDrop:
		return "drop"
	case PhaseSettlement:
		return "settlement"
	case PhaseSettled:
		return "settled"
	}
	return "unknown"
}

// Node is the physics representation of a content node. Owned exclusively
// by the ForceSimulation; other components read it via accessors and mutate
// it only through the simulation's API.
type Node struct {
	ID           string
	Pos          vector.Vector
	Radius       float64
	Target       Target
	vel          vector.Vector
	acc          vector.Vector
	pin          vector.Vector
	isPinned     bool
	displacement float64
}

func (n *Node) mass() float64 {
	if n.Radius <= 0 {
		return 1
	}
	return n.Radius
}

func (n *Node) position() vector.Vector { return n.Pos }

func (n *Node) Velocity() vector.Vector { return n.vel }

func (n *Node) IsPinned() bool { return n.isPinned }

// PinTo forces the node to pos, overriding all forces until Unpin.
func (n *Node) PinTo(pos vector.Vector) {
	n.pin = pos
	n.Pos = vector.Vector{pos.X(), pos.Y()}
	n.isPinned = true
}

func (n *Node) Unpin() {
	n.isPinned = false
	n.vel = vector.Vector{0, 0}
}

// SystemNode lives in a side table outside the physics arrays so that
// charge and collision forces can never perturb the hub or the ring.
type SystemNode struct {
	ID     string
	Kind   model.NodeKind
	Radius float64
	Pos    vector.Vector
}

// PhaseForces are the force strengths active during one simulation phase.
type PhaseForces struct {
	ChargeStrength    float64
	CollisionStrength float64
	RadialStrength    float64
	// AngularStrength preserves the relative spiral ordering. Zero disables
	// the force.
	AngularStrength float64
	VelocityDecay   float64
	MaxVelocity     float64
}

type ForceSimulationConfig struct {
	Rect                   Rect
	Drop                   PhaseForces
	Settle                 PhaseForces
	MinDistanceBeweenNodes float64
	// DropDuration time-boxes PhaseDrop once the scheduler reports
	// completion; MaxDropDuration is the hard ceiling if it never does.
	DropDuration    time.Duration
	MaxDropDuration time.Duration
	// initial temperature of simulation
	AlphaInit float64
	// decay of temperature per tick, towards AlphaTarget
	AlphaDecay  float64
	AlphaTarget float64
	// settlement requires BOTH alpha below SettledAlphaThreshold AND the
	// displacement average below MinMovement, so a temporary lull while
	// nodes still drift does not count as settled.
	SettledAlphaThreshold float64
	MinMovement           float64
	DisplacementSmoothing float64
	// MaxSettleDuration is the non-convergence safety valve: the simulation
	// settles after this much time in PhaseSettlement no matter what.
	MaxSettleDuration time.Duration
	// FrameTime is the simulated time passed per tick. Too high a value
	// over-shoots optimal positions, too low wastes computation.
	FrameTime                       float64
	WakeAlpha                       float64
	BarnesHut                       bool
	Theta                           float64
	ScreenMultiplierToClampPosition float64
}

var DefaultForceSimulationConfig = ForceSimulationConfig{
	Rect:                   Rect{X: -2000, Y: -2000, Width: 4000, Height: 4000},
	MinDistanceBeweenNodes: 1e-2,
	Drop: PhaseForces{
		ChargeStrength:    0.3,
		CollisionStrength: 0.2,
		RadialStrength:    0,
		AngularStrength:   0,
		VelocityDecay:     0.6,
		MaxVelocity:       50,
	},
	Settle: PhaseForces{
		ChargeStrength:    6.0,
		CollisionStrength: 1.2,
		RadialStrength:    0.08,
		AngularStrength:   0.02,
		VelocityDecay:     0.3,
		MaxVelocity:       120,
	},
	DropDuration:                    2000 * time.Millisecond,
	MaxDropDuration:                 6000 * time.Millisecond,
	AlphaInit:                       1.0,
	AlphaDecay:                      0.028,
	AlphaTarget:                     0.0,
	SettledAlphaThreshold:           0.03,
	MinMovement:                     0.5,
	DisplacementSmoothing:           0.2,
	MaxSettleDuration:               12 * time.Second,
	FrameTime:                       1.0,
	WakeAlpha:                       0.15,
	BarnesHut:                       true,
	Theta:                           0.75,
	ScreenMultiplierToClampPosition: 10.0,
}

// ForceSimulation holds all state of the two-phase embedding procedure for
// one data generation.
type ForceSimulation struct {
	conf  ForceSimulationConfig
	phase Phase
	alpha float64
	// force set for the current tick, read by accumulateRepulsion
	active PhaseForces

	nodes  []*Node
	byID   map[string]*Node
	system []SystemNode
	qt     *QuadTree

	phaseStart       time.Time
	scheduleComplete bool
	avgDisplacement  float64
	awake            bool
	onSettled        func()
	stats            SimulationStats
}

type SimulationStats struct {
	DropTicks   int
	SettleTicks int
	SettledIn   time.Duration
	SettledBy   string // "convergence" or "ceiling"
}

func NewForceSimulation(conf ForceSimulationConfig) *ForceSimulation {
	fs := &ForceSimulation{byID: map[string]*Node{}}
	fs.ApplyConfig(conf)
	return fs
}

func (fs *ForceSimulation) ApplyConfig(conf ForceSimulationConfig) {
	def := DefaultForceSimulationConfig
	if conf.Rect.Width == 0.0 || conf.Rect.Height == 0.0 {
		conf.Rect = def.Rect
	}
	if conf.MinDistanceBeweenNodes == 0.0 {
		conf.MinDistanceBeweenNodes = def.MinDistanceBeweenNodes
	}
	if conf.Drop == (PhaseForces{}) {
		conf.Drop = def.Drop
	}
	if conf.Settle == (PhaseForces{}) {
		conf.Settle = def.Settle
	}
	if conf.DropDuration == 0 {
		conf.DropDuration = def.DropDuration
	}
	if conf.MaxDropDuration == 0 {
		conf.MaxDropDuration = def.MaxDropDuration
	}
	if conf.AlphaInit == 0.0 {
		conf.AlphaInit = def.AlphaInit
	}
	if conf.AlphaDecay == 0.0 {
		conf.AlphaDecay = def.AlphaDecay
	}
	if conf.SettledAlphaThreshold == 0.0 {
		conf.SettledAlphaThreshold = def.SettledAlphaThreshold
	}
	if conf.MinMovement == 0.0 {
		conf.MinMovement = def.MinMovement
	}
	if conf.DisplacementSmoothing == 0.0 {
		conf.DisplacementSmoothing = def.DisplacementSmoothing
	}
	if conf.MaxSettleDuration == 0 {
		conf.MaxSettleDuration = def.MaxSettleDuration
	}
	if conf.FrameTime == 0.0 {
		conf.FrameTime = def.FrameTime
	}
	if conf.WakeAlpha == 0.0 {
		conf.WakeAlpha = def.WakeAlpha
	}
	if conf.Theta == 0.0 {
		conf.Theta = def.Theta
	}
	if conf.ScreenMultiplierToClampPosition == 0.0 {
		conf.ScreenMultiplierToClampPosition = def.ScreenMultiplierToClampPosition
	}
	fs.conf = conf
	fs.alpha = fs.conf.AlphaInit
}

func (fs *ForceSimulation) Config() ForceSimulationConfig { return fs.conf }

// Reset discards all nodes and returns to PhaseIdle. Must be called before
// reusing the simulation for a new data generation.
func (fs *ForceSimulation) Reset() {
	fs.phase = PhaseIdle
	fs.alpha = fs.conf.AlphaInit
	fs.nodes = nil
	fs.byID = map[string]*Node{}
	fs.system = nil
	fs.qt = nil
	fs.scheduleComplete = false
	fs.avgDisplacement = 0
	fs.awake = false
	fs.onSettled = nil
	fs.stats = SimulationStats{}
}

// OnSettled registers the callback fired exactly once per generation when
// the simulation reaches PhaseSettled.
func (fs *ForceSimulation) OnSettled(fn func()) { fs.onSettled = fn }

// AddNodes introduces a batch of content nodes. During PhaseIdle and
// PhaseDrop each node is pinned to its spiral target; nodes arriving after
// the drop window join unpinned at their target.
func (fs *ForceSimulation) AddNodes(batch []*Node, now time.Time) {
	for _, node := range batch {
		if _, exists := fs.byID[node.ID]; exists {
			continue
		}
		node.PinTo(node.Target.Position())
		if fs.phase == PhaseSettlement || fs.phase == PhaseSettled {
			node.Unpin()
		}
		if len(node.acc) == 0 {
			node.acc = vector.Vector{0, 0}
		}
		if len(node.vel) == 0 {
			node.vel = vector.Vector{0, 0}
		}
		fs.nodes = append(fs.nodes, node)
		fs.byID[node.ID] = node
	}
	if fs.phase == PhaseIdle && len(fs.nodes) > 0 {
		fs.phase = PhaseDrop
		fs.phaseStart = now
		log.Debug().Int("nodes", len(fs.nodes)).Msg("simulation entered drop phase")
	}
}

// ScheduleComplete tells the simulation that no further nodes will be
// introduced, so the drop time-box may expire at DropDuration instead of
// the MaxDropDuration ceiling.
func (fs *ForceSimulation) ScheduleComplete() { fs.scheduleComplete = true }

// Wake raises the temperature so the settlement forces briefly re-activate,
// e.g. after a node-mode change. It never re-enters PhaseDrop and never
// re-fires the settled callback.
func (fs *ForceSimulation) Wake(alpha float64) {
	if fs.phase != PhaseSettlement && fs.phase != PhaseSettled {
		return
	}
	if alpha <= 0 {
		alpha = fs.conf.WakeAlpha
	}
	if alpha > fs.alpha {
		fs.alpha = alpha
	}
	fs.awake = true
}

// SetSystemNodes replaces the system-node side table.
func (fs *ForceSimulation) SetSystemNodes(system []SystemNode) {
	fs.system = system
}

// UpdateSystemNodes overwrites system-node coordinates in place. No
// interpolation happens here; easing belongs to the presentation layer.
func (fs *ForceSimulation) UpdateSystemNodes(positions map[string]vector.Vector) {
	for i := range fs.system {
		if pos, ok := positions[fs.system[i].ID]; ok {
			fs.system[i].Pos = pos
		}
	}
}

// Nodes returns the live content nodes. Callers must treat the result as
// read-only.
func (fs *ForceSimulation) Nodes() []*Node { return fs.nodes }

func (fs *ForceSimulation) NodeByID(id string) (*Node, bool) {
	n, ok := fs.byID[id]
	return n, ok
}

func (fs *ForceSimulation) SystemNodes() []SystemNode { return fs.system }

func (fs *ForceSimulation) Phase() Phase { return fs.phase }

func (fs *ForceSimulation) Alpha() float64 { return fs.alpha }

func (fs *ForceSimulation) AverageDisplacement() float64 { return fs.avgDisplacement }

func (fs *ForceSimulation) Stats() SimulationStats { return fs.stats }

// SetNodeRadius adjusts a node's collision footprint, e.g. on a
// preview/detail mode change.
func (fs *ForceSimulation) SetNodeRadius(id string, radius float64) bool {
	node, ok := fs.byID[id]
	if !ok {
		return false
	}
	node.Radius = radius
	return true
}

// Tick advances the simulation by one frame and returns the phase after the
// tick. Tick never panics on a degenerate force configuration; the
// MaxSettleDuration ceiling guarantees eventual settlement.
func (fs *ForceSimulation) Tick(now time.Time) Phase {
	switch fs.phase {
	case PhaseIdle:
		// an empty schedule still has to reach settled, or callers
		// sequencing on the settled callback wait forever
		if fs.scheduleComplete && len(fs.nodes) == 0 {
			fs.phaseStart = now
			fs.enterSettled(now, true)
		}
		return fs.phase
	case PhaseDrop:
		fs.stats.DropTicks++
		fs.applyForces(fs.conf.Drop)
		elapsed := now.Sub(fs.phaseStart)
		if (fs.scheduleComplete && elapsed >= fs.conf.DropDuration) || elapsed >= fs.conf.MaxDropDuration {
			fs.enterSettlement(now)
		}
	case PhaseSettlement:
		fs.stats.SettleTicks++
		fs.applyForces(fs.conf.Settle)
		fs.alpha += (fs.conf.AlphaTarget - fs.alpha) * fs.conf.AlphaDecay
		// never declare settled while the scheduler still owes nodes, or a
		// late batch would skip the reveal choreography entirely
		converged := fs.scheduleComplete &&
			fs.alpha <= fs.conf.AlphaTarget+fs.conf.SettledAlphaThreshold &&
			fs.avgDisplacement < fs.conf.MinMovement
		ceiling := now.Sub(fs.phaseStart) >= fs.conf.MaxSettleDuration
		if converged || ceiling {
			fs.enterSettled(now, converged)
		}
	case PhaseSettled:
		if fs.awake {
			fs.applyForces(fs.conf.Settle)
			fs.alpha += (fs.conf.AlphaTarget - fs.alpha) * fs.conf.AlphaDecay
			if fs.alpha <= fs.conf.AlphaTarget+fs.conf.SettledAlphaThreshold {
				fs.awake = false
			}
		}
	}
	return fs.phase
}

func (fs *ForceSimulation) enterSettlement(now time.Time) {
	for _, node := range fs.nodes {
		node.Unpin()
	}
	fs.phase = PhaseSettlement
	fs.phaseStart = now
	fs.alpha = fs.conf.AlphaInit
	// start well above the threshold so one quiet tick right after the
	// transition cannot count as converged
	fs.avgDisplacement = fs.conf.MinMovement * 10
	log.Debug().Int("nodes", len(fs.nodes)).Msg("simulation entered settlement phase")
}

func (fs *ForceSimulation) enterSettled(now time.Time, converged bool) {
	fs.phase = PhaseSettled
	fs.stats.SettledIn = now.Sub(fs.phaseStart)
	if converged {
		fs.stats.SettledBy = "convergence"
	} else {
		fs.stats.SettledBy = "ceiling"
	}
	log.Info().
		Int("dropTicks", fs.stats.DropTicks).
		Int("settleTicks", fs.stats.SettleTicks).
		Str("by", fs.stats.SettledBy).
		Msgf("simulation settled after %d ms", fs.stats.SettledIn.Milliseconds())
	if fs.onSettled != nil {
		fn := fs.onSettled
		fs.onSettled = nil // exactly once per generation
		fn()
	}
}
