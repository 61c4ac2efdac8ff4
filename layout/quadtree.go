// adapted from https://github.com/jwhandley/graphyz/blob/main/quadtree.go
package layout

import (
	"github.com/quartercastle/vector"
)

// Body is anything that exerts charge repulsion: a single node or an
// aggregated quadtree cell.
type Body interface {
	mass() float64
	position() vector.Vector
}

type QuadTreeConfig struct {
	CapacityOfEachBlock int
	MaxDepth            int
}

var QuadTreeDefaultConfig = QuadTreeConfig{CapacityOfEachBlock: 10, MaxDepth: 32}

// QuadTree approximates n-body charge repulsion (Barnes-Hut): distant
// clusters of nodes act as a single body located at their center of mass.
type QuadTree struct {
	Center    vector.Vector
	TotalMass float64
	Region    Rect
	Nodes     []*Node
	Children  [4]*QuadTree
	config    *QuadTreeConfig
	sim       *ForceSimulation
}

type Rect struct {
	X, Y, Width, Height float64
}

func (r *Rect) Contains(pos vector.Vector) bool {
	return pos.X() >= r.X && pos.X() <= r.X+r.Width &&
		pos.Y() >= r.Y && pos.Y() <= r.Y+r.Height
}

func (r *Rect) Center() vector.Vector {
	return vector.Vector{r.X + r.Width/2, r.Y + r.Height/2}
}

func NewQuadTree(config *QuadTreeConfig, sim *ForceSimulation, boundary Rect) *QuadTree {
	qt := new(QuadTree)
	if config == nil {
		config = &QuadTreeDefaultConfig
	}
	qt.config = config
	if qt.config.CapacityOfEachBlock == 0 {
		qt.config.CapacityOfEachBlock = QuadTreeDefaultConfig.CapacityOfEachBlock
	}
	if qt.config.MaxDepth == 0 {
		qt.config.MaxDepth = QuadTreeDefaultConfig.MaxDepth
	}
	qt.Region = boundary
	qt.Nodes = make([]*Node, 0, qt.config.CapacityOfEachBlock)
	qt.Center = vector.Vector{0, 0}
	qt.sim = sim
	return qt
}

func (qt *QuadTree) Clear() {
	qt.Center = vector.Vector{0, 0}
	qt.Nodes = nil
	for i := range qt.Children {
		qt.Children[i] = nil
	}
	qt.TotalMass = 0
}

func (qt *QuadTree) Insert(node *Node) bool {
	return qt.insert(node, 0)
}

func (qt *QuadTree) insert(node *Node, depth int) bool {
	if !qt.Region.Contains(node.Pos) {
		return false
	}
	// MaxDepth bounds the recursion when many nodes share one location.
	if len(qt.Nodes) < qt.config.CapacityOfEachBlock || depth >= qt.config.MaxDepth {
		qt.Nodes = append(qt.Nodes, node)
		return true
	}
	if qt.Children[0] == nil {
		qt.subdivide(depth)
	}
	for _, child := range qt.Children {
		if child.insert(node, depth+1) {
			return true
		}
	}
	return false
}

func (qt *QuadTree) subdivide(depth int) {
	midX := qt.Region.X + qt.Region.Width/2
	midY := qt.Region.Y + qt.Region.Height/2
	halfWidth := qt.Region.Width / 2
	halfHeight := qt.Region.Height / 2

	qt.Children[0] = NewQuadTree(qt.config, qt.sim, Rect{X: qt.Region.X, Y: qt.Region.Y, Width: halfWidth, Height: halfHeight})
	qt.Children[1] = NewQuadTree(qt.config, qt.sim, Rect{X: midX, Y: qt.Region.Y, Width: halfWidth, Height: halfHeight})
	qt.Children[2] = NewQuadTree(qt.config, qt.sim, Rect{X: qt.Region.X, Y: midY, Width: halfWidth, Height: halfHeight})
	qt.Children[3] = NewQuadTree(qt.config, qt.sim, Rect{X: midX, Y: midY, Width: halfWidth, Height: halfHeight})

	for _, node := range qt.Nodes {
		for _, child := range qt.Children {
			if child.Region.Contains(node.Pos) {
				child.insert(node, depth+1)
				break
			}
		}
	}
}

func (qt *QuadTree) CalculateMasses() {
	if qt.Children[0] == nil {
		for _, node := range qt.Nodes {
			qt.TotalMass += node.mass()
			qt.Center = qt.Center.Add(node.Pos.Scale(node.mass()))
		}
	} else {
		for _, child := range qt.Children {
			child.CalculateMasses()
			qt.TotalMass += child.TotalMass
			qt.Center = qt.Center.Add(child.Center.Scale(child.TotalMass))
		}
	}
	if qt.TotalMass > 0 {
		qt.Center = qt.Center.Scale(1 / qt.TotalMass)
	}
}

// CalculateForce accumulates the charge repulsion acting on node into
// totalForce. theta trades accuracy for speed, see
// https://en.wikipedia.org/wiki/Barnes%E2%80%93Hut_simulation
func (qt *QuadTree) CalculateForce(totalForce, tmp *vector.Vector, node *Node, theta float64) {
	if qt.Children[0] == nil {
		for _, other := range qt.Nodes {
			if node == other {
				continue
			}
			qt.sim.accumulateRepulsion(totalForce, tmp, node, other)
		}
		return
	}
	d := node.Pos.Sub(qt.Center).Magnitude()
	if (qt.Region.Width / d) < theta {
		qt.sim.accumulateRepulsion(totalForce, tmp, node, qt)
		return
	}
	for _, child := range qt.Children {
		if child != nil {
			child.CalculateForce(totalForce, tmp, node, theta)
		}
	}
}

func (qt *QuadTree) mass() float64 {
	return qt.TotalMass
}

func (qt *QuadTree) position() vector.Vector {
	return qt.Center
}
