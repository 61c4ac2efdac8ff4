// adapted from https://github.com/jwhandley/graphyz/blob/main/g.go
package layout

import (
	"math"

	"github.com/quartercastle/vector"
)

func clamp(in, lo, hi float64) float64 {
	if math.IsNaN(in) {
		return in
	}
	if in > hi {
		return hi
	} else if in < lo {
		return lo
	}
	return in
}

func VectorClampValue(v vector.Vector, min, max float64) vector.Vector {
	return vector.Vector{
		clamp(v.X(), min, max),
		clamp(v.Y(), min, max),
	}
}

func VectorClampVector(v, min, max vector.Vector) vector.Vector {
	return vector.Vector{
		clamp(v.X(), min.X(), max.X()),
		clamp(v.Y(), min.Y(), max.Y()),
	}
}

// applyForces runs one force pass with the given phase strengths and
// integrates the result.
func (fs *ForceSimulation) applyForces(f PhaseForces) {
	fs.active = f
	fs.resetAcceleration()
	if f.ChargeStrength > 0 {
		if fs.conf.BarnesHut {
			fs.repulsionBarnesHut()
		} else {
			fs.repulsionNaive()
		}
	}
	if f.CollisionStrength > 0 {
		fs.collisionForce(f.CollisionStrength)
	}
	if f.RadialStrength > 0 {
		fs.radialForce(f.RadialStrength)
	}
	if f.AngularStrength > 0 {
		fs.angularForce(f.AngularStrength)
	}
	fs.updatePositions(fs.conf.FrameTime, f)
}

func (fs *ForceSimulation) resetAcceleration() {
	for _, node := range fs.nodes {
		node.acc = vector.Vector{0, 0}
	}
}

// accumulateRepulsion adds the charge repulsion between b1 and b2 to
// totalForce. tmp is scratch space to avoid per-pair allocations.
func (fs *ForceSimulation) accumulateRepulsion(totalForce, tmp *vector.Vector, b1, b2 Body) {
	// tmp := b1.position().Sub(b2.position()), without the allocation
	vector.In(*tmp).Sub(*tmp).Add(b1.position()).Sub(b2.position())
	dist := tmp.Magnitude()
	if dist < fs.conf.MinDistanceBeweenNodes {
		dist = fs.conf.MinDistanceBeweenNodes
	}
	scale := b1.mass() * b2.mass() * fs.alpha / (dist * dist) * fs.active.ChargeStrength
	vector.In(*tmp).Unit().Scale(scale)
	vector.In(*totalForce).Add(*tmp)
}

func (fs *ForceSimulation) repulsionBarnesHut() {
	if fs.qt == nil {
		fs.qt = NewQuadTree(&QuadTreeDefaultConfig, fs, fs.conf.Rect)
	}
	fs.qt.Clear()
	for _, node := range fs.nodes {
		fs.qt.Insert(node)
	}
	fs.qt.CalculateMasses()
	for _, node := range fs.nodes {
		force := vector.Vector{0, 0}
		tmp := vector.Vector{0, 0}
		fs.qt.CalculateForce(&force, &tmp, node, fs.conf.Theta)
		vector.In(node.acc).Add(force)
	}
}

func (fs *ForceSimulation) repulsionNaive() {
	tmp := vector.Vector{0, 0}
	for i, node := range fs.nodes {
		for j, other := range fs.nodes {
			if i == j {
				continue
			}
			fs.accumulateRepulsion(&node.acc, &tmp, node, other)
		}
	}
}

// collisionForce pushes overlapping node pairs apart proportionally to
// their overlap, preventing drawn content from stacking.
func (fs *ForceSimulation) collisionForce(strength float64) {
	for i := 0; i < len(fs.nodes); i++ {
		for j := i + 1; j < len(fs.nodes); j++ {
			a, b := fs.nodes[i], fs.nodes[j]
			delta := b.Pos.Sub(a.Pos)
			dist := delta.Magnitude()
			minDist := a.Radius + b.Radius
			if dist >= minDist {
				continue
			}
			if dist < fs.conf.MinDistanceBeweenNodes {
				// coincident nodes get a deterministic nudge apart
				delta = vector.Vector{1, 0}
				dist = fs.conf.MinDistanceBeweenNodes
			}
			overlap := minDist - dist
			push := delta.Unit().Scale(overlap * strength * 0.5)
			vector.In(b.acc).Add(push)
			vector.In(a.acc).Sub(push)
		}
	}
}

// radialForce gently pulls each node back towards its target distance from
// the origin, without pinning, so highly-voted content still ends up near
// the center after free settling.
func (fs *ForceSimulation) radialForce(strength float64) {
	for _, node := range fs.nodes {
		dist := node.Pos.Magnitude()
		if dist < fs.conf.MinDistanceBeweenNodes {
			continue
		}
		scale := (node.Target.Distance - dist) * strength * fs.alpha
		force := node.Pos.Unit().Scale(scale)
		vector.In(node.acc).Add(force)
	}
}

// angularForce nudges each node towards its spiral angle, preserving the
// relative ordering of the phyllotaxis spread.
func (fs *ForceSimulation) angularForce(strength float64) {
	for _, node := range fs.nodes {
		dist := node.Pos.Magnitude()
		if dist < fs.conf.MinDistanceBeweenNodes {
			continue
		}
		current := math.Atan2(node.Pos.Y(), node.Pos.X())
		diff := normalizeAngle(node.Target.Angle - current)
		// tangential unit vector, scaled to an arc-length correction
		tangent := vector.Vector{-node.Pos.Y() / dist, node.Pos.X() / dist}
		force := tangent.Scale(diff * dist * strength * fs.alpha)
		vector.In(node.acc).Add(force)
	}
}

// normalizeAngle maps an angle difference into (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func (fs *ForceSimulation) updatePositions(deltaTime float64, f PhaseForces) {
	outOfBoundsFactor := fs.conf.ScreenMultiplierToClampPosition
	boundsMin := vector.Vector{
		outOfBoundsFactor * (fs.conf.Rect.X), outOfBoundsFactor * (fs.conf.Rect.Y),
	}
	boundsMax := vector.Vector{
		outOfBoundsFactor * (fs.conf.Rect.X + fs.conf.Rect.Width),
		outOfBoundsFactor * (fs.conf.Rect.Y + fs.conf.Rect.Height),
	}
	total, moving := 0.0, 0
	for _, node := range fs.nodes {
		if node.isPinned {
			node.Pos = vector.Vector{node.pin.X(), node.pin.Y()}
			node.displacement = 0
			continue
		}
		vector.In(node.vel).Add(node.acc.Scale(deltaTime))
		vector.In(node.vel).Scale(1 - f.VelocityDecay)
		node.vel = VectorClampValue(node.vel, -f.MaxVelocity, f.MaxVelocity)
		step := node.vel.Scale(deltaTime)
		node.displacement = step.Magnitude()
		vector.In(node.Pos).Add(step)
		node.Pos = VectorClampVector(node.Pos, boundsMin, boundsMax)
		total += node.displacement
		moving++
	}
	if moving > 0 {
		instant := total / float64(moving)
		fs.avgDisplacement += (instant - fs.avgDisplacement) * fs.conf.DisplacementSmoothing
	}
}
