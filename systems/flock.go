package systems

import "github.com/pthm-cable/murmur/components"

// FlockParams is the boids kernel parameter block. All knobs may be changed
// between ticks by the tuning panel; the kernel tolerates arbitrary values
// (a zero perception radius yields no neighbors and therefore no steering).
type FlockParams struct {
	DT float32

	CohesionFactor     float32
	SeparationFactor   float32
	AlignmentFactor    float32
	PerceptionRadius   float32
	SeparationDistance float32
	MaxSpeed           float32
	MaxForce           float32

	// World half-extents for the toroidal boundary wrap.
	HalfX, HalfY, HalfZ float32
}

// Boid is one entry in the read-only movement snapshot taken at the start
// of a tick. All reads for tick N see only tick N-1 state.
type Boid struct {
	ID  uint32
	Pos components.Position
	Vel components.Velocity
}

// Intent is the computed tick-N state for one boid, written back after the
// whole batch has been computed.
type Intent struct {
	Pos components.Position
	Vel components.Velocity
}

// StepBoid computes the next position and velocity for boids[i] against the
// full snapshot. It is a pure function of its inputs: both movement
// strategies run exactly this body, so the serial fallback is behaviorally
// identical to the parallel dispatch.
//
// Every other boid is scanned; no broad-phase is used here. That keeps the
// per-entity rule trivially data-parallel at the cost of O(n^2) per tick.
func StepBoid(i int, boids []Boid, p FlockParams) Intent {
	self := &boids[i]
	pos := Vec3{self.Pos.X, self.Pos.Y, self.Pos.Z}
	vel := Vec3{self.Vel.X, self.Vel.Y, self.Vel.Z}

	var cohesionSum, alignmentSum, separationSum Vec3
	var cohesionN, alignmentN, separationN int

	for j := range boids {
		if j == i {
			continue
		}
		other := &boids[j]
		diff := Vec3{pos.X - other.Pos.X, pos.Y - other.Pos.Y, pos.Z - other.Pos.Z}
		d := diff.Len()

		if d > 0 && d < p.PerceptionRadius {
			cohesionSum.X += other.Pos.X
			cohesionSum.Y += other.Pos.Y
			cohesionSum.Z += other.Pos.Z
			cohesionN++
			alignmentSum.X += other.Vel.X
			alignmentSum.Y += other.Vel.Y
			alignmentSum.Z += other.Vel.Z
			alignmentN++
		}
		if d > 0 && d < p.SeparationDistance {
			separationSum = separationSum.Add(diff.Scale(1 / d).Scale(1 / d))
			separationN++
		}
	}

	// A rule with zero neighbors contributes nothing at all.
	var steer Vec3
	if cohesionN > 0 {
		avg := cohesionSum.Scale(1 / float32(cohesionN))
		steer = steer.Add(avg.Sub(pos).Limit(p.MaxForce).Scale(p.CohesionFactor))
	}
	if alignmentN > 0 {
		avg := alignmentSum.Scale(1 / float32(alignmentN))
		steer = steer.Add(avg.Limit(p.MaxForce).Scale(p.AlignmentFactor))
	}
	if separationN > 0 {
		avg := separationSum.Scale(1 / float32(separationN))
		steer = steer.Add(avg.Limit(p.MaxForce).Scale(p.SeparationFactor))
	}

	vel = vel.Add(steer.Scale(p.DT)).Limit(p.MaxSpeed)
	pos = pos.Add(vel.Scale(p.DT))

	pos.X = wrapAxis(pos.X, p.HalfX)
	pos.Y = wrapAxis(pos.Y, p.HalfY)
	pos.Z = wrapAxis(pos.Z, p.HalfZ)

	return Intent{
		Pos: components.Position{X: pos.X, Y: pos.Y, Z: pos.Z},
		Vel: components.Velocity{X: vel.X, Y: vel.Y, Z: vel.Z},
	}
}

// wrapAxis sends a coordinate that crosses a face to the exact opposite
// boundary value. This is deliberately not a modulo wrap: the overshoot
// beyond the face is discarded, matching the designed boundary rule.
func wrapAxis(v, half float32) float32 {
	if half <= 0 {
		return v
	}
	if v >= half {
		return -half
	}
	if v <= -half {
		return half
	}
	return v
}
