package game

import (
	"github.com/rs/zerolog/log"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/systems"
	"github.com/pthm-cable/murmur/world"
)

// MovementEligible is the component set the flocking kernel operates on.
const MovementEligible = world.MaskPosition | world.MaskVelocity

func defaultFlockParams(cfg *config.Config) systems.FlockParams {
	return systems.FlockParams{
		DT:                 float32(cfg.Derived.TickInterval.Seconds()),
		CohesionFactor:     float32(cfg.Flocking.CohesionFactor),
		SeparationFactor:   float32(cfg.Flocking.SeparationFactor),
		AlignmentFactor:    float32(cfg.Flocking.AlignmentFactor),
		PerceptionRadius:   float32(cfg.Flocking.PerceptionRadius),
		SeparationDistance: float32(cfg.Flocking.SeparationDistance),
		MaxSpeed:           float32(cfg.Flocking.MaxSpeed),
		MaxForce:           float32(cfg.Flocking.MaxForce),
		HalfX:              cfg.Derived.HalfX,
		HalfY:              cfg.Derived.HalfY,
		HalfZ:              cfg.Derived.HalfZ,
	}
}

// FlockingParams returns the current kernel parameter block.
func (e *Engine) FlockingParams() systems.FlockParams {
	e.paramMu.RLock()
	defer e.paramMu.RUnlock()
	return e.flockParams
}

// SetFlockingParams replaces the kernel parameter block. This is the
// tuning-panel write path: it takes effect on the next tick with no
// validation beyond what the kernel itself tolerates.
func (e *Engine) SetFlockingParams(p systems.FlockParams) {
	e.paramMu.Lock()
	defer e.paramMu.Unlock()
	e.flockParams = p
}

// runMovement snapshots all movable entities, dispatches the flocking
// kernel, and writes the results back. The strategy choice is made fresh
// each tick; a dispatch failure disables the parallel kernel for the rest
// of the run and the serial fallback recomputes the tick seamlessly.
func (e *Engine) runMovement() {
	ids := e.world.Query(MovementEligible)
	if len(ids) == 0 {
		return
	}

	e.boids = e.boids[:0]
	for _, id := range ids {
		e.boids = append(e.boids, systems.Boid{
			ID:  id,
			Pos: *e.world.Position(id),
			Vel: *e.world.Velocity(id),
		})
	}
	if cap(e.intents) < len(e.boids) {
		e.intents = make([]systems.Intent, len(e.boids))
	}
	e.intents = e.intents[:len(e.boids)]

	params := e.FlockingParams()

	var mover systems.Mover = e.serial
	if e.parallel != nil && !e.kernelDisabled {
		mover = e.parallel
	}

	if err := mover.Step(e.boids, e.intents, params); err != nil {
		// Dispatch failure mid-tick. Report once, disable the kernel, and
		// redo the tick on the fallback; the tick loop must not die here.
		e.kernelDisabled = true
		e.lastAdvisory = "movement kernel dispatch failed; switched to CPU fallback"
		log.Error().Err(err).Msg(e.lastAdvisory)
		if err := e.serial.Step(e.boids, e.intents, params); err != nil {
			log.Error().Err(err).Msg("serial movement failed; skipping movement this tick")
			return
		}
	}

	// Writeback. Nothing read tick-N state before this point.
	for i, b := range e.boids {
		*e.world.Position(b.ID) = e.intents[i].Pos
		*e.world.Velocity(b.ID) = e.intents[i].Vel
	}
}
