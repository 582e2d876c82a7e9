package game

import (
	"github.com/pthm-cable/murmur/components"
)

// spawnLocked creates the initial population. Callers hold e.mu (or are
// still inside New). Every creature carries the full component set;
// lifecycle is create-once, no system removes entities.
func (e *Engine) spawnLocked() {
	cfg := e.cfg
	spread := float32(cfg.Population.SpawnSpread)
	speedMax := float32(cfg.Population.StartSpeedMax)

	for i := 0; i < cfg.Population.Initial; i++ {
		id := e.world.CreateEntity()

		e.world.AttachPosition(id, components.Position{
			X: e.symmetric(cfg.Derived.HalfX * spread),
			Y: e.symmetric(cfg.Derived.HalfY * spread),
			Z: e.symmetric(cfg.Derived.HalfZ * spread),
		})
		e.world.AttachVelocity(id, components.Velocity{
			X: e.symmetric(speedMax),
			Y: e.symmetric(speedMax),
			Z: e.symmetric(speedMax),
		})
		e.world.AttachGenome(id, components.Genome{ID: e.rng.Uint32()})
		e.world.AttachPhenotype(id, components.Phenotype{
			R:    e.rng.Float32(),
			G:    e.rng.Float32(),
			B:    e.rng.Float32(),
			Size: float32(cfg.Population.StartSize),
		})
		e.world.AttachStomach(id, components.Stomach{})
		e.world.AttachEnergy(id, components.Energy{
			Current: float32(cfg.Population.StartEnergy),
			Max:     float32(cfg.Population.MaxEnergy),
		})
		e.world.AttachMood(id, components.Mood{})
		e.world.AttachCulturalTag(id, components.CulturalTag{})
	}
}

// symmetric returns a uniform value in [-max, max].
func (e *Engine) symmetric(max float32) float32 {
	return (e.rng.Float32()*2 - 1) * max
}
