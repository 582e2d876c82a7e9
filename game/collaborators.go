package game

import (
	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/world"
)

// RenderInstance is one visual instance for the renderer: placement plus
// color/size traits. The renderer never mutates simulation state.
type RenderInstance struct {
	ID        uint32
	Position  components.Position
	Phenotype components.Phenotype
}

// RenderState copies the current position and phenotype of every entity
// holding both, for instanced drawing.
func (e *Engine) RenderState() []RenderInstance {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.world.Query(world.MaskPosition | world.MaskPhenotype)
	out := make([]RenderInstance, 0, len(ids))
	for _, id := range ids {
		out = append(out, RenderInstance{
			ID:        id,
			Position:  *e.world.Position(id),
			Phenotype: *e.world.Phenotype(id),
		})
	}
	return out
}

// Readout is the slow-poll status surface.
type Readout struct {
	Tick             int64
	Entities         int
	AverageHappiness float64
	FestivalActive   bool
	Advisory         string
}

// Readout reports the latest collected population stats. Cheap enough to
// poll on a slow interval.
func (e *Engine) Readout() Readout {
	e.mu.Lock()
	defer e.mu.Unlock()

	last := e.collector.Last()
	return Readout{
		Tick:             last.Tick,
		Entities:         last.Population,
		AverageHappiness: last.MeanMood,
		FestivalActive:   last.FestivalActive,
		Advisory:         e.lastAdvisory,
	}
}
