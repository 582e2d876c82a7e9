package game

import (
	"github.com/rs/zerolog/log"

	"github.com/pthm-cable/murmur/persistence"
	"github.com/pthm-cable/murmur/world"
)

// CaptureSnapshot copies the full simulation state. It takes the engine
// mutex, so it always observes whole ticks, never a tick in progress.
func (e *Engine) CaptureSnapshot() *persistence.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return persistence.Capture(e.world, e.social.Graph(), e.festival)
}

// RestoreSnapshot replaces the world, relationship graph, and festival
// state from a snapshot, remapping every old entity id to a freshly
// allocated one. A missing social or festival section resets just that
// subsystem to its defaults.
func (e *Engine) RestoreSnapshot(snap *persistence.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, remap, err := snap.Rebuild()
	if err != nil {
		return err
	}

	e.world = w
	e.social.SetGraph(snap.RestoreGraph(remap))
	snap.RestoreFestival(e.festival)
	return nil
}

// ResetToDefaults discards all state and respawns the initial population,
// the recovery path for an unusable snapshot.
func (e *Engine) ResetToDefaults() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.world = world.New()
	e.social.Graph().Reset()
	e.festival.Reset()
	e.tick = 0
	e.spawnLocked()
	e.lastAdvisory = "simulation reset to defaults"
	log.Warn().Int("population", e.world.Len()).Msg(e.lastAdvisory)
}
