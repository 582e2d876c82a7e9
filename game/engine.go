// Package game hosts the simulation engine: the fixed-step scheduler, the
// system ordering, and the read-only surfaces external collaborators
// consume.
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/systems"
	"github.com/pthm-cable/murmur/telemetry"
	"github.com/pthm-cable/murmur/world"
)

// Options holds engine construction knobs not covered by config.
type Options struct {
	Seed      int64
	Collector *telemetry.Collector // nil = stats kept but not written
}

// Engine owns the world and runs the systems in their fixed per-tick
// order: Movement, Metabolism, Foraging, Social, Festival. A single
// goroutine drives Advance; the engine mutex only exists so snapshot
// capture/restore observes whole ticks, never a tick in progress.
type Engine struct {
	mu  sync.Mutex
	cfg *config.Config
	rng *rand.Rand

	world      *world.World
	grid       *systems.SpatialGrid
	social     *systems.SocialEngine
	metabolism *systems.Metabolism
	foraging   *systems.Foraging
	festival   *systems.Festival
	collector  *telemetry.Collector

	serial   systems.SerialMover
	parallel *systems.ParallelMover
	// Set after a dispatch failure; the kernel stays disabled for the
	// rest of the run.
	kernelDisabled bool

	paramMu     sync.RWMutex
	flockParams systems.FlockParams

	tick     int64
	lastTick time.Time
	started  bool

	lastAdvisory string

	boids   []systems.Boid
	intents []systems.Intent

	// Social rule applications last tick, for telemetry.
	interactions int
}

// New builds the engine, selects the movement kernel, and spawns the
// initial population.
func New(cfg *config.Config, opts Options) *Engine {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	grid := systems.NewSpatialGrid(
		cfg.Derived.HalfX, cfg.Derived.HalfY, cfg.Derived.HalfZ,
		cfg.Derived.GridCellSize,
	)

	collector := opts.Collector
	if collector == nil {
		collector = telemetry.NewCollector(nil, 0)
	}

	e := &Engine{
		cfg:        cfg,
		rng:        rng,
		world:      world.New(),
		grid:       grid,
		social:     systems.NewSocialEngine(cfg.Social.Rules, grid, cfg.Derived.MaxSocialRadius),
		metabolism: systems.NewMetabolism(cfg.Metabolism),
		foraging:   systems.NewForaging(cfg.Foraging, rng),
		festival:   systems.NewFestival(cfg.Festival),
		collector:  collector,
	}
	e.flockParams = defaultFlockParams(cfg)

	parallel, err := systems.NewParallelMover(cfg.Flocking.Workers)
	if err != nil {
		e.lastAdvisory = "parallel movement kernel unavailable; using CPU fallback"
		log.Warn().Err(err).Msg(e.lastAdvisory)
	} else {
		e.parallel = parallel
		log.Info().Int("workers", parallel.Workers()).Msg("parallel movement kernel ready")
	}

	e.spawnLocked()
	log.Info().Int64("seed", seed).Int("population", e.world.Len()).Msg("engine initialized")
	return e
}

// Advance is the external clock callback. If a full tick interval has
// elapsed since the last executed tick, it runs exactly one tick and
// carries the remainder forward; under sustained overload the simulation
// falls behind real time rather than catching up. Returns whether a tick
// ran.
func (e *Engine) Advance(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		e.started = true
		e.lastTick = now
		return false
	}

	interval := e.cfg.Derived.TickInterval
	if now.Sub(e.lastTick) < interval {
		return false
	}

	e.step()
	e.lastTick = e.lastTick.Add(interval)
	return true
}

// StepOnce runs one tick unconditionally. Used by tests and fast-forward
// tooling.
func (e *Engine) StepOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step()
}

// step runs the systems in their fixed order. Callers hold e.mu.
func (e *Engine) step() {
	e.runMovement()
	e.metabolism.Update(e.world.Store)
	e.foraging.Update(e.world.Store)
	e.interactions = e.social.Update(e.world.Store)
	e.festival.Update(e.world.Store)

	e.tick++
	e.collector.Collect(e.world.Store, e.tick, e.festival.Active(), e.interactions)
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// LastAdvisory returns the most recent user-visible advisory message, or
// an empty string.
func (e *Engine) LastAdvisory() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastAdvisory
}

// Close stops the worker pool and flushes telemetry.
func (e *Engine) Close() {
	if e.parallel != nil {
		e.parallel.Stop()
	}
	e.collector.Close()
}

// World exposes the component store for tests.
func (e *Engine) World() *world.World {
	return e.world
}

// Festival exposes the festival state machine for tests.
func (e *Engine) Festival() *systems.Festival {
	return e.festival
}

// Social exposes the social engine for tests.
func (e *Engine) Social() *systems.SocialEngine {
	return e.social
}
