package systems

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/world"
)

// DancerEligible is the component set an entity needs to join the spiral.
const DancerEligible = world.MaskPosition | world.MaskVelocity | world.MaskCulturalTag | world.MaskMood

// Festival is the two-state machine behind the emergent group dance.
// Population-wide happiness sustained above the high threshold activates
// it; it deactivates on its end tick or when happiness collapses below the
// hysteresis floor. While active it overrides every dancer's velocity with
// spiral choreography, ignoring the flocking output for that tick.
//
// The four scalars (streak, active, end tick, tick counter) are the
// persisted festival state.
type Festival struct {
	streak    int32
	active    bool
	endTick   int64
	tickCount int64

	// Choreography state, rebuilt on activation; not persisted.
	angle  float32
	radius float32

	cfg config.FestivalConfig

	moodScratch []float64
	scratch     []uint32
}

// NewFestival builds the state machine from config.
func NewFestival(cfg config.FestivalConfig) *Festival {
	return &Festival{cfg: cfg, radius: 1}
}

// Update advances the state machine one tick. The whole system is skipped
// when no entity carries a Mood.
func (f *Festival) Update(st *world.Store) {
	moods := st.Query(world.MaskMood)
	if len(moods) == 0 {
		return
	}
	f.tickCount++

	f.moodScratch = f.moodScratch[:0]
	for _, id := range moods {
		f.moodScratch = append(f.moodScratch, float64(st.Mood(id).Happiness))
	}
	avg := float32(stat.Mean(f.moodScratch, nil))

	if !f.active {
		f.updateInactive(st, avg)
	} else {
		f.updateActive(st, avg)
	}
}

func (f *Festival) updateInactive(st *world.Store, avg float32) {
	high := float32(f.cfg.HighThreshold)
	if avg <= high {
		f.streak = 0
		return
	}
	f.streak++
	if int(f.streak) < f.cfg.TriggerTicks {
		return
	}

	f.active = true
	f.endTick = f.tickCount + int64(f.cfg.DurationTicks)
	f.streak = 0
	f.angle = 0
	f.radius = 1

	dancers := 0
	f.scratch = st.QueryInto(f.scratch[:0], DancerEligible)
	for _, id := range f.scratch {
		st.CulturalTag(id).DancingSpiral = true
		dancers++
	}
	log.Info().Int64("end_tick", f.endTick).Int("dancers", dancers).
		Msg("festival begins")
}

func (f *Festival) updateActive(st *world.Store, avg float32) {
	low := float32(f.cfg.HighThreshold * f.cfg.HysteresisFraction)
	if f.tickCount >= f.endTick || avg < low {
		f.deactivate(st)
		return
	}
	f.choreograph(st)
}

func (f *Festival) deactivate(st *world.Store) {
	f.active = false
	f.scratch = st.QueryInto(f.scratch[:0], world.MaskCulturalTag)
	for _, id := range f.scratch {
		st.CulturalTag(id).DancingSpiral = false
	}
	log.Info().Int64("tick", f.tickCount).Msg("festival ends")
}

// choreograph steers every tagged dancer toward this tick's point on the
// expanding, rotating spiral.
func (f *Festival) choreograph(st *world.Store) {
	f.angle += float32(f.cfg.RotationStep)
	f.radius += float32(f.cfg.RadiusGrowth) / (f.radius + 1)
	if f.radius < 1 {
		f.radius = 1
	}
	height := float32(f.cfg.HeightAmplitude) * float32(math.Sin(
		float64(f.angle)*f.cfg.HeightAngleFreq+float64(f.tickCount)*f.cfg.HeightTickFreq))

	target := Vec3{
		X: float32(f.cfg.CenterX) + f.radius*float32(math.Cos(float64(f.angle))),
		Y: float32(f.cfg.CenterY) + height,
		Z: float32(f.cfg.CenterZ) + f.radius*float32(math.Sin(float64(f.angle))),
	}
	speed := float32(f.cfg.DanceSpeed)
	tol := float32(f.cfg.Tolerance)

	f.scratch = st.QueryInto(f.scratch[:0], DancerEligible)
	for _, id := range f.scratch {
		if !st.CulturalTag(id).DancingSpiral {
			continue
		}
		pos := st.Position(id)
		to := target.Sub(Vec3{pos.X, pos.Y, pos.Z})
		vel := st.Velocity(id)
		if to.Len() < tol {
			*vel = components.Velocity{}
			continue
		}
		dir := to.Normalized().Scale(speed)
		*vel = components.Velocity{X: dir.X, Y: dir.Y, Z: dir.Z}
	}
}

// Active reports whether a festival is running.
func (f *Festival) Active() bool { return f.active }

// State returns the four persisted scalars.
func (f *Festival) State() (streak int32, active bool, endTick, tickCount int64) {
	return f.streak, f.active, f.endTick, f.tickCount
}

// Restore replaces the persisted scalars, resetting the choreography.
func (f *Festival) Restore(streak int32, active bool, endTick, tickCount int64) {
	f.streak = streak
	f.active = active
	f.endTick = endTick
	f.tickCount = tickCount
	f.angle = 0
	f.radius = 1
}

// Reset returns the machine to its default-initialized state.
func (f *Festival) Reset() {
	f.Restore(0, false, 0, 0)
}
