package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/world"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Population.Initial = 60
	cfg.Flocking.Workers = 2
	return cfg
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(testConfig(t), Options{Seed: 42})
	t.Cleanup(e.Close)
	return e
}

func TestFirstAdvanceOnlyAnchorsClock(t *testing.T) {
	e := testEngine(t)
	t0 := time.Now()

	assert.False(t, e.Advance(t0))
	assert.EqualValues(t, 0, e.Tick())
}

func TestAdvanceRunsAtMostOneTickPerCall(t *testing.T) {
	e := testEngine(t)
	t0 := time.Now()
	e.Advance(t0)

	// 350ms late covers three intervals, but a single callback may only
	// run one tick; the backlog drains over subsequent callbacks.
	late := t0.Add(350 * time.Millisecond)
	assert.True(t, e.Advance(late))
	assert.EqualValues(t, 1, e.Tick())

	assert.True(t, e.Advance(late))
	assert.True(t, e.Advance(late))
	assert.EqualValues(t, 3, e.Tick())
	assert.False(t, e.Advance(late))
}

func TestAdvanceCarriesRemainder(t *testing.T) {
	e := testEngine(t)
	t0 := time.Now()
	e.Advance(t0)

	assert.True(t, e.Advance(t0.Add(150*time.Millisecond)))
	// 50ms of remainder carried: the next tick is due at t0+200ms.
	assert.False(t, e.Advance(t0.Add(190*time.Millisecond)))
	assert.True(t, e.Advance(t0.Add(210*time.Millisecond)))
	assert.EqualValues(t, 2, e.Tick())
}

func TestAdvanceBelowIntervalDoesNothing(t *testing.T) {
	e := testEngine(t)
	t0 := time.Now()
	e.Advance(t0)

	assert.False(t, e.Advance(t0.Add(99*time.Millisecond)))
	assert.EqualValues(t, 0, e.Tick())
}

func TestStateStaysBoundedOverManyTicks(t *testing.T) {
	e := testEngine(t)
	for i := 0; i < 50; i++ {
		e.StepOnce()
	}

	w := e.World()
	cfg := e.cfg
	for _, id := range w.Live() {
		if w.Has(id, world.MaskEnergy) {
			en := w.Energy(id)
			assert.GreaterOrEqual(t, en.Current, float32(0), "entity %d", id)
			assert.LessOrEqual(t, en.Current, en.Max, "entity %d", id)
		}
		if w.Has(id, world.MaskMood) {
			m := w.Mood(id).Happiness
			assert.GreaterOrEqual(t, m, float32(-1), "entity %d", id)
			assert.LessOrEqual(t, m, float32(1), "entity %d", id)
		}
		if w.Has(id, world.MaskPosition) {
			p := w.Position(id)
			assert.LessOrEqual(t, absf(p.X), cfg.Derived.HalfX, "entity %d", id)
			assert.LessOrEqual(t, absf(p.Y), cfg.Derived.HalfY, "entity %d", id)
			assert.LessOrEqual(t, absf(p.Z), cfg.Derived.HalfZ, "entity %d", id)
		}
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestSnapshotRoundTripPreservesState(t *testing.T) {
	e := testEngine(t)
	for i := 0; i < 10; i++ {
		e.StepOnce()
	}
	e.Social().Graph().Set(0, 1, 0.5)

	snap := e.CaptureSnapshot()
	before := e.World().Len()

	// Diverge, then restore.
	for i := 0; i < 5; i++ {
		e.StepOnce()
	}
	require.NoError(t, e.RestoreSnapshot(snap))

	assert.Equal(t, before, e.World().Len())
	assert.Equal(t, float32(0.5), e.Social().Graph().Weight(0, 1))
}

func TestResetToDefaultsRespawns(t *testing.T) {
	e := testEngine(t)
	for i := 0; i < 5; i++ {
		e.StepOnce()
	}
	e.Social().Graph().Set(0, 1, 0.9)

	e.ResetToDefaults()
	assert.Equal(t, 60, e.World().Len())
	assert.EqualValues(t, 0, e.Tick())
	assert.Zero(t, e.Social().Graph().Len())
	assert.False(t, e.Festival().Active())
	assert.NotEmpty(t, e.LastAdvisory())
}

func TestSetFlockingParamsTakesEffect(t *testing.T) {
	e := testEngine(t)

	p := e.FlockingParams()
	p.MaxSpeed = 0 // freeze everyone
	e.SetFlockingParams(p)
	assert.Equal(t, float32(0), e.FlockingParams().MaxSpeed)

	w := e.World()
	ids := w.Query(MovementEligible)
	require.NotEmpty(t, ids)
	before := *w.Position(ids[0])

	e.StepOnce()
	after := *w.Position(ids[0])
	assert.Equal(t, before, after, "max speed 0 must stop all movement")
}

func TestSpawnAttachesFullComponentSet(t *testing.T) {
	e := testEngine(t)
	w := e.World()
	assert.Equal(t, 60, w.Len())

	full := world.MaskPosition | world.MaskVelocity | world.MaskGenome |
		world.MaskPhenotype | world.MaskStomach | world.MaskEnergy |
		world.MaskMood | world.MaskCulturalTag
	for _, id := range w.Live() {
		assert.Equal(t, full, w.MaskOf(id), "entity %d", id)
	}
}
