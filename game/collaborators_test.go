package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStateCoversPopulation(t *testing.T) {
	e := testEngine(t)

	instances := e.RenderState()
	require.Len(t, instances, 60)
	for _, inst := range instances {
		assert.Greater(t, inst.Phenotype.Size, float32(0), "entity %d", inst.ID)
	}
}

func TestReadoutTracksCollectedStats(t *testing.T) {
	e := testEngine(t)

	r := e.Readout()
	assert.EqualValues(t, 0, r.Tick, "no tick collected yet")

	e.StepOnce()
	r = e.Readout()
	assert.EqualValues(t, 1, r.Tick)
	assert.Equal(t, 60, r.Entities)
	assert.False(t, r.FestivalActive)
}

func TestAdvisorySurfacesKernelFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Flocking.Workers = 1 // worker pools need at least two workers

	e := New(cfg, Options{Seed: 1})
	t.Cleanup(e.Close)
	assert.Contains(t, e.LastAdvisory(), "CPU fallback")

	// The run continues on the serial path.
	e.StepOnce()
	assert.EqualValues(t, 1, e.Tick())
}
