// Package telemetry collects per-tick population statistics and writes
// them to CSV for offline analysis.
package telemetry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/murmur/world"
)

// Stats is one per-tick row of population statistics.
type Stats struct {
	Tick           int64   `csv:"tick"`
	Population     int     `csv:"population"`
	MeanMood       float64 `csv:"mean_mood"`
	StdDevMood     float64 `csv:"stddev_mood"`
	MeanEnergy     float64 `csv:"mean_energy"`
	FestivalActive bool    `csv:"festival_active"`
	Interactions   int     `csv:"interactions"`
}

// Collector computes stats between ticks and buffers rows for the output
// manager. The status readout polls Last; it never touches component state.
type Collector struct {
	out  *OutputManager
	rows []Stats
	last Stats

	moodScratch   []float64
	energyScratch []float64
	flushEvery    int
}

// NewCollector builds a collector. out may be nil (CSV output disabled).
func NewCollector(out *OutputManager, flushEvery int) *Collector {
	if flushEvery <= 0 {
		flushEvery = 50
	}
	return &Collector{out: out, flushEvery: flushEvery}
}

// Collect computes this tick's row. interactions is the social engine's
// applied-rule count for the tick.
func (c *Collector) Collect(st *world.Store, tick int64, festivalActive bool, interactions int) Stats {
	c.moodScratch = c.moodScratch[:0]
	c.energyScratch = c.energyScratch[:0]

	for _, id := range st.Query(world.MaskMood) {
		c.moodScratch = append(c.moodScratch, float64(st.Mood(id).Happiness))
	}
	for _, id := range st.Query(world.MaskEnergy) {
		c.energyScratch = append(c.energyScratch, float64(st.Energy(id).Current))
	}

	s := Stats{
		Tick:           tick,
		Population:     len(c.moodScratch),
		FestivalActive: festivalActive,
		Interactions:   interactions,
	}
	if len(c.moodScratch) > 0 {
		s.MeanMood = stat.Mean(c.moodScratch, nil)
		s.StdDevMood = stat.StdDev(c.moodScratch, nil)
	}
	if len(c.energyScratch) > 0 {
		s.MeanEnergy = stat.Mean(c.energyScratch, nil)
	}

	c.last = s
	if c.out != nil {
		c.rows = append(c.rows, s)
		if len(c.rows) >= c.flushEvery {
			c.Flush()
		}
	}
	return s
}

// Last returns the most recently collected row.
func (c *Collector) Last() Stats {
	return c.last
}

// Flush writes buffered rows to the output manager, if any.
func (c *Collector) Flush() {
	if c.out == nil || len(c.rows) == 0 {
		return
	}
	if err := c.out.AppendStats(c.rows); err == nil {
		c.rows = c.rows[:0]
	}
}

// Close flushes and closes the output manager.
func (c *Collector) Close() {
	c.Flush()
	if c.out != nil {
		c.out.Close()
	}
}
