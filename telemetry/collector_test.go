package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/world"
)

func statsWorld() *world.World {
	w := world.New()
	for _, h := range []float32{0.2, 0.4, 0.6} {
		id := w.CreateEntity()
		w.AttachMood(id, components.Mood{Happiness: h})
		w.AttachEnergy(id, components.Energy{Current: 50, Max: 100})
	}
	return w
}

func TestCollectComputesPopulationStats(t *testing.T) {
	w := statsWorld()
	c := NewCollector(nil, 0)

	s := c.Collect(w.Store, 7, true, 3)
	if s.Tick != 7 || s.Population != 3 || !s.FestivalActive || s.Interactions != 3 {
		t.Fatalf("row = %+v", s)
	}
	if math.Abs(s.MeanMood-0.4) > 1e-6 {
		t.Errorf("mean mood = %v, want 0.4", s.MeanMood)
	}
	if s.StdDevMood <= 0 {
		t.Errorf("stddev mood = %v, want > 0", s.StdDevMood)
	}
	if s.MeanEnergy != 50 {
		t.Errorf("mean energy = %v, want 50", s.MeanEnergy)
	}
	if got := c.Last(); got != s {
		t.Error("Last() should return the collected row")
	}
}

func TestCollectEmptyWorld(t *testing.T) {
	c := NewCollector(nil, 0)
	s := c.Collect(world.New().Store, 1, false, 0)
	if s.Population != 0 || s.MeanMood != 0 || s.MeanEnergy != 0 {
		t.Fatalf("row = %+v, want zeros", s)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	w := statsWorld()
	c := NewCollector(om, 2)
	c.Collect(w.Store, 1, false, 0)
	c.Collect(w.Store, 2, false, 0) // flushEvery reached
	c.Collect(w.Store, 3, false, 0)
	c.Close()

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("reading stats.csv: %v", err)
	}
	out := string(data)
	if got := strings.Count(out, "mean_mood"); got != 1 {
		t.Errorf("header written %d times, want 1", got)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Errorf("csv has %d lines, want header + 3 rows", len(lines))
	}
}

func TestNilOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}
	// All methods tolerate the disabled (nil) manager.
	if err := om.AppendStats([]Stats{{Tick: 1}}); err != nil {
		t.Errorf("AppendStats on nil: %v", err)
	}
	if om.Dir() != "" {
		t.Error("Dir on nil should be empty")
	}
	om.Close()
}
