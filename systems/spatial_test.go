package systems

import (
	"testing"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/world"
)

func TestCellOfFloors(t *testing.T) {
	g := NewSpatialGrid(50, 50, 50, 10)

	cx, cy, cz := g.CellOf(components.Position{X: -50, Y: -50, Z: -50})
	if cx != 0 || cy != 0 || cz != 0 {
		t.Errorf("min corner cell = (%d,%d,%d), want (0,0,0)", cx, cy, cz)
	}

	cx, _, _ = g.CellOf(components.Position{X: -41})
	if cx != 0 {
		t.Errorf("x=-41 cell = %d, want 0", cx)
	}
	cx, _, _ = g.CellOf(components.Position{X: -40})
	if cx != 1 {
		t.Errorf("x=-40 cell = %d, want 1", cx)
	}
}

func TestCellOfClampsOutOfBounds(t *testing.T) {
	g := NewSpatialGrid(50, 50, 50, 10)
	cx, cy, cz := g.CellOf(components.Position{X: 999, Y: -999, Z: 999})
	if cx != g.nx-1 || cy != 0 || cz != g.nz-1 {
		t.Errorf("out-of-bounds cell = (%d,%d,%d)", cx, cy, cz)
	}
}

func TestNeighborsExcludesSelfAndFindsAdjacent(t *testing.T) {
	w := world.New()
	a := w.CreateEntity()
	b := w.CreateEntity()
	c := w.CreateEntity()
	w.AttachPosition(a, components.Position{X: 0, Y: 0, Z: 0})
	w.AttachPosition(b, components.Position{X: 8, Y: 0, Z: 0}) // adjacent cell
	w.AttachPosition(c, components.Position{X: 45, Y: 45, Z: 45})

	g := NewSpatialGrid(50, 50, 50, 10)
	g.Rebuild(w.Store, []uint32{a, b, c})

	got := g.NeighborsInto(nil, a, *w.Position(a), 10)

	seen := map[uint32]int{}
	for _, id := range got {
		seen[id]++
		if id == a {
			t.Error("candidate list contains self")
		}
	}
	if seen[b] != 1 {
		t.Errorf("expected b exactly once, got %d", seen[b])
	}
	if seen[c] != 0 {
		t.Errorf("far entity c should not be a candidate, got %d", seen[c])
	}
}

func TestRebuildClearsPreviousTick(t *testing.T) {
	w := world.New()
	a := w.CreateEntity()
	b := w.CreateEntity()
	w.AttachPosition(a, components.Position{})
	w.AttachPosition(b, components.Position{X: 2})

	g := NewSpatialGrid(50, 50, 50, 10)
	g.Rebuild(w.Store, []uint32{a, b})

	// Next tick only a is eligible; b must vanish from candidates.
	g.Rebuild(w.Store, []uint32{a})
	got := g.NeighborsInto(nil, a, *w.Position(a), 10)
	if len(got) != 0 {
		t.Errorf("stale occupants after rebuild: %v", got)
	}
}

func TestNeighborsNoDuplicates(t *testing.T) {
	w := world.New()
	a := w.CreateEntity()
	b := w.CreateEntity()
	w.AttachPosition(a, components.Position{X: 49, Y: 49, Z: 49}) // corner cell
	w.AttachPosition(b, components.Position{X: 47, Y: 47, Z: 47})

	g := NewSpatialGrid(50, 50, 50, 10)
	g.Rebuild(w.Store, []uint32{a, b})

	// A radius reaching far past the grid edge must still visit each cell
	// at most once.
	got := g.NeighborsInto(nil, a, *w.Position(a), 40)
	count := 0
	for _, id := range got {
		if id == b {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected b exactly once, got %d", count)
	}
}
