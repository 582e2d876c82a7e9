package systems

import (
	"testing"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/world"
)

func fptr(v float64) *float64 { return &v }

func socialWorld(sep float32) (*world.World, uint32, uint32) {
	w := world.New()
	a := w.CreateEntity()
	b := w.CreateEntity()
	for _, id := range []uint32{a, b} {
		w.AttachEnergy(id, components.Energy{Current: 50, Max: 100})
		w.AttachMood(id, components.Mood{})
	}
	w.AttachPosition(a, components.Position{})
	w.AttachPosition(b, components.Position{X: sep})
	return w, a, b
}

func newTestEngine(rules []config.SocialRule) *SocialEngine {
	maxRadius := float32(0)
	for _, r := range rules {
		if r.DistanceLT != nil && float32(*r.DistanceLT) > maxRadius {
			maxRadius = float32(*r.DistanceLT)
		}
	}
	grid := NewSpatialGrid(50, 50, 50, maxRadius+1)
	return NewSocialEngine(rules, grid, maxRadius)
}

func TestRuleAppliesOncePerOrderedPair(t *testing.T) {
	rules := []config.SocialRule{{
		Verb:                  "greet",
		DistanceLT:            fptr(5),
		InitiatorEnergyChange: -1,
		TargetMoodChange:      0.1,
		RelationshipChange:    0.2,
	}}
	w, a, b := socialWorld(3)
	eng := newTestEngine(rules)

	applied := eng.Update(w.Store)
	// Both ordered pairs (a,b) and (b,a) interact.
	if applied != 2 {
		t.Fatalf("applied = %d, want 2", applied)
	}
	if got := w.Energy(a).Current; got != 49 {
		t.Errorf("initiator a energy = %v, want 49", got)
	}
	if got := w.Mood(b).Happiness; got != 0.1 {
		t.Errorf("target b mood = %v, want 0.1", got)
	}
}

func TestRelationshipDeltaSymmetric(t *testing.T) {
	rules := []config.SocialRule{{
		Verb:               "bond",
		DistanceLT:         fptr(5),
		RelationshipChange: 0.25,
	}}
	w, a, b := socialWorld(3)
	eng := newTestEngine(rules)
	eng.Update(w.Store)

	// Two ordered pairs fired, each adding 0.25 symmetrically.
	ab := eng.Graph().Weight(a, b)
	ba := eng.Graph().Weight(b, a)
	if ab != ba {
		t.Fatalf("asymmetric weights: %v vs %v", ab, ba)
	}
	if ab != 0.5 {
		t.Errorf("weight = %v, want 0.5", ab)
	}
}

func TestRelationshipPreconditionStrict(t *testing.T) {
	rules := []config.SocialRule{{
		Verb:             "groom",
		DistanceLT:       fptr(5),
		RelationshipGT:   fptr(0.2),
		TargetMoodChange: 0.1,
	}}
	w, a, b := socialWorld(3)
	eng := newTestEngine(rules)

	eng.Graph().Set(a, b, 0.2) // not strictly greater
	if applied := eng.Update(w.Store); applied != 0 {
		t.Fatalf("rule fired at weight == threshold, applied = %d", applied)
	}

	eng.Graph().Set(a, b, 0.21)
	if applied := eng.Update(w.Store); applied != 2 {
		t.Fatalf("rule should fire above threshold, applied = %d", applied)
	}
}

func TestDistancePreconditionStrict(t *testing.T) {
	rules := []config.SocialRule{{
		Verb:             "greet",
		DistanceLT:       fptr(3),
		TargetMoodChange: 0.1,
	}}
	w, _, _ := socialWorld(3) // exactly at the limit
	eng := newTestEngine(rules)
	if applied := eng.Update(w.Store); applied != 0 {
		t.Fatalf("rule fired at exactly distance_lt, applied = %d", applied)
	}
}

func TestFirstMatchingRuleWins(t *testing.T) {
	rules := []config.SocialRule{
		{Verb: "first", DistanceLT: fptr(5), TargetMoodChange: 0.1},
		{Verb: "second", DistanceLT: fptr(5), TargetMoodChange: 0.7},
	}
	w, _, b := socialWorld(3)
	eng := newTestEngine(rules)
	eng.Update(w.Store)

	// Only the first rule may fire per pair: b gains 0.1 once, from
	// initiator a.
	if got := w.Mood(b).Happiness; got != 0.1 {
		t.Errorf("mood = %v, want 0.1 (first rule only)", got)
	}
}

func TestEffectClamps(t *testing.T) {
	rules := []config.SocialRule{{
		Verb:                  "drain",
		DistanceLT:            fptr(5),
		InitiatorEnergyChange: -500,
		TargetMoodChange:      5,
		RelationshipChange:    3,
	}}
	w, a, b := socialWorld(3)
	eng := newTestEngine(rules)
	eng.Update(w.Store)

	if got := w.Energy(a).Current; got != 0 {
		t.Errorf("energy = %v, want clamp at 0", got)
	}
	if got := w.Mood(b).Happiness; got != 1 {
		t.Errorf("mood = %v, want clamp at 1", got)
	}
	if got := eng.Graph().Weight(a, b); got != 1 {
		t.Errorf("relationship = %v, want clamp at 1", got)
	}
}

func TestGraphWeightDefaultsToZero(t *testing.T) {
	g := NewRelationshipGraph()
	if got := g.Weight(1, 2); got != 0 {
		t.Errorf("unknown pair weight = %v, want 0", got)
	}
	g.Adjust(1, 2, -0.4)
	if got := g.Weight(2, 1); got != -0.4 {
		t.Errorf("reverse lookup = %v, want -0.4", got)
	}
	g.Adjust(1, 2, -5)
	if got := g.Weight(1, 2); got != -1 {
		t.Errorf("weight = %v, want clamp at -1", got)
	}
}
