package systems

import (
	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/world"
)

// SocialEligible is the component set an entity needs to take part in
// social interactions, as initiator or target.
const SocialEligible = world.MaskPosition | world.MaskEnergy | world.MaskMood

// SocialEngine evaluates the data-driven interaction rules each tick. It
// owns the relationship graph and the spatial broad-phase it queries.
//
// The matcher knows nothing about the rule vocabulary beyond the
// precondition and effect fields; new rules are config, not code.
type SocialEngine struct {
	rules     []config.SocialRule
	maxRadius float32
	graph     *RelationshipGraph
	grid      *SpatialGrid

	eligible   []uint32
	candidates []uint32
}

// NewSocialEngine builds the engine around an existing grid. maxRadius is
// the largest distance_lt of any rule; it bounds the broad-phase query.
func NewSocialEngine(rules []config.SocialRule, grid *SpatialGrid, maxRadius float32) *SocialEngine {
	return &SocialEngine{
		rules:     rules,
		maxRadius: maxRadius,
		graph:     NewRelationshipGraph(),
		grid:      grid,
	}
}

// Graph exposes the relationship graph for persistence and tests.
func (s *SocialEngine) Graph() *RelationshipGraph {
	return s.graph
}

// SetGraph swaps the relationship graph, used by snapshot restore.
func (s *SocialEngine) SetGraph(g *RelationshipGraph) {
	s.graph = g
}

// Update rebuilds the broad-phase and runs the rule matcher over every
// ordered (initiator, candidate) pair in range. Returns the number of rule
// applications, for telemetry.
func (s *SocialEngine) Update(st *world.Store) int {
	s.eligible = st.QueryInto(s.eligible[:0], SocialEligible)
	s.grid.Rebuild(st, s.eligible)

	if s.maxRadius <= 0 || len(s.rules) == 0 {
		return 0
	}

	applied := 0
	for _, initiator := range s.eligible {
		pos := *st.Position(initiator)
		s.candidates = s.grid.NeighborsInto(s.candidates[:0], initiator, pos, s.maxRadius)

		for _, target := range s.candidates {
			if s.interact(st, initiator, target) {
				applied++
			}
		}
	}
	return applied
}

// interact evaluates rules in declaration order for one ordered pair and
// applies the first match. At most one rule fires per pair per tick.
func (s *SocialEngine) interact(st *world.Store, initiator, target uint32) bool {
	ip := st.Position(initiator)
	tp := st.Position(target)
	dx := ip.X - tp.X
	dy := ip.Y - tp.Y
	dz := ip.Z - tp.Z
	distSq := dx*dx + dy*dy + dz*dz

	for i := range s.rules {
		rule := &s.rules[i]
		if rule.DistanceLT != nil {
			limit := float32(*rule.DistanceLT)
			if distSq >= limit*limit {
				continue
			}
		}
		if rule.RelationshipGT != nil {
			if s.graph.Weight(initiator, target) <= float32(*rule.RelationshipGT) {
				continue
			}
		}

		s.apply(st, rule, initiator, target)
		return true
	}
	return false
}

func (s *SocialEngine) apply(st *world.Store, rule *config.SocialRule, initiator, target uint32) {
	if rule.InitiatorEnergyChange != 0 {
		e := st.Energy(initiator)
		e.Current = clamp(e.Current+float32(rule.InitiatorEnergyChange), 0, e.Max)
	}
	if rule.TargetMoodChange != 0 {
		m := st.Mood(target)
		m.Happiness = clampUnit(m.Happiness + float32(rule.TargetMoodChange))
	}
	if rule.RelationshipChange != 0 {
		s.graph.Adjust(initiator, target, float32(rule.RelationshipChange))
	}
}
