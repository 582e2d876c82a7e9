package persistence

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/systems"
	"github.com/pthm-cable/murmur/world"
)

// Capture copies the full simulation state into a snapshot. It must only
// be called between ticks; a full tick is the unit of consistency.
func Capture(w *world.World, graph *systems.RelationshipGraph, fest *systems.Festival) *Snapshot {
	live := w.Live()

	snap := &Snapshot{
		Version:      SnapshotVersion,
		SaveID:       uuid.NewString(),
		SavedAt:      time.Now().UTC(),
		NextEntityID: w.NextID(),
		Entities:     live,
		Deleted:      append([]uint32(nil), w.Deleted()...),
		Components:   captureComponents(w.Store, live),
		Social:       captureSocial(graph),
	}

	streak, active, endTick, tickCount := fest.State()
	snap.Festival = &FestivalState{
		Streak:    streak,
		Active:    active,
		EndTick:   endTick,
		TickCount: tickCount,
	}
	return snap
}

func captureComponents(st *world.Store, live []uint32) ComponentState {
	n := len(live)
	cs := ComponentState{
		Masks:      make([]uint16, n),
		Positions:  make([]components.Position, n),
		Velocities: make([]components.Velocity, n),
		Genomes:    make([]components.Genome, n),
		Phenotypes: make([]components.Phenotype, n),
		Stomachs:   make([]components.Stomach, n),
		Energies:   make([]components.Energy, n),
		Moods:      make([]components.Mood, n),
		Tags:       make([]components.CulturalTag, n),
	}
	for k, id := range live {
		cs.Masks[k] = uint16(st.MaskOf(id))
		cs.Positions[k] = *st.Position(id)
		cs.Velocities[k] = *st.Velocity(id)
		cs.Genomes[k] = *st.Genome(id)
		cs.Phenotypes[k] = *st.Phenotype(id)
		cs.Stomachs[k] = *st.Stomach(id)
		cs.Energies[k] = *st.Energy(id)
		cs.Moods[k] = *st.Mood(id)
		cs.Tags[k] = *st.CulturalTag(id)
	}
	return cs
}

func captureSocial(graph *systems.RelationshipGraph) *SocialState {
	byID := make(map[uint32][]RelationshipEdge)
	for _, e := range graph.Edges() {
		byID[e.A] = append(byID[e.A], RelationshipEdge{Target: e.B, Weight: e.Weight})
	}

	ids := make([]uint32, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	state := &SocialState{Relationships: make([]RelationshipAdjacency, 0, len(ids))}
	for _, id := range ids {
		edges := byID[id]
		sort.Slice(edges, func(i, j int) bool { return edges[i].Target < edges[j].Target })
		state.Relationships = append(state.Relationships, RelationshipAdjacency{ID: id, Edges: edges})
	}
	return state
}

// Rebuild constructs a fresh world from the snapshot's component arrays.
// Returned is the new world and the old-id to new-id map every other
// restored substructure must be remapped through.
func (s *Snapshot) Rebuild() (*world.World, map[uint32]uint32, error) {
	n := len(s.Entities)
	if len(s.Components.Masks) != n {
		return nil, nil, eris.New("snapshot component arrays do not match entity list")
	}

	w := world.New()
	remap := make(map[uint32]uint32, n)

	for k, oldID := range s.Entities {
		newID := w.CreateEntity()
		remap[oldID] = newID

		mask := world.Mask(s.Components.Masks[k])
		if mask&world.MaskPosition != 0 && k < len(s.Components.Positions) {
			w.AttachPosition(newID, s.Components.Positions[k])
		}
		if mask&world.MaskVelocity != 0 && k < len(s.Components.Velocities) {
			w.AttachVelocity(newID, s.Components.Velocities[k])
		}
		if mask&world.MaskGenome != 0 && k < len(s.Components.Genomes) {
			w.AttachGenome(newID, s.Components.Genomes[k])
		}
		if mask&world.MaskPhenotype != 0 && k < len(s.Components.Phenotypes) {
			w.AttachPhenotype(newID, s.Components.Phenotypes[k])
		}
		if mask&world.MaskStomach != 0 && k < len(s.Components.Stomachs) {
			w.AttachStomach(newID, s.Components.Stomachs[k])
		}
		if mask&world.MaskEnergy != 0 && k < len(s.Components.Energies) {
			w.AttachEnergy(newID, s.Components.Energies[k])
		}
		if mask&world.MaskMood != 0 && k < len(s.Components.Moods) {
			w.AttachMood(newID, s.Components.Moods[k])
		}
		if mask&world.MaskCulturalTag != 0 && k < len(s.Components.Tags) {
			w.AttachCulturalTag(newID, s.Components.Tags[k])
		}
	}
	return w, remap, nil
}

// RestoreGraph rebuilds the relationship graph under the id remap. A nil
// social section yields an empty (default) graph. Edges referencing ids
// missing from the remap are skipped.
func (s *Snapshot) RestoreGraph(remap map[uint32]uint32) *systems.RelationshipGraph {
	graph := systems.NewRelationshipGraph()
	if s.Social == nil {
		return graph
	}
	for _, adj := range s.Social.Relationships {
		a, ok := remap[adj.ID]
		if !ok {
			continue
		}
		for _, e := range adj.Edges {
			b, ok := remap[e.Target]
			if !ok {
				continue
			}
			graph.Set(a, b, e.Weight)
		}
	}
	return graph
}

// RestoreFestival applies the festival section to fest, or resets it to
// defaults when the section is missing.
func (s *Snapshot) RestoreFestival(fest *systems.Festival) {
	if s.Festival == nil {
		fest.Reset()
		return
	}
	fest.Restore(s.Festival.Streak, s.Festival.Active, s.Festival.EndTick, s.Festival.TickCount)
}
