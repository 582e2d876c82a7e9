// Package persistence saves and restores the full simulation state as a
// single deflate-compressed JSON blob kept under a fixed key in a
// redis-protocol key-value store (in-process by default).
//
// Entity ids are positional and not stable across save/load: restore
// allocates fresh ids and threads an explicit old-id to new-id map through
// every component array and the relationship graph.
package persistence

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/pthm-cable/murmur/components"
)

// SnapshotVersion is incremented when the blob format changes.
const SnapshotVersion = 1

// Snapshot holds the complete persisted simulation state.
type Snapshot struct {
	Version int       `json:"version"`
	SaveID  string    `json:"save_id"`
	SavedAt time.Time `json:"saved_at"`

	NextEntityID uint32   `json:"next_entity_id"`
	Entities     []uint32 `json:"entities"`
	Deleted      []uint32 `json:"deleted"`

	Components ComponentState `json:"components"`

	// Social and Festival are optional: a snapshot missing either section
	// restores that subsystem to its defaults instead of failing the load.
	Social   *SocialState   `json:"social,omitempty"`
	Festival *FestivalState `json:"festival,omitempty"`
}

// ComponentState carries the per-component field arrays, sliced to the
// live-id range: index k in every array belongs to Entities[k]. Masks
// records which components each entity actually holds.
type ComponentState struct {
	Masks      []uint16                 `json:"masks"`
	Positions  []components.Position    `json:"positions"`
	Velocities []components.Velocity    `json:"velocities"`
	Genomes    []components.Genome      `json:"genomes"`
	Phenotypes []components.Phenotype   `json:"phenotypes"`
	Stomachs   []components.Stomach     `json:"stomachs"`
	Energies   []components.Energy      `json:"energies"`
	Moods      []components.Mood        `json:"moods"`
	Tags       []components.CulturalTag `json:"cultural_tags"`
}

// SocialState is the relationship graph section.
type SocialState struct {
	Relationships []RelationshipAdjacency `json:"relationships"`
}

// FestivalState is the four festival scalars.
type FestivalState struct {
	Streak    int32 `json:"streak"`
	Active    bool  `json:"active"`
	EndTick   int64 `json:"end_tick"`
	TickCount int64 `json:"tick_count"`
}

// RelationshipEdge is one weighted edge out of an adjacency entry.
type RelationshipEdge struct {
	Target uint32
	Weight float32
}

// RelationshipAdjacency is one entity's stored edges. On the wire it is
// the pair form [id, [[target, weight], ...]].
type RelationshipAdjacency struct {
	ID    uint32
	Edges []RelationshipEdge
}

// MarshalJSON emits [id, [[target, weight], ...]].
func (a RelationshipAdjacency) MarshalJSON() ([]byte, error) {
	pairs := make([][2]float64, len(a.Edges))
	for i, e := range a.Edges {
		pairs[i] = [2]float64{float64(e.Target), float64(e.Weight)}
	}
	return json.Marshal([]any{a.ID, pairs})
}

// UnmarshalJSON parses the pair form emitted by MarshalJSON.
func (a *RelationshipAdjacency) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "relationship adjacency")
	}
	if len(raw) != 2 {
		return eris.New("relationship adjacency: expected [id, edges] pair")
	}
	if err := json.Unmarshal(raw[0], &a.ID); err != nil {
		return eris.Wrap(err, "relationship adjacency id")
	}
	var pairs [][2]float64
	if err := json.Unmarshal(raw[1], &pairs); err != nil {
		return eris.Wrap(err, "relationship adjacency edges")
	}
	a.Edges = make([]RelationshipEdge, len(pairs))
	for i, p := range pairs {
		a.Edges[i] = RelationshipEdge{Target: uint32(p[0]), Weight: float32(p[1])}
	}
	return nil
}
