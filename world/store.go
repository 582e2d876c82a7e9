// Package world owns entity identity and the component store.
//
// Components live in flat per-component slices indexed by entity id.
// Membership is tracked by a per-entity bitmask; reading a slot for an id
// that does not hold the component is a don't-care, never a fault. Callers
// discover valid ids through Query.
package world

import "github.com/pthm-cable/murmur/components"

// Mask is a set of component kinds.
type Mask uint16

const (
	MaskPosition Mask = 1 << iota
	MaskVelocity
	MaskGenome
	MaskPhenotype
	MaskStomach
	MaskEnergy
	MaskMood
	MaskCulturalTag
)

// initialCapacity sizes backing slices before the first growth.
const initialCapacity = 256

// Store holds the component arrays. All slices share the same length and
// are indexed by entity id.
type Store struct {
	masks []Mask

	positions  []components.Position
	velocities []components.Velocity
	genomes    []components.Genome
	phenotypes []components.Phenotype
	stomachs   []components.Stomach
	energies   []components.Energy
	moods      []components.Mood
	tags       []components.CulturalTag
}

func newStore() *Store {
	return &Store{
		masks:      make([]Mask, 0, initialCapacity),
		positions:  make([]components.Position, 0, initialCapacity),
		velocities: make([]components.Velocity, 0, initialCapacity),
		genomes:    make([]components.Genome, 0, initialCapacity),
		phenotypes: make([]components.Phenotype, 0, initialCapacity),
		stomachs:   make([]components.Stomach, 0, initialCapacity),
		energies:   make([]components.Energy, 0, initialCapacity),
		moods:      make([]components.Mood, 0, initialCapacity),
		tags:       make([]components.CulturalTag, 0, initialCapacity),
	}
}

// grow extends every array to cover id. Append handles amortized doubling.
func (s *Store) grow(id uint32) {
	for uint32(len(s.masks)) <= id {
		s.masks = append(s.masks, 0)
		s.positions = append(s.positions, components.Position{})
		s.velocities = append(s.velocities, components.Velocity{})
		s.genomes = append(s.genomes, components.Genome{})
		s.phenotypes = append(s.phenotypes, components.Phenotype{})
		s.stomachs = append(s.stomachs, components.Stomach{})
		s.energies = append(s.energies, components.Energy{})
		s.moods = append(s.moods, components.Mood{})
		s.tags = append(s.tags, components.CulturalTag{})
	}
}

// Has reports whether id holds every component in mask.
func (s *Store) Has(id uint32, mask Mask) bool {
	if id >= uint32(len(s.masks)) {
		return false
	}
	return s.masks[id]&mask == mask
}

// MaskOf returns the component mask for id.
func (s *Store) MaskOf(id uint32) Mask {
	if id >= uint32(len(s.masks)) {
		return 0
	}
	return s.masks[id]
}

// Len returns the number of id slots currently backed by the arrays.
func (s *Store) Len() int {
	return len(s.masks)
}

// Query returns all ids holding every component in mask, in ascending id
// order. The result is recomputed on every call; it is stable within a tick
// because no system creates entities mid-tick.
func (s *Store) Query(mask Mask) []uint32 {
	ids := make([]uint32, 0, len(s.masks))
	for id := range s.masks {
		if s.masks[id]&mask == mask {
			ids = append(ids, uint32(id))
		}
	}
	return ids
}

// QueryInto is Query appending into dst, for tick-hot callers that reuse a
// scratch slice.
func (s *Store) QueryInto(dst []uint32, mask Mask) []uint32 {
	for id := range s.masks {
		if s.masks[id]&mask == mask {
			dst = append(dst, uint32(id))
		}
	}
	return dst
}

// Count returns how many ids hold every component in mask.
func (s *Store) Count(mask Mask) int {
	n := 0
	for id := range s.masks {
		if s.masks[id]&mask == mask {
			n++
		}
	}
	return n
}

// AttachPosition attaches (or overwrites) a Position on id.
func (s *Store) AttachPosition(id uint32, v components.Position) {
	s.grow(id)
	s.positions[id] = v
	s.masks[id] |= MaskPosition
}

// AttachVelocity attaches (or overwrites) a Velocity on id.
func (s *Store) AttachVelocity(id uint32, v components.Velocity) {
	s.grow(id)
	s.velocities[id] = v
	s.masks[id] |= MaskVelocity
}

// AttachGenome attaches (or overwrites) a Genome on id.
func (s *Store) AttachGenome(id uint32, v components.Genome) {
	s.grow(id)
	s.genomes[id] = v
	s.masks[id] |= MaskGenome
}

// AttachPhenotype attaches (or overwrites) a Phenotype on id.
func (s *Store) AttachPhenotype(id uint32, v components.Phenotype) {
	s.grow(id)
	s.phenotypes[id] = v
	s.masks[id] |= MaskPhenotype
}

// AttachStomach attaches (or overwrites) a Stomach on id.
func (s *Store) AttachStomach(id uint32, v components.Stomach) {
	s.grow(id)
	s.stomachs[id] = v
	s.masks[id] |= MaskStomach
}

// AttachEnergy attaches (or overwrites) an Energy on id.
func (s *Store) AttachEnergy(id uint32, v components.Energy) {
	s.grow(id)
	s.energies[id] = v
	s.masks[id] |= MaskEnergy
}

// AttachMood attaches (or overwrites) a Mood on id.
func (s *Store) AttachMood(id uint32, v components.Mood) {
	s.grow(id)
	s.moods[id] = v
	s.masks[id] |= MaskMood
}

// AttachCulturalTag attaches (or overwrites) a CulturalTag on id.
func (s *Store) AttachCulturalTag(id uint32, v components.CulturalTag) {
	s.grow(id)
	s.tags[id] = v
	s.masks[id] |= MaskCulturalTag
}

// Pointer accessors for direct indexed read/write. The id must come from a
// query that included the component.

func (s *Store) Position(id uint32) *components.Position    { return &s.positions[id] }
func (s *Store) Velocity(id uint32) *components.Velocity    { return &s.velocities[id] }
func (s *Store) Genome(id uint32) *components.Genome        { return &s.genomes[id] }
func (s *Store) Phenotype(id uint32) *components.Phenotype  { return &s.phenotypes[id] }
func (s *Store) Stomach(id uint32) *components.Stomach      { return &s.stomachs[id] }
func (s *Store) Energy(id uint32) *components.Energy        { return &s.energies[id] }
func (s *Store) Mood(id uint32) *components.Mood            { return &s.moods[id] }
func (s *Store) CulturalTag(id uint32) *components.CulturalTag { return &s.tags[id] }
