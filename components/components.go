// Package components defines the component vocabulary for the simulation.
package components

// MinPhenotypeSize is the floor applied to Phenotype.Size after any mutation.
const MinPhenotypeSize = 0.1

// FoodType identifies a digestion rule. Zero means "no food".
type FoodType uint8

// FoodNone marks an empty stomach slot.
const FoodNone FoodType = 0

// Position is an entity's world-space location.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Velocity is an entity's per-tick displacement rate.
type Velocity struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Genome is a placeholder lineage identifier.
type Genome struct {
	ID uint32 `json:"id"`
}

// Phenotype holds visual/physical traits. Color channels stay in [0,1],
// Size stays >= MinPhenotypeSize. Diet shifts these over time.
type Phenotype struct {
	R    float32 `json:"r"`
	G    float32 `json:"g"`
	B    float32 `json:"b"`
	Size float32 `json:"size"`
}

// Stomach is a single-slot pending meal. A successful forage overwrites
// any unconsumed contents; digestion empties the slot entirely.
type Stomach struct {
	FoodType FoodType `json:"food_type"`
	Amount   float32  `json:"amount"`
}

// Empty reports whether there is nothing to digest.
func (s Stomach) Empty() bool {
	return s.FoodType == FoodNone || s.Amount <= 0
}

// Energy is the metabolic reserve. Current stays in [0, Max].
type Energy struct {
	Current float32 `json:"current"`
	Max     float32 `json:"max"`
}

// Mood is the emotional scalar driving social and festival logic.
// Happiness stays in [-1, 1].
type Mood struct {
	Happiness float32 `json:"happiness"`
}

// CulturalTag flags festival participation.
type CulturalTag struct {
	DancingSpiral bool `json:"dancing_spiral"`
}
