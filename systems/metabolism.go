package systems

import (
	"math/rand"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/world"
)

// DigestEligible is the component set required for digestion side effects.
const DigestEligible = world.MaskEnergy | world.MaskStomach | world.MaskMood | world.MaskPhenotype

// Metabolism applies the basal energy drain and digests pending stomach
// contents against the food-type rule table.
type Metabolism struct {
	basalRate float32
	rules     map[components.FoodType]config.DigestionRule

	scratch []uint32
}

// NewMetabolism builds the system from config. Duplicate food types keep
// the last rule, matching plain map semantics.
func NewMetabolism(cfg config.MetabolismConfig) *Metabolism {
	rules := make(map[components.FoodType]config.DigestionRule, len(cfg.Digestion))
	for _, r := range cfg.Digestion {
		rules[components.FoodType(r.FoodType)] = r
	}
	return &Metabolism{
		basalRate: float32(cfg.BasalRate),
		rules:     rules,
	}
}

// Update runs one tick of metabolism over all eligible entities.
func (m *Metabolism) Update(st *world.Store) {
	// Basal drain applies to every energy holder, fed or not.
	m.scratch = st.QueryInto(m.scratch[:0], world.MaskEnergy)
	for _, id := range m.scratch {
		e := st.Energy(id)
		e.Current -= m.basalRate
		if e.Current < 0 {
			e.Current = 0
		}
	}

	m.scratch = st.QueryInto(m.scratch[:0], DigestEligible)
	for _, id := range m.scratch {
		m.digest(st, id)
	}
}

// digest consumes the stomach in full. Digestion is all-or-nothing: the
// rule's deltas scale with the stomach amount and the slot is then emptied,
// whether or not a rule matched the food type.
func (m *Metabolism) digest(st *world.Store, id uint32) {
	stomach := st.Stomach(id)
	if stomach.Empty() {
		return
	}

	if rule, ok := m.rules[stomach.FoodType]; ok {
		amount := stomach.Amount

		e := st.Energy(id)
		e.Current = clamp(e.Current+float32(rule.EnergyChange)*amount, 0, e.Max)

		mood := st.Mood(id)
		mood.Happiness = clampUnit(mood.Happiness + float32(rule.MoodChange)*amount)

		ph := st.Phenotype(id)
		ph.R = clamp(ph.R+float32(rule.ColorShiftR)*amount, 0, 1)
		ph.G = clamp(ph.G+float32(rule.ColorShiftG)*amount, 0, 1)
		ph.B = clamp(ph.B+float32(rule.ColorShiftB)*amount, 0, 1)
		ph.Size += float32(rule.SizeChange) * amount
		if ph.Size < components.MinPhenotypeSize {
			ph.Size = components.MinPhenotypeSize
		}
	}

	stomach.FoodType = components.FoodNone
	stomach.Amount = 0
}

// Foraging places food into stomachs by independent Bernoulli trials.
type Foraging struct {
	probability float32
	foodType    components.FoodType
	amount      float32
	rng         *rand.Rand

	scratch []uint32
}

// NewForaging builds the system from config with its own RNG stream.
func NewForaging(cfg config.ForagingConfig, rng *rand.Rand) *Foraging {
	return &Foraging{
		probability: float32(cfg.Probability),
		foodType:    components.FoodType(cfg.FoodType),
		amount:      float32(cfg.Amount),
		rng:         rng,
	}
}

// Update rolls each stomach holder once. A success overwrites whatever the
// stomach held; there is no queueing.
func (f *Foraging) Update(st *world.Store) {
	f.scratch = st.QueryInto(f.scratch[:0], world.MaskStomach)
	for _, id := range f.scratch {
		if f.rng.Float32() < f.probability {
			*st.Stomach(id) = components.Stomach{FoodType: f.foodType, Amount: f.amount}
		}
	}
}
