package companion

// Trait identifies a personality that shapes how fast vitals drain.
type Trait string

const (
	// Hatchling pool (rolled at creation).
	TraitChill Trait = "Chill"
	TraitHyper Trait = "Hyper"
	TraitSweet Trait = "Sweet"

	// Evolved pool (re-rolled on every stage advance).
	TraitStoic     Trait = "Stoic"
	TraitWild      Trait = "Wild"
	TraitBrilliant Trait = "Brilliant"

	// Temporary overrides granted by actions and items.
	TraitDeepSleep   Trait = "Deep Sleep"
	TraitCaffeinated Trait = "Caffeinated"
	TraitSugarRush   Trait = "Sugar Rush"
)

// HatchlingTraits is the pool a newborn companion rolls from.
var HatchlingTraits = []Trait{TraitChill, TraitHyper, TraitSweet}

// EvolvedTraits is the pool rolled on evolution.
var EvolvedTraits = []Trait{TraitStoic, TraitWild, TraitBrilliant}

// hungerModifier returns the hunger decay multiplier for a trait.
func hungerModifier(t Trait) float64 {
	switch t {
	case TraitSugarRush:
		return 1.10
	case TraitDeepSleep:
		return 0.30
	default:
		return 1.0
	}
}

// energyModifier returns the energy decay multiplier for a trait.
func energyModifier(t Trait) float64 {
	switch t {
	case TraitCaffeinated:
		return 0.70
	case TraitDeepSleep:
		return 0.10
	case TraitHyper:
		return 1.10
	default:
		return 1.0
	}
}
