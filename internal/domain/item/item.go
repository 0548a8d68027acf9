// Package item defines the core domain entities for consumables and the
// cargo-bay economy. This package is PURE and must NOT import any
// infrastructure packages.
package item

// ID represents the kind of item.
type ID string

const (
	Apple       ID = "Apple"        // Cheap staple, mostly hunger
	Berry       ID = "Berry"        // Light snack with a mood lift
	Coffee      ID = "Coffee"       // Barely food, big energy jolt
	MagicCookie ID = "Magic Cookie" // Premium meal with a sparkle
	StarMote    ID = "Star Mote"    // Condensed starlight, pure energy
)

// Definition provides metadata, feed effects, and shop pricing for an
// item. Effects are vitals deltas applied on feeding.
type Definition struct {
	Name        string
	Description string
	Cost        int // Shop price in XP ("Wisdom")

	Hunger    float64
	Happiness float64
	Energy    float64
}

// Registry contains all known items and their properties.
var Registry = map[ID]Definition{
	Apple: {
		Name:        "Apple",
		Description: "Crisp and grounding. A small, reliable joy.",
		Cost:        20,
		Hunger:      5,
	},
	Berry: {
		Name:        "Berry",
		Description: "Tiny and sweet. A little galaxy in each one.",
		Cost:        30,
		Hunger:      3,
		Happiness:   1,
	},
	Coffee: {
		Name:        "Coffee",
		Description: "Warm and sharp. The fog lifts just a little.",
		Cost:        40,
		Hunger:      1,
		Energy:      4,
	},
	MagicCookie: {
		Name:        "Magic Cookie",
		Description: "Strange and wonderful, a little magic in every bite.",
		Cost:        60,
		Hunger:      8,
		Happiness:   2,
	},
	StarMote: {
		Name:        "Star Mote",
		Description: "Condensed starlight. Like swallowing a piece of the sky.",
		Cost:        80,
		Energy:      8,
	},
}

// Get returns the definition for an item.
func Get(id ID) (Definition, bool) {
	def, ok := Registry[id]
	return def, ok
}

// All returns every known item id in a stable shop-menu order.
func All() []ID {
	return []ID{Apple, Berry, Coffee, MagicCookie, StarMote}
}
