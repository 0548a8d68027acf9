package companion

import "time"

// Mood is the presentation-facing emotional state derived from vitals.
type Mood string

const (
	MoodSleeping  Mood = "Sleeping"
	MoodHungry    Mood = "Hungry"
	MoodExhausted Mood = "Exhausted"
	MoodSad       Mood = "Sad"
	MoodPeckish   Mood = "Peckish"
	MoodTired     Mood = "Tired"
	MoodRadiant   Mood = "Radiant"
	MoodHappy     Mood = "Happy"
	MoodNeutral   Mood = "Neutral"
)

// AvatarState tags which portrait the front-ends should show. Its
// ladder has fewer tiers than the mood ladder and falls back to the
// growth stage; the two ladders are intentionally kept separate.
type AvatarState string

const (
	AvatarSleeping AvatarState = "sleeping"
	AvatarHungry   AvatarState = "hungry"
	AvatarTired    AvatarState = "tired"
	AvatarSad      AvatarState = "sad"
	AvatarRadiant  AvatarState = "radiant"
	AvatarBaby     AvatarState = "baby"
	AvatarTeen     AvatarState = "teen"
	AvatarAdult    AvatarState = "adult"
)

// Portrait XP cutoffs. These differ from the evolution thresholds; the
// avatar keeps its own scale.
const (
	avatarTeenXP  = 500
	avatarAdultXP = 1500
)

// Mood evaluates the mood decision ladder, first match wins. Computed
// fresh on every call because the sleep override can expire silently.
func (c *Companion) Mood(now time.Time) Mood {
	if c.EffectiveTrait(now) == TraitDeepSleep {
		return MoodSleeping
	}

	// Critical states first.
	switch {
	case c.Hunger <= 2.0:
		return MoodHungry
	case c.Energy <= 2.0:
		return MoodExhausted
	case c.Happiness <= 2.0:
		return MoodSad
	}

	// Warning states.
	switch {
	case c.Hunger <= 4.0:
		return MoodPeckish
	case c.Energy <= 4.0:
		return MoodTired
	}

	// Happy states.
	if c.Happiness >= 8.0 && c.Hunger >= 7.0 && c.Energy >= 7.0 {
		return MoodRadiant
	}
	if c.Happiness >= 6.0 {
		return MoodHappy
	}

	return MoodNeutral
}

// MoodLine returns the HUD caption for a mood.
func MoodLine(name string, m Mood) string {
	switch m {
	case MoodSleeping:
		return name + " is deep in a cosmic dream..."
	case MoodHungry:
		return name + " is really hungry... her tummy is rumbling"
	case MoodExhausted:
		return name + " is exhausted... she needs rest soon"
	case MoodSad:
		return name + " feels a little lost in the stars..."
	case MoodPeckish:
		return name + " is getting a little hungry..."
	case MoodTired:
		return name + " is feeling a bit tired..."
	case MoodRadiant:
		return name + " is glowing with cosmic joy!"
	case MoodHappy:
		return name + " is happily observing the stars"
	default:
		return name + " is observing the stars"
	}
}

// Avatar evaluates the portrait ladder. It collapses the mood ladder's
// warning tiers into the stage default and uses its own XP cutoffs.
func (c *Companion) Avatar(now time.Time) AvatarState {
	if c.EffectiveTrait(now) == TraitDeepSleep {
		return AvatarSleeping
	}

	switch {
	case c.Hunger <= 2.0:
		return AvatarHungry
	case c.Energy <= 2.0:
		return AvatarTired
	case c.Happiness <= 2.0:
		return AvatarSad
	}

	if c.Happiness >= 8.0 && c.Hunger >= 7.0 && c.Energy >= 7.0 {
		return AvatarRadiant
	}

	switch {
	case c.XP >= avatarAdultXP:
		return AvatarAdult
	case c.XP >= avatarTeenXP:
		return AvatarTeen
	default:
		return AvatarBaby
	}
}
