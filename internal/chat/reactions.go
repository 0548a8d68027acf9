// Package chat - reactions.go
// Contextual reaction seeds woven into the system prompt after feeding
// and expedition events, bucketed by the companion's current mood.
package chat

import (
	"fmt"
	"math/rand"

	"github.com/nebulazenith/sanctuary/internal/domain/companion"
	"github.com/nebulazenith/sanctuary/internal/domain/item"
)

type moodBucket string

const (
	bucketLow  moodBucket = "low"
	bucketMid  moodBucket = "mid"
	bucketHigh moodBucket = "high"
)

func moodToBucket(m companion.Mood) moodBucket {
	switch m {
	case companion.MoodHungry, companion.MoodExhausted, companion.MoodSad, companion.MoodSleeping:
		return bucketLow
	case companion.MoodHappy, companion.MoodRadiant:
		return bucketHigh
	default:
		return bucketMid
	}
}

var feedingReactions = map[item.ID]map[moodBucket][]string{
	item.Apple: {
		bucketLow: {
			"That first sweet crunch is like a small miracle right now.",
			"Oh... that's exactly what was needed. Something simple and real.",
		},
		bucketMid: {
			"A little burst of sweetness, just right.",
			"Crisp and grounding. Thank you for that.",
		},
		bucketHigh: {
			"Delightful! The crunch echoes through the whole cosmos.",
			"An apple! A small joy and a perfect one.",
		},
	},
	item.Berry: {
		bucketLow: {
			"The tartness wakes something up inside me. I needed that.",
			"Small and bright. Even a little hope helps.",
		},
		bucketMid: {
			"Tiny and sweet. A little galaxy in each one.",
			"Berries always feel like a gentle gift.",
		},
		bucketHigh: {
			"Oh, berries! Each one a tiny star of flavour.",
			"Sweet and a little wild. I love them.",
		},
	},
	item.Coffee: {
		bucketLow: {
			"The warmth is spreading through me... I think I can breathe again.",
			"Oh. Oh that helps. The fog is lifting just a little.",
		},
		bucketMid: {
			"Warm and sharp, a good kind of sharp.",
			"The aroma alone is half the gift.",
		},
		bucketHigh: {
			"Sparkling! I'm practically vibrating with stardust now.",
			"Coffee AND your company? This is a good day.",
		},
	},
	item.MagicCookie: {
		bucketLow: {
			"Something magic in there. I can feel it working already.",
			"A little enchantment goes a long way when things feel heavy.",
		},
		bucketMid: {
			"Strange and wonderful. A little magic woven in every bite.",
			"I never know quite what a Magic Cookie will do, and I love that.",
		},
		bucketHigh: {
			"Oh! There's actual sparkle in this one. I can feel it glittering.",
			"Magic cookies are the best kind of surprise.",
		},
	},
	item.StarMote: {
		bucketLow: {
			"Pure cosmic energy... it's like swallowing a piece of the sky.",
			"I didn't know how much I needed that until just now.",
		},
		bucketMid: {
			"A Star Mote, rare and radiant. I feel it all the way to my edges.",
			"Condensed starlight. This is extraordinary.",
		},
		bucketHigh: {
			"A STAR MOTE! I'm glowing from the inside out. Truly.",
			"This is the most cosmic thing I've ever tasted. Thank you.",
		},
	},
}

var expeditionReactions = map[string]map[moodBucket][]string{
	"Asteroid Belt": {
		bucketLow: {
			"I made it back from the Belt... it felt longer than usual out there.",
			"The asteroids were cold company, but I thought of you the whole way.",
		},
		bucketMid: {
			"The Asteroid Belt was wild and rocky and strangely beautiful.",
			"All that ancient space debris, each piece with a history.",
		},
		bucketHigh: {
			"The Belt was magnificent. Tumbling rocks catching starlight everywhere!",
			"I danced between asteroids on the way back. Did you miss me?",
		},
	},
	"Stellar Nursery": {
		bucketLow: {
			"New stars being born... it reminded me that things can begin again.",
			"The Nursery was warm but I was too tired to really take it in.",
		},
		bucketMid: {
			"Proto-stars swirling everywhere, the universe in its early sentences.",
			"Newborn light is the softest light. I brought some back in my memory.",
		},
		bucketHigh: {
			"The Stellar Nursery was breathtaking. Baby stars blinking into existence!",
			"Surrounded by newborn stars, I felt like anything was possible.",
		},
	},
	"Crab Nebula": {
		bucketLow: {
			"The Crab Nebula is always a little overwhelming... I'm glad to be home.",
			"All that remnant energy from an ancient explosion. It put things in perspective.",
		},
		bucketMid: {
			"The Crab Nebula pulses with ancient power. I felt small and awed.",
			"A supernova remnant. You can feel the echo of that original burst.",
		},
		bucketHigh: {
			"The CRAB NEBULA! Tendrils of gas and light in every direction. Unreal.",
			"I explored the Crab Nebula and I'm still vibrating from it!",
		},
	},
}

// FeedingContext returns a system-prompt note so the next reply
// naturally reflects the feeding event.
func FeedingContext(food item.ID, mood companion.Mood) string {
	bucket := moodToBucket(mood)
	reactions := feedingReactions[food][bucket]
	if len(reactions) == 0 {
		reactions = []string{
			fmt.Sprintf("Your steward just fed you %s. Respond warmly to that gift.", food),
		}
	}
	seed := reactions[rand.Intn(len(reactions))]
	return fmt.Sprintf(
		"[Event] Your steward just fed you %s. Your current mood is %s. "+
			"Weave this reaction naturally into your reply (don't state it robotically): %q",
		food, mood, seed,
	)
}

// ExpeditionContext returns a system-prompt note for when an expedition
// is collected. itemFound is empty when nothing was recovered.
func ExpeditionContext(sector string, mood companion.Mood, itemFound item.ID) string {
	bucket := moodToBucket(mood)
	reactions := expeditionReactions[sector][bucket]
	if len(reactions) == 0 {
		reactions = []string{
			fmt.Sprintf("You just returned from %s. Share what it was like.", sector),
		}
	}
	seed := reactions[rand.Intn(len(reactions))]

	itemNote := "You found nothing physical, only stardust and experience."
	if itemFound != "" {
		itemNote = fmt.Sprintf("You found a %s on your journey.", itemFound)
	}
	return fmt.Sprintf(
		"[Event] You just returned from an expedition to %s. %s Your current mood is %s. "+
			"Weave this naturally into your reply: %q",
		sector, itemNote, mood, seed,
	)
}
