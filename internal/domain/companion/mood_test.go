package companion

import (
	"testing"
	"time"
)

func moodFixture(hunger, happiness, energy float64) *Companion {
	return &Companion{
		Name:      "Nebula",
		Hunger:    hunger,
		Happiness: happiness,
		Energy:    energy,
		Level:     1,
		IsAlive:   true,
		BaseTrait: TraitChill,
	}
}

func TestMoodLadderOrder(t *testing.T) {
	cases := []struct {
		name                      string
		hunger, happiness, energy float64
		want                      Mood
	}{
		{"hunger dominates other criticals", 1.5, 1.0, 1.0, MoodHungry},
		{"hunger beats high energy and happiness", 1.5, 9.0, 9.0, MoodHungry},
		{"exhausted after hunger", 5.0, 1.0, 1.5, MoodExhausted},
		{"sad after energy", 5.0, 1.5, 5.0, MoodSad},
		{"peckish before tired", 3.5, 5.0, 3.5, MoodPeckish},
		{"tired when only energy low", 6.0, 5.0, 3.5, MoodTired},
		{"radiant needs all three", 7.0, 8.0, 7.0, MoodRadiant},
		{"happy without radiance", 6.5, 8.5, 5.0, MoodHappy},
		{"neutral fallback", 5.0, 5.0, 5.0, MoodNeutral},
		{"boundary: hunger exactly 2 is critical", 2.0, 9.0, 9.0, MoodHungry},
		{"boundary: happiness exactly 6 is happy", 9.0, 6.0, 5.0, MoodHappy},
	}

	now := time.Now()
	for _, tc := range cases {
		c := moodFixture(tc.hunger, tc.happiness, tc.energy)
		if got := c.Mood(now); got != tc.want {
			t.Errorf("%s: Mood(h=%.1f hp=%.1f e=%.1f) = %s, want %s",
				tc.name, tc.hunger, tc.happiness, tc.energy, got, tc.want)
		}
	}
}

func TestMoodSleepingOverridesEverything(t *testing.T) {
	now := time.Now()
	c := moodFixture(1.0, 1.0, 1.0)
	c.ApplyTrait(TraitDeepSleep, time.Hour, now)

	if got := c.Mood(now); got != MoodSleeping {
		t.Errorf("Expected Sleeping while Deep Sleep active, got %s", got)
	}
	if got := c.Mood(now.Add(2 * time.Hour)); got != MoodHungry {
		t.Errorf("Expected Hungry after sleep expiry, got %s", got)
	}
}

func TestAvatarSkipsWarningTiers(t *testing.T) {
	now := time.Now()

	// Peckish/Tired moods collapse to the stage portrait.
	c := moodFixture(3.5, 5.0, 5.0)
	if mood := c.Mood(now); mood != MoodPeckish {
		t.Fatalf("Fixture should be Peckish, got %s", mood)
	}
	if got := c.Avatar(now); got != AvatarBaby {
		t.Errorf("Expected baby portrait for peckish companion, got %s", got)
	}
}

func TestAvatarStageUsesOwnXPCutoffs(t *testing.T) {
	now := time.Now()

	c := moodFixture(5.0, 5.0, 5.0)
	c.XP = 600
	c.Level = 3 // evolution level must not leak into the portrait
	if got := c.Avatar(now); got != AvatarTeen {
		t.Errorf("Expected teen portrait at 600 XP, got %s", got)
	}

	c.XP = 1500
	if got := c.Avatar(now); got != AvatarAdult {
		t.Errorf("Expected adult portrait at 1500 XP, got %s", got)
	}
}

func TestAvatarCriticalStates(t *testing.T) {
	now := time.Now()

	c := moodFixture(1.0, 5.0, 5.0)
	if got := c.Avatar(now); got != AvatarHungry {
		t.Errorf("Expected hungry portrait, got %s", got)
	}

	c = moodFixture(8.0, 9.0, 8.0)
	if got := c.Avatar(now); got != AvatarRadiant {
		t.Errorf("Expected radiant portrait, got %s", got)
	}

	c.ApplyTrait(TraitDeepSleep, time.Hour, now)
	if got := c.Avatar(now); got != AvatarSleeping {
		t.Errorf("Expected sleeping portrait to dominate, got %s", got)
	}
}

func TestMoodLineMentionsName(t *testing.T) {
	line := MoodLine("Nebula", MoodRadiant)
	if line != "Nebula is glowing with cosmic joy!" {
		t.Errorf("Unexpected radiant line: %q", line)
	}
}
