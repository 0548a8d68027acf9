package chat

import (
	"strings"
	"testing"

	"github.com/nebulazenith/sanctuary/internal/domain/companion"
	"github.com/nebulazenith/sanctuary/internal/domain/item"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want Style
	}{
		{"whimsical", StyleWhimsical},
		{"Balanced", StyleBalanced},
		{"DIRECT", StyleDirect},
		{"", StyleWhimsical},
		{"nonsense", StyleWhimsical},
	}
	for _, tt := range tests {
		if got := ParseStyle(tt.in); got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildSystemPromptContainsMoodLine(t *testing.T) {
	prompt := BuildSystemPrompt(StyleWhimsical, companion.MoodHungry, "", "")

	if !strings.Contains(prompt, "CURRENT MOOD - Hungry:") {
		t.Errorf("prompt missing mood header:\n%s", prompt)
	}
	if !strings.Contains(prompt, MoodInstruction(companion.MoodHungry)) {
		t.Error("prompt missing the hungry voice instruction")
	}
	if !strings.Contains(prompt, "Never mention stats/XP/meters/tools.") {
		t.Error("prompt missing the no-meta guardrail")
	}
}

func TestBuildSystemPromptStyles(t *testing.T) {
	whimsical := BuildSystemPrompt(StyleWhimsical, companion.MoodNeutral, "", "")
	direct := BuildSystemPrompt(StyleDirect, companion.MoodNeutral, "", "")

	if !strings.Contains(whimsical, "ethereal cosmic companion") {
		t.Error("whimsical prompt missing its persona line")
	}
	if !strings.Contains(direct, "No flowery language") {
		t.Error("direct prompt missing its persona line")
	}
	if whimsical == direct {
		t.Error("styles should produce different prompts")
	}
}

func TestBuildSystemPromptOptionalBlocks(t *testing.T) {
	bare := BuildSystemPrompt(StyleBalanced, companion.MoodHappy, "", "")
	full := BuildSystemPrompt(StyleBalanced, companion.MoodHappy,
		"Things you remember:\n- likes tea", "[Event] fed you Apple")

	if strings.Contains(bare, "Things you remember") {
		t.Error("empty memory block should be omitted")
	}
	if !strings.Contains(full, "- likes tea") {
		t.Error("memory block should appear when provided")
	}
	if !strings.Contains(full, "[Event] fed you Apple") {
		t.Error("event context should appear when provided")
	}
}

func TestMoodInstructionFallsBackToNeutral(t *testing.T) {
	if got := MoodInstruction(companion.Mood("Mystified")); got != MoodInstruction(companion.MoodNeutral) {
		t.Error("unmapped moods should use the neutral register")
	}
}

func TestFeedingContextMentionsFoodAndMood(t *testing.T) {
	ctx := FeedingContext(item.Coffee, companion.MoodExhausted)

	if !strings.HasPrefix(ctx, "[Event]") {
		t.Errorf("feeding context should start with [Event], got %q", ctx)
	}
	if !strings.Contains(ctx, "Coffee") {
		t.Error("feeding context should name the food")
	}
	if !strings.Contains(ctx, string(companion.MoodExhausted)) {
		t.Error("feeding context should name the mood")
	}
}

func TestExpeditionContextItemNote(t *testing.T) {
	withItem := ExpeditionContext("Crab Nebula", companion.MoodRadiant, item.StarMote)
	if !strings.Contains(withItem, "You found a Star Mote") {
		t.Errorf("context should mention the recovered item: %q", withItem)
	}
	if !strings.Contains(withItem, "Crab Nebula") {
		t.Error("context should name the sector")
	}

	empty := ExpeditionContext("Asteroid Belt", companion.MoodNeutral, "")
	if !strings.Contains(empty, "only stardust and experience") {
		t.Errorf("empty-handed context should use the no-item note: %q", empty)
	}
}
