package memory

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nebulazenith/sanctuary/internal/infra/ai"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (p *stubProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &ai.CompletionResponse{Content: p.reply}, nil
}

func (p *stubProvider) GetUsageStats() ai.UsageStats { return ai.UsageStats{} }
func (p *stubProvider) ResetUsage()                  {}
func (p *stubProvider) Name() string                 { return "stub" }
func (p *stubProvider) IsAvailable() bool            { return true }

func TestStewardStartsEmptyWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s := NewSteward(path, logger.NewLogger())

	if s.Block() != "" {
		t.Error("fresh steward should have no memory block")
	}
	if s.TotalTurns() != 0 {
		t.Errorf("fresh steward reports %d turns, want 0", s.TotalTurns())
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	log := logger.NewLogger()

	s := NewSteward(path, log)
	s.state.SummaryBullets = []string{"Steward likes tea", "Steward works late"}
	s.state.TotalTurns = 7
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewSteward(path, log)
	if reloaded.TotalTurns() != 7 {
		t.Errorf("reloaded turns = %d, want 7", reloaded.TotalTurns())
	}
	bullets := reloaded.Bullets()
	if len(bullets) != 2 || bullets[0] != "Steward likes tea" {
		t.Errorf("reloaded bullets = %v", bullets)
	}
}

func TestBlockFormatsBullets(t *testing.T) {
	s := NewSteward(filepath.Join(t.TempDir(), "memory.json"), logger.NewLogger())
	s.state.SummaryBullets = []string{"likes tea"}

	block := s.Block()
	if !strings.HasPrefix(block, "Things you remember about your steward:") {
		t.Errorf("block missing header: %q", block)
	}
	if !strings.Contains(block, "- likes tea") {
		t.Errorf("block missing bullet: %q", block)
	}
}

func TestMaybeSummariseWaitsForThreshold(t *testing.T) {
	s := NewSteward(filepath.Join(t.TempDir(), "memory.json"), logger.NewLogger())
	provider := &stubProvider{reply: "- Steward likes tea"}

	for i := 0; i < SummariseAfterTurns-1; i++ {
		s.IncrementTurn()
	}
	s.MaybeSummarise(context.Background(), provider, nil)
	if provider.calls != 0 {
		t.Fatal("summarisation should not run below the turn threshold")
	}

	s.IncrementTurn()
	s.MaybeSummarise(context.Background(), provider, []Transcript{{Role: "user", Text: "I love tea"}})
	if provider.calls != 1 {
		t.Fatal("summarisation should run once the threshold is reached")
	}
	if len(s.Bullets()) == 0 {
		t.Error("summarisation should retain extracted bullets")
	}

	// Counter resets; the next turn must not trigger another call.
	s.IncrementTurn()
	s.MaybeSummarise(context.Background(), provider, nil)
	if provider.calls != 1 {
		t.Error("summarisation should not re-run until the threshold accrues again")
	}
}

func TestMaybeSummariseDedupesAndCaps(t *testing.T) {
	s := NewSteward(filepath.Join(t.TempDir(), "memory.json"), logger.NewLogger())
	s.state.SummaryBullets = []string{"Steward likes tea"}
	s.state.TotalTurns = SummariseAfterTurns

	lines := []string{"- steward likes tea"} // duplicate, case-insensitive
	for i := 0; i < MaxBullets+3; i++ {
		lines = append(lines, "- fact number "+string(rune('a'+i)))
	}
	provider := &stubProvider{reply: strings.Join(lines, "\n")}

	s.MaybeSummarise(context.Background(), provider, []Transcript{{Role: "user", Text: "hi"}})

	bullets := s.Bullets()
	if len(bullets) != MaxBullets {
		t.Errorf("retained %d bullets, want cap of %d", len(bullets), MaxBullets)
	}
	seen := make(map[string]bool)
	for _, b := range bullets {
		key := strings.ToLower(b)
		if seen[key] {
			t.Errorf("duplicate bullet survived dedupe: %q", b)
		}
		seen[key] = true
	}
}

func TestMaybeSummariseSwallowsProviderErrors(t *testing.T) {
	s := NewSteward(filepath.Join(t.TempDir(), "memory.json"), logger.NewLogger())
	s.state.SummaryBullets = []string{"kept"}
	s.state.TotalTurns = SummariseAfterTurns

	provider := &stubProvider{err: errors.New("API error 429")}
	s.MaybeSummarise(context.Background(), provider, []Transcript{{Role: "user", Text: "hi"}})

	if got := s.Bullets(); len(got) != 1 || got[0] != "kept" {
		t.Errorf("bullets should be untouched on provider failure, got %v", got)
	}
	if s.state.LastSummarisedTurn != 0 {
		t.Error("failed summarisation must not advance the summary watermark")
	}
}
