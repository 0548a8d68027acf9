// Package memory keeps a rolling summary of past conversations so the
// companion remembers things the steward has told it. The store is a
// small JSON file; bullets are re-extracted by the LLM once enough new
// turns have accumulated.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nebulazenith/sanctuary/internal/infra/ai"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

const (
	SchemaVersion = 1

	// Hard cap on retained summary bullets. Keeps token cost low.
	MaxBullets = 12

	// A summarisation call is only attempted after this many new turns.
	SummariseAfterTurns = 20

	// Transcript window handed to the extraction prompt.
	transcriptWindow = 40
)

// State is the persisted memory document.
type State struct {
	SchemaVersion      int      `json:"schema_version"`
	SummaryBullets     []string `json:"summary_bullets"`
	TotalTurns         int      `json:"total_turns"`
	LastSummarisedTurn int      `json:"last_summarised_at_turn"`
}

// Transcript is one prior exchange line handed to the summariser.
type Transcript struct {
	Role string // "user" or "assistant"
	Text string
}

// Steward manages loading, updating and summarising the memory file.
type Steward struct {
	path   string
	state  State
	logger *logger.Logger
}

// NewSteward loads memory from path, starting empty if the file is
// missing or unreadable.
func NewSteward(path string, log *logger.Logger) *Steward {
	s := &Steward{
		path:   path,
		state:  State{SchemaVersion: SchemaVersion},
		logger: log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Error(fmt.Sprintf("memory load failed: %v", err))
		return s
	}
	s.state = loaded
	return s
}

// Block returns the compact string to embed in the system prompt, or
// "" when there is nothing worth injecting.
func (s *Steward) Block() string {
	if len(s.state.SummaryBullets) == 0 {
		return ""
	}

	lines := []string{"Things you remember about your steward:"}
	bullets := s.state.SummaryBullets
	if len(bullets) > MaxBullets {
		bullets = bullets[len(bullets)-MaxBullets:]
	}
	for _, b := range bullets {
		lines = append(lines, "- "+b)
	}
	return strings.Join(lines, "\n")
}

// IncrementTurn bumps the running count of steward turns.
func (s *Steward) IncrementTurn() {
	s.state.TotalTurns++
}

// TotalTurns reports how many steward turns have ever been recorded.
func (s *Steward) TotalTurns() int {
	return s.state.TotalTurns
}

// MaybeSummarise extracts new memory bullets from the recent history if
// enough turns have passed since the last summary. Extraction failures
// are logged and swallowed; memory is best-effort.
func (s *Steward) MaybeSummarise(ctx context.Context, provider ai.LLMProvider, history []Transcript) {
	if s.state.TotalTurns-s.state.LastSummarisedTurn < SummariseAfterTurns {
		return
	}
	if provider == nil || !provider.IsAvailable() {
		return
	}

	window := history
	if len(window) > transcriptWindow {
		window = window[len(window)-transcriptWindow:]
	}
	var transcript strings.Builder
	for _, t := range window {
		role := "Steward"
		if t.Role == "assistant" {
			role = "Nebula"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", role, t.Text)
	}

	prompt := "You are a memory curator for an AI companion called Nebula.\n" +
		"Read the conversation transcript below and extract compact facts " +
		"about the STEWARD (the human) only: their name if given, " +
		"preferences, things they've shared about their life, feelings, or " +
		"interests. Write each fact as a single short bullet (12 words or fewer). " +
		"Output ONLY the bullet list, one per line, no numbering, no preamble.\n\n" +
		"TRANSCRIPT:\n" + transcript.String()

	resp, err := provider.Complete(ctx, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		s.logger.Error(fmt.Sprintf("memory summarisation failed: %v", err))
		return
	}

	var newBullets []string
	for _, line := range strings.Split(resp.Content, "\n") {
		b := strings.TrimSpace(strings.TrimLeft(line, "•-– \t"))
		if b == "" || strings.HasPrefix(b, "#") {
			continue
		}
		newBullets = append(newBullets, b)
	}

	merged := append(append([]string{}, s.state.SummaryBullets...), newBullets...)
	seen := make(map[string]bool, len(merged))
	deduped := merged[:0]
	for _, b := range merged {
		key := strings.ToLower(b)
		if !seen[key] {
			seen[key] = true
			deduped = append(deduped, b)
		}
	}
	if len(deduped) > MaxBullets {
		deduped = deduped[len(deduped)-MaxBullets:]
	}

	s.state.SummaryBullets = deduped
	s.state.LastSummarisedTurn = s.state.TotalTurns
	s.logger.Info(fmt.Sprintf("Memory summarised: %d bullets retained", len(deduped)))
}

// Save writes the memory file.
func (s *Steward) Save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write memory file: %w", err)
	}
	return nil
}

// Bullets exposes the current summary bullets.
func (s *Steward) Bullets() []string {
	return append([]string{}, s.state.SummaryBullets...)
}
