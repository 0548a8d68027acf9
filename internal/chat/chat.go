package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nebulazenith/sanctuary/internal/domain/companion"
	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/infra/ai"
	"github.com/nebulazenith/sanctuary/internal/infra/memory"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

const (
	// Chat turns sent to the provider per request.
	historyWindow = 14

	// Consecutive user sends closer than this are dropped.
	minSendInterval = time.Second
)

// Turn is one exchange entry in the conversation history.
type Turn struct {
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Reply carries the outcome of one chat turn. FellBack is true when the
// provider failed and the in-universe fallback line was substituted.
type Reply struct {
	Text     string
	FellBack bool
	Reason   ai.FailureReason
}

// Orchestrator runs conversation turns: it assembles the persona
// prompt, calls the provider, substitutes fallback lines on failure,
// and maintains history and rolling memory. One instance is shared by
// every connected steward; the mutex serializes whole turns so history
// and memory never interleave.
type Orchestrator struct {
	mu       sync.Mutex
	provider ai.LLMProvider
	steward  *memory.Steward
	eventLog *events.Log
	logger   *logger.Logger

	style        Style
	history      []Turn
	eventContext string // pending one-shot context, cleared after use
	lastSend     time.Time
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Provider ai.LLMProvider
	Memory   *memory.Steward
	EventLog *events.Log
	Logger   *logger.Logger
	Style    Style
}

func NewOrchestrator(deps Deps) *Orchestrator {
	style := deps.Style
	if style == "" {
		style = StyleWhimsical
	}
	return &Orchestrator{
		provider: deps.Provider,
		steward:  deps.Memory,
		eventLog: deps.EventLog,
		logger:   deps.Logger,
		style:    style,
	}
}

// SetStyle switches the persona register for subsequent turns.
func (o *Orchestrator) SetStyle(s Style) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.style = s
}

// QueueEventContext stages a one-shot event note (feeding, expedition)
// for injection into the next turn's system prompt.
func (o *Orchestrator) QueueEventContext(ctx string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.eventContext = ctx
}

// History returns a copy of the conversation so far.
func (o *Orchestrator) History() []Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Turn, len(o.history))
	copy(out, o.history)
	return out
}

// RestoreHistory replaces the conversation history, e.g. after loading
// a saved session.
func (o *Orchestrator) RestoreHistory(turns []Turn) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append([]Turn{}, turns...)
}

// Send runs one full chat turn against the companion's current state.
// The companion is read for mood only and never mutated here. A reply
// is always returned; provider failures surface as the fallback line
// with FellBack set, never as an error to the steward.
func (o *Orchestrator) Send(ctx context.Context, c *companion.Companion, userText string, now time.Time) Reply {
	o.mu.Lock()
	defer o.mu.Unlock()

	userText = strings.TrimSpace(userText)
	if userText == "" {
		return Reply{Text: "", FellBack: false}
	}
	if now.Sub(o.lastSend) < minSendInterval {
		o.logger.Warn("chat send blocked: too soon after previous turn")
		return Reply{Text: ai.FallbackLine(ai.FailureUnknown), FellBack: true, Reason: ai.FailureUnknown}
	}
	o.lastSend = now

	o.history = append(o.history, Turn{Role: "user", Content: userText, At: now})

	reply := o.complete(ctx, c, now)

	o.history = append(o.history, Turn{Role: "assistant", Content: reply.Text, At: now})
	o.eventContext = ""

	if o.steward != nil {
		o.steward.IncrementTurn()
		o.steward.MaybeSummarise(ctx, o.provider, o.transcript())
		if err := o.steward.Save(); err != nil {
			o.logger.Error(fmt.Sprintf("memory save failed: %v", err))
		}
	}

	return reply
}

func (o *Orchestrator) complete(ctx context.Context, c *companion.Companion, now time.Time) Reply {
	mood := c.Mood(now)
	system := BuildSystemPrompt(o.style, mood, o.memoryBlock(), o.eventContext)

	messages := []ai.Message{{Role: "system", Content: system}}
	window := o.history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}
	for _, t := range window {
		messages = append(messages, ai.Message{Role: t.Role, Content: t.Content})
	}

	resp, err := o.provider.Complete(ctx, ai.CompletionRequest{
		Messages:    messages,
		MaxTokens:   300,
		Temperature: 0.8,
	})
	if err != nil {
		reason := ai.ClassifyError(err)
		o.logger.Warn(fmt.Sprintf("chat fallback used (reason=%s): %v", reason, err))
		o.eventLog.Append(events.Event{
			ID:        events.GenerateEventID(),
			Timestamp: now,
			Type:      events.EventTypeChatFallback,
			Companion: c.Name,
			Summary:   fmt.Sprintf("Cosmic turbulence: %s", reason),
			Payload:   map[string]string{"reason": string(reason)},
		})
		return Reply{Text: ai.FallbackLine(reason), FellBack: true, Reason: reason}
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		o.eventLog.Append(events.Event{
			ID:        events.GenerateEventID(),
			Timestamp: now,
			Type:      events.EventTypeChatFallback,
			Companion: c.Name,
			Summary:   "Cosmic turbulence: empty",
			Payload:   map[string]string{"reason": string(ai.FailureEmpty)},
		})
		return Reply{Text: ai.FallbackLine(ai.FailureEmpty), FellBack: true, Reason: ai.FailureEmpty}
	}

	o.eventLog.Append(events.Event{
		ID:        events.GenerateEventID(),
		Timestamp: now,
		Type:      events.EventTypeChatTurn,
		Companion: c.Name,
		Summary:   fmt.Sprintf("Chat turn (%s, %d tokens)", mood, resp.TotalTokens),
	})
	return Reply{Text: text}
}

func (o *Orchestrator) memoryBlock() string {
	if o.steward == nil {
		return ""
	}
	return o.steward.Block()
}

func (o *Orchestrator) transcript() []memory.Transcript {
	out := make([]memory.Transcript, len(o.history))
	for i, t := range o.history {
		out[i] = memory.Transcript{Role: t.Role, Text: t.Content}
	}
	return out
}
