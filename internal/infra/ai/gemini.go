// Package ai - gemini.go
// Gemini adapter implementing the LLMProvider interface.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements LLMProvider for Google's Gemini API.
type GeminiProvider struct {
	apiKey     string
	client     *genai.Client
	model      string
	usageStats UsageStats
	budgetGate *BudgetGate
}

// NewGeminiProvider creates a new Gemini adapter. The client is only
// dialed when an API key is present.
func NewGeminiProvider(ctx context.Context, apiKey string, budgetGate *BudgetGate) (*GeminiProvider, error) {
	p := &GeminiProvider{
		apiKey:     apiKey,
		model:      "gemini-2.5-flash",
		budgetGate: budgetGate,
	}
	if apiKey == "" {
		return p, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "Gemini"
}

// IsAvailable checks if the API key is configured.
func (p *GeminiProvider) IsAvailable() bool {
	return p.apiKey != "" && p.client != nil
}

// Complete sends a completion request to Gemini.
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if !p.IsAvailable() {
		return nil, fmt.Errorf("Gemini API key not configured")
	}

	estimatedCost := p.estimateCost(req)
	if !p.budgetGate.CanSpend(estimatedCost) {
		return nil, fmt.Errorf("budget limit exceeded: %s", p.budgetGate.GetStatus())
	}

	modelName := p.model
	if req.Model != "" {
		modelName = req.Model
	}
	model := p.client.GenerativeModel(modelName)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	model.SetTemperature(float32(req.Temperature))

	// Gemini takes a single system instruction plus flattened turns.
	var turns strings.Builder
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(m.Content)},
			}
		case "assistant":
			turns.WriteString("Companion: " + m.Content + "\n")
		default:
			turns.WriteString("Steward: " + m.Content + "\n")
		}
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(turns.String()))
	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}
	latency := time.Since(start)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content returned from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from Gemini")
	}

	var promptTokens, outputTokens, totalTokens int
	if resp.UsageMetadata != nil {
		promptTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		totalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	actualCost := p.calculateCost(totalTokens)
	p.budgetGate.RecordSpend(actualCost)
	p.usageStats.TotalRequests++
	p.usageStats.TotalTokens += totalTokens
	p.usageStats.TotalCostUSD += actualCost

	return &CompletionResponse{
		Content:      strings.TrimSpace(string(text)),
		Model:        modelName,
		PromptTokens: promptTokens,
		OutputTokens: outputTokens,
		TotalTokens:  totalTokens,
		Latency:      latency,
		FinishReason: resp.Candidates[0].FinishReason.String(),
	}, nil
}

// GetUsageStats returns current usage.
func (p *GeminiProvider) GetUsageStats() UsageStats {
	stats := p.usageStats
	stats.BudgetRemaining = p.budgetGate.DailyLimitUSD - p.budgetGate.CurrentDaySpend
	return stats
}

// ResetUsage clears the usage counters.
func (p *GeminiProvider) ResetUsage() {
	p.usageStats = UsageStats{LastReset: time.Now()}
}

func (p *GeminiProvider) estimateCost(req CompletionRequest) float64 {
	chars := 0
	for _, m := range req.Messages {
		chars += len(m.Content)
	}
	return p.calculateCost(chars/4 + req.MaxTokens)
}

func (p *GeminiProvider) calculateCost(tokens int) float64 {
	// flash-tier blended rate; close enough for a safety gate.
	perMillion := 0.50
	return float64(tokens) / 1_000_000 * perMillion
}
