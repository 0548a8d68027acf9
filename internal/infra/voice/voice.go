// Package voice gives the companion a spoken voice: cloud TTS synthesis
// with a primary/fallback voice pair, and local MP3 playback.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const ttsEndpoint = "https://api.openai.com/v1/audio/speech"

// Result is the tri-state outcome of a speak call.
type Result string

const (
	ResultCloud    Result = "cloud"    // primary voice succeeded
	ResultFallback Result = "fallback" // second voice used
	ResultError    Result = "error"    // both voices failed
)

// Synthesizer turns reply text into an MP3 file via the OpenAI TTS API.
type Synthesizer struct {
	apiKey        string
	httpClient    *http.Client
	model         string
	primaryVoice  string
	fallbackVoice string
	outputPath    string
}

// NewSynthesizer creates a TTS synthesizer writing to outputPath.
// shimmer is softer and ethereal; alloy is clearer, slightly firmer.
func NewSynthesizer(apiKey, outputPath string) *Synthesizer {
	if outputPath == "" {
		outputPath = "output.mp3"
	}
	return &Synthesizer{
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		model:         "gpt-4o-mini-tts",
		primaryVoice:  "shimmer",
		fallbackVoice: "alloy",
		outputPath:    outputPath,
	}
}

// IsAvailable checks if the API key is configured.
func (s *Synthesizer) IsAvailable() bool {
	return s.apiKey != ""
}

// OutputPath returns where the synthesized MP3 is written.
func (s *Synthesizer) OutputPath() string {
	return s.outputPath
}

// ShapeText adds subtle pacing cues without being dramatic. Makes the
// delivery softer and less robotic.
func ShapeText(text string) string {
	if text == "" {
		return text
	}

	shaped := strings.TrimSpace(text)

	// Gentle pauses after sentences.
	shaped = strings.ReplaceAll(shaped, ". ", ".  ")
	shaped = strings.ReplaceAll(shaped, "! ", "!  ")
	shaped = strings.ReplaceAll(shaped, "? ", "?  ")

	// Soft breath before affectionate phrases.
	shaped = strings.ReplaceAll(shaped, "I’m here", "I’m here…")
	shaped = strings.ReplaceAll(shaped, "I'm here", "I'm here…")

	return shaped
}

// Speak synthesizes text to the output MP3. It tries the primary voice
// first, then the fallback voice, and never returns an error to the
// caller's steward-facing path; failures collapse into ResultError.
func (s *Synthesizer) Speak(ctx context.Context, text string) (Result, error) {
	if !s.IsAvailable() {
		return ResultError, fmt.Errorf("TTS API key not configured")
	}

	shaped := ShapeText(text)

	// Remove the previous file so players never replay a stale clip.
	if _, err := os.Stat(s.outputPath); err == nil {
		_ = os.Remove(s.outputPath)
	}

	if err := s.synthesize(ctx, shaped, s.primaryVoice); err == nil {
		return ResultCloud, nil
	}

	if err := s.synthesize(ctx, shaped, s.fallbackVoice); err != nil {
		return ResultError, fmt.Errorf("both voices failed: %w", err)
	}
	return ResultFallback, nil
}

func (s *Synthesizer) synthesize(ctx context.Context, text, voice string) error {
	payload := map[string]string{
		"model": s.model,
		"voice": voice,
		"input": text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", ttsEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create TTS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("TTS API error (status %d): %s", resp.StatusCode, string(errBody))
	}

	out, err := os.Create(s.outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio stream: %w", err)
	}
	return nil
}
