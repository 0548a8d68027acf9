// Package config loads runtime configuration from the environment,
// with a .env file honored for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime knob for the sanctuary.
type Config struct {
	// Companion
	CompanionName string `env:"COMPANION_NAME" envDefault:"Nebula"`

	// LLM
	OpenAIKey      string  `env:"OPENAI_API_KEY"`
	GeminiKey      string  `env:"GEMINI_API_KEY"`
	Provider       string  `env:"LLM_PROVIDER" envDefault:"openai"` // openai | gemini
	ChatStyle      string  `env:"CHAT_STYLE" envDefault:"whimsical"`
	DailyBudgetUSD float64 `env:"LLM_DAILY_BUDGET_USD" envDefault:"1.00"`
	TotalBudgetUSD float64 `env:"LLM_TOTAL_BUDGET_USD" envDefault:"10.00"`

	// Voice
	VoiceEnabled bool   `env:"VOICE_ENABLED" envDefault:"false"`
	VoiceOutput  string `env:"VOICE_OUTPUT" envDefault:"output.mp3"`

	// Persistence
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"` // file | sqlite
	SaveDir      string `env:"SAVE_DIR" envDefault:".sanctuary"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:".sanctuary/sanctuary.db"`
	MemoryPath   string `env:"MEMORY_PATH" envDefault:".sanctuary/memory.json"`
	ExpStatePath string `env:"EXP_STATE_PATH" envDefault:".sanctuary/exp_state.json"`

	// Server (observatory front-end)
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
