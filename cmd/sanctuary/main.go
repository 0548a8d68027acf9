// Package main is the terminal front-end for the Nebula Zenith
// Sanctuary. It only wires dependencies; no game logic belongs here.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nebulazenith/sanctuary/internal/chat"
	"github.com/nebulazenith/sanctuary/internal/engine"
	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/infra/ai"
	"github.com/nebulazenith/sanctuary/internal/infra/memory"
	"github.com/nebulazenith/sanctuary/internal/infra/storage"
	"github.com/nebulazenith/sanctuary/internal/infra/voice"
	"github.com/nebulazenith/sanctuary/internal/platform/config"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
	"github.com/nebulazenith/sanctuary/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLogger := logger.NewLogger()
	ctx := context.Background()
	now := time.Now()

	store, eventStore, err := buildStore(cfg)
	if err != nil {
		appLogger.Error("Failed to initialize storage: " + err.Error())
		os.Exit(1)
	}

	eventLog := events.NewLog(eventStore, appLogger)

	session, err := engine.LoadOrCreate(ctx, cfg.CompanionName, store, eventLog, appLogger, now)
	if err != nil {
		appLogger.Error("Failed to load companion: " + err.Error())
		os.Exit(1)
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		appLogger.Error("Failed to initialize LLM provider: " + err.Error())
		os.Exit(1)
	}
	if !provider.IsAvailable() {
		appLogger.Warn("No LLM API key configured; chat will use the fallback line")
	}

	steward := memory.NewSteward(cfg.MemoryPath, appLogger)
	orchestrator := chat.NewOrchestrator(chat.Deps{
		Provider: provider,
		Memory:   steward,
		EventLog: eventLog,
		Logger:   appLogger,
		Style:    chat.ParseStyle(cfg.ChatStyle),
	})

	expedition := engine.NewExpeditionSystem(cfg.ExpStatePath, session, eventLog, appLogger)
	arcade := engine.NewArcadeSystem(session, eventLog)

	app := &tui.App{
		Session:    session,
		Expedition: expedition,
		Arcade:     arcade,
		Chat:       orchestrator,
	}
	if cfg.VoiceEnabled {
		app.Voice = voice.NewSynthesizer(cfg.OpenAIKey, cfg.VoiceOutput)
		app.Player = voice.NewPlayer()
	}

	if err := tui.Run(app); err != nil {
		appLogger.Error("TUI exited with error: " + err.Error())
		os.Exit(1)
	}
}

func buildStore(cfg config.Config) (storage.SnapshotStore, events.Persister, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		db, err := storage.InitSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		s := storage.NewSQLiteStore(db)
		return s, s, nil
	case "file", "":
		s, err := storage.NewFileStore(cfg.SaveDir)
		return s, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func buildProvider(ctx context.Context, cfg config.Config) (ai.LLMProvider, error) {
	budgetGate := ai.NewBudgetGate(cfg.DailyBudgetUSD, cfg.TotalBudgetUSD)
	switch cfg.Provider {
	case "gemini":
		return ai.NewGeminiProvider(ctx, cfg.GeminiKey, budgetGate)
	default:
		return ai.NewOpenAIProvider(cfg.OpenAIKey, budgetGate), nil
	}
}
