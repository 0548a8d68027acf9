// Package main is the observatory: an authoritative WebSocket server
// exposing one companion to remote stewards. It only wires
// dependencies; no game logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nebulazenith/sanctuary/internal/chat"
	"github.com/nebulazenith/sanctuary/internal/engine"
	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/infra/ai"
	"github.com/nebulazenith/sanctuary/internal/infra/memory"
	"github.com/nebulazenith/sanctuary/internal/infra/storage"
	"github.com/nebulazenith/sanctuary/internal/network"
	"github.com/nebulazenith/sanctuary/internal/platform/config"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
	"github.com/nebulazenith/sanctuary/internal/platform/metrics"
)

func main() {
	log.Println("[OBSERVATORY] Initializing Nebula Zenith Sanctuary server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLogger := logger.NewLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	now := time.Now()

	appLogger.Info("Initializing SQLite database " + cfg.SQLitePath)
	db, err := storage.InitSQLite(cfg.SQLitePath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	store := storage.NewSQLiteStore(db)

	appLogger.Info("Bootstrapping journal...")
	eventLog := events.NewLog(store, appLogger)

	session, err := engine.LoadOrCreate(ctx, cfg.CompanionName, store, eventLog, appLogger, now)
	if err != nil {
		appLogger.Error("Failed to load companion: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Bootstrapping AI companion voice...")
	budgetGate := ai.NewBudgetGate(cfg.DailyBudgetUSD, cfg.TotalBudgetUSD)
	var provider ai.LLMProvider
	if cfg.Provider == "gemini" {
		provider, err = ai.NewGeminiProvider(ctx, cfg.GeminiKey, budgetGate)
		if err != nil {
			appLogger.Error("Failed to initialize Gemini: " + err.Error())
			os.Exit(1)
		}
	} else {
		provider = ai.NewOpenAIProvider(cfg.OpenAIKey, budgetGate)
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

	appLogger.Info("Starting heartbeat...")
	ticker := engine.NewTicker(session, expedition, eventLog, appLogger)
	go ticker.Start(ctx)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(network.Deps{
		Session:    session,
		Expedition: expedition,
		Arcade:     arcade,
		Chat:       orchestrator,
		Logger:     appLogger,
	})
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	http.HandleFunc("/ws", hub.ServeWS)
	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())
	http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		view := session.View(r.Context(), time.Now())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"snapshot":  view.Snapshot,
			"mood":      view.Mood,
			"mood_line": view.MoodLine,
			"avatar":    view.Avatar,
			"trait":     view.Trait,
		})
	})
	http.HandleFunc("/api/journal", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eventLog.Recent(50))
	})

	server := &http.Server{Addr: cfg.ListenAddr}
	go func() {
		appLogger.Info("Observatory listening on " + cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed: " + err.Error())
			cancel()
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		appLogger.Info("Shutdown signal received")
	case <-ctx.Done():
	}

	ticker.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	appLogger.Info("Observatory stopped")
}
