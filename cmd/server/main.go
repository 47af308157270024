package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/macrobasket/etf-server/internal/clients/freecurrency"
	"github.com/macrobasket/etf-server/internal/clients/restcountries"
	"github.com/macrobasket/etf-server/internal/config"
	"github.com/macrobasket/etf-server/internal/database"
	"github.com/macrobasket/etf-server/internal/modules/assistant"
	"github.com/macrobasket/etf-server/internal/modules/etf"
	"github.com/macrobasket/etf-server/internal/modules/health"
	"github.com/macrobasket/etf-server/internal/modules/history"
	"github.com/macrobasket/etf-server/internal/modules/panel"
	"github.com/macrobasket/etf-server/internal/scheduler"
	"github.com/macrobasket/etf-server/internal/server"
	"github.com/macrobasket/etf-server/pkg/logger"
)

func main() {
	// Load configuration first so the log level is honored
	cfg, err := config.Load()

	log := logger.New(logger.Config{
		Level:  levelOrDefault(cfg),
		Pretty: true,
	})

	log.Info().Msg("Starting ETF server")

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	profile, err := health.ParseProfile(cfg.HealthProfile)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid health profile")
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Pipeline service and snapshot cache
	pipeline := etf.NewService(etf.Config{
		PanelPath:      cfg.PanelPath,
		Schema:         panel.DefaultSchema(),
		Metadata:       restcountries.NewClient(log),
		Rates:          freecurrency.NewClient(cfg.FreeCurrencyAPIKey, log),
		Profile:        profile,
		WithHistorical: cfg.FXHistorical,
		Log:            log,
	})
	cache := etf.NewCache(pipeline, log)

	historyRepo := history.NewRepository(db.Conn(), log)

	var askService *assistant.Service
	if cfg.AnthropicAPIKey != "" {
		askService = assistant.NewService(cfg.AnthropicAPIKey, cfg.AssistantModel, log)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, assistant endpoint disabled")
	}

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	snapshotJob := scheduler.NewSnapshotJob(cache, historyRepo, cfg.SnapshotMaxAge, log)
	if err := sched.AddJob(cfg.HistoryCron, snapshotJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register history snapshot job")
	}

	// Warm the cache and log an initial value. Upstream failures here are
	// not fatal for the process; handlers retry on demand.
	go func() {
		if err := sched.RunNow(snapshotJob); err != nil {
			log.Error().Err(err).Msg("Initial snapshot failed")
		}
	}()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:           cfg.Port,
		Log:            log,
		Cache:          cache,
		History:        historyRepo,
		Assistant:      askService,
		SnapshotMaxAge: cfg.SnapshotMaxAge,
		DevMode:        cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().
		Int("port", cfg.Port).
		Str("profile", string(profile)).
		Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func levelOrDefault(cfg *config.Config) string {
	if cfg == nil {
		return "info"
	}
	return cfg.LogLevel
}
