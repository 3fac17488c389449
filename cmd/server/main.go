package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyscover/dyscover-backend/internal/classifier"
	"github.com/dyscover/dyscover-backend/internal/config"
	"github.com/dyscover/dyscover-backend/internal/database"
	"github.com/dyscover/dyscover-backend/internal/handler"
	"github.com/dyscover/dyscover-backend/internal/logger"
	"github.com/dyscover/dyscover-backend/internal/repository"
	"github.com/dyscover/dyscover-backend/internal/router"
	"github.com/dyscover/dyscover-backend/internal/service"
	"github.com/dyscover/dyscover-backend/internal/session"
	"github.com/dyscover/dyscover-backend/internal/speech"
	"github.com/dyscover/dyscover-backend/internal/validator"
	"github.com/dyscover/dyscover-backend/internal/vision"
	"github.com/dyscover/dyscover-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting DysCover Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Collaborator Clients ───────────────────────────────
	synthesizer := speech.NewDeepgramSynthesizer(cfg.DeepgramAPIKey, cfg.DeepgramVoice)
	transcriber := speech.NewWhisperTranscriber(cfg.OpenAIAPIKey)
	analyzer := vision.NewGPTAnalyzer(cfg.OpenAIAPIKey)
	stutterClassifier := classifier.NewClient(cfg.ClassifierURL)

	// ─── Initialize Core State & Services ──────────────────────────────
	sessions := session.NewStore()
	resultRepo := repository.NewResultRepository(pool)

	screeningService := service.NewScreeningService(
		sessions, resultRepo,
		synthesizer, transcriber, analyzer, stutterClassifier,
		rdb, cfg, log,
	)
	dashboardService := service.NewDashboardService(resultRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Screening: handler.NewScreeningHandler(screeningService, cfg),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	reaper := worker.NewSessionReaper(sessions, cfg.SessionIdleTTL, log)
	go reaper.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
