package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/russellconstruction9/RRsolutions/internal/api"
	"github.com/russellconstruction9/RRsolutions/internal/branding"
	"github.com/russellconstruction9/RRsolutions/internal/config"
	"github.com/russellconstruction9/RRsolutions/internal/estimate"
	"github.com/russellconstruction9/RRsolutions/internal/generate"
	"github.com/russellconstruction9/RRsolutions/internal/markdown"
	"github.com/russellconstruction9/RRsolutions/internal/pipeline"
	"github.com/russellconstruction9/RRsolutions/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not load .env", "error", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brand, err := branding.Load(cfg.BrandingFile)
	if err != nil {
		log.Error("branding", "error", err)
		os.Exit(1)
	}
	conv, err := markdown.New(cfg.MarkdownRenderer)
	if err != nil {
		log.Error("markdown renderer", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	gemini, err := generate.NewClient(ctx, generate.Options{
		APIKey:        cfg.GeminiAPIKey,
		Model:         cfg.GeminiModel,
		BaseURL:       cfg.GeminiBaseURL,
		MaxConcurrent: cfg.MaxConcurrentGenerate,
		Timeout:       cfg.GenerateTimeout,
	})
	if err != nil {
		log.Error("gemini client", "error", err)
		os.Exit(1)
	}

	var (
		sessions session.Store
		closeFn  = func() error { return nil }
	)
	switch cfg.SessionBackend {
	case "redis":
		rdb, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Error("redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		closeFn = rdb.Close
	default:
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	// Initialize pipeline.
	proc := pipeline.NewProcessor(gemini, pipeline.ProcessorConfig{
		Converter:       conv,
		Inspect:         estimate.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		TextHint:        cfg.PDFTextHint,
		MaxPromptTokens: cfg.MaxPromptTokens,
		BudgetTolerance: cfg.BudgetTolerance,
	}, log)
	orch := pipeline.NewOrchestrator(pipeline.Options{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, proc, sessions, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Sessions:     sessions,
		Gemini:       gemini,
		Converter:    conv,
		Branding:     brand,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.GenerateTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if err := closeFn(); err != nil {
			log.Warn("close session store", "error", err)
		}
	}()

	log.Info("starting docugen", "port", cfg.Port, "model", gemini.Model(), "sessions", cfg.SessionBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
