package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/figdoc/internal/api"
	"github.com/dgallion1/figdoc/internal/config"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/figma"
	"github.com/dgallion1/figdoc/internal/pipeline"
	"github.com/dgallion1/figdoc/internal/render"
	"github.com/dgallion1/figdoc/internal/segment"
	"github.com/dgallion1/figdoc/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(cfg)
	if err != nil {
		log.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	renderer, err := render.ForFormat(cfg.OutputFormat)
	if err != nil {
		log.Error("renderer init failed", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	fetcher := figma.NewClient(cfg.FigmaAPIURL, cfg.FigmaTimeout, log)
	stats := enhance.NewLLMStats(time.Hour)

	var factory pipeline.CapabilityFactory
	if cfg.Provider != "off" && cfg.Credential() != "" {
		factory = pipeline.ProviderFactory(providerConfig(cfg))
	} else {
		log.Warn("enhancement disabled, reports will be basic", "provider", cfg.Provider)
	}
	gen := pipeline.NewGenerator(factory, pipeline.GeneratorConfig{
		Enhance: enhance.Config{
			Concurrency: cfg.EnhanceConcurrency,
			CallTimeout: cfg.EnhanceCallTimeout,
			MaxAttempts: cfg.EnhanceMaxAttempts,
		},
		Facts:   segment.DefaultConfig(),
		Timeout: cfg.GenerateTimeout,
	}, stats, log)

	// Initialize pipeline.
	worker := pipeline.NewWorker(fetcher, gen, renderer, store, cfg.Credential(), log)
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
		JobCacheSize: cfg.JobCacheSize,
	}, worker, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, store, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()
		fetcher.Close()
	}()

	log.Info("starting figdoc",
		"port", cfg.Port,
		"provider", cfg.Provider,
		"format", cfg.OutputFormat,
		"store", store.Kind(),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func providerConfig(cfg config.Config) enhance.ProviderConfig {
	pc := enhance.ProviderConfig{
		Provider:    cfg.Provider,
		GroqModel:   cfg.GroqModel,
		GroqBaseURL: cfg.GroqBaseURL,
		GeminiModel: cfg.GeminiModel,
	}
	if cfg.Provider == enhance.ProviderGroq {
		pc.GeminiFallbackKey = cfg.GeminiAPIKey
	}
	return pc
}

func openStore(cfg config.Config) (storage.Store, error) {
	if cfg.S3.Enabled() {
		return storage.NewS3Store(storage.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			UseSSL:    cfg.S3.UseSSL,
		})
	}
	return storage.NewLocalStore(cfg.OutputDir)
}
