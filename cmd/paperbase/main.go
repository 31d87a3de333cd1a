package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/chunker"
	"github.com/kailas-cloud/paperbase/internal/config"
	dbredis "github.com/kailas-cloud/paperbase/internal/db/redis"
	"github.com/kailas-cloud/paperbase/internal/knowledge"
	logpkg "github.com/kailas-cloud/paperbase/internal/logger"
	"github.com/kailas-cloud/paperbase/internal/metrics"
	chunkrepo "github.com/kailas-cloud/paperbase/internal/repository/chunk"
	documentrepo "github.com/kailas-cloud/paperbase/internal/repository/document"
	"github.com/kailas-cloud/paperbase/internal/repository/embcache"
	fieldlogrepo "github.com/kailas-cloud/paperbase/internal/repository/fieldlog"
	chiTransport "github.com/kailas-cloud/paperbase/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/paperbase/internal/transport/openai"
	answeruc "github.com/kailas-cloud/paperbase/internal/usecase/answer"
	fieldsuc "github.com/kailas-cloud/paperbase/internal/usecase/fields"
	formuc "github.com/kailas-cloud/paperbase/internal/usecase/form"
	healthuc "github.com/kailas-cloud/paperbase/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/paperbase/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/paperbase/internal/usecase/search"
	"github.com/kailas-cloud/paperbase/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting paperbase API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register provider metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()

	// Provider collaborators — composition root
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		Provider: cfg.Embedding.Provider,
		Timeout:  time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:   logger,
	})
	cacheTTL := time.Duration(cfg.Embedding.CacheTTL) * time.Second
	embedder := embcache.New(baseEmbedder, store, cacheTTL, metrics.EmbeddingCacheTotal, logger)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Provider:    cfg.Generation.Provider,
		Temperature: cfg.Generation.Temperature,
		Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("generation_model", cfg.Generation.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Repositories
	chunkRepo := chunkrepo.New(store, cfg.Embedding.Dimensions)
	if err := chunkRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create chunk indexes", zap.Error(err))
	}
	docRepo := documentrepo.New(store)
	fieldLog := fieldlogrepo.New(store)

	// Pipeline services
	splitter := chunker.New(cfg.Chunking.MaxChunkSize, cfg.Chunking.SimilarityThreshold, nil)
	ingestSvc := ingestuc.New(docRepo, chunkRepo, splitter, embedder, logger)
	searchSvc := searchuc.New(chunkRepo, embedder)
	answerSvc := answeruc.New(searchSvc, generator, cfg.Answer.MinRelevance, logger).
		WithTopK(cfg.Answer.TopK)
	fieldsSvc := fieldsuc.New(fieldLog, logger)
	formSvc := formuc.New(fieldsSvc, logger)

	app := knowledge.New(
		ingestSvc, searchSvc, answerSvc, fieldsSvc, formSvc,
		knowledge.NewRegexParser(), logger,
	)

	healthSvc := healthuc.New(store, baseEmbedder, generator)

	server := chiTransport.NewServer(app, healthSvc, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
