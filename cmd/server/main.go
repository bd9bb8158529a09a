package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/sanks011/Influence-IQ/internal/aggregate"
	"github.com/sanks011/Influence-IQ/internal/analysis"
	"github.com/sanks011/Influence-IQ/internal/config"
	"github.com/sanks011/Influence-IQ/internal/db"
	"github.com/sanks011/Influence-IQ/internal/handler"
	"github.com/sanks011/Influence-IQ/internal/middleware"
	"github.com/sanks011/Influence-IQ/internal/repository"
	"github.com/sanks011/Influence-IQ/internal/router"
	"github.com/sanks011/Influence-IQ/internal/scoring"
	"github.com/sanks011/Influence-IQ/internal/service"
	"github.com/sanks011/Influence-IQ/internal/source"
)

const refreshInterval = time.Hour

func main() {
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "influenceiq")
	logger := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	repo := repository.NewInfluenceRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	cache := service.NewCacheService(cfg.RedisURL, logger)
	defer cache.Close()

	handler.InitMetrics(pool)

	rules, err := analysis.LoadRules(cfg.TermRulesPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.TermRulesPath).Msg("failed to load term rules")
	}
	sentiment := analysis.NewSentiment(cfg.Scoring.SentimentMultiplier)

	youtube := source.NewYouTube(cfg.YouTubeAPIKey, "", cfg.Scoring.SourceTimeout)
	wikipedia := source.NewWikipedia("", cfg.Scoring.SourceTimeout)
	news := source.NewNews(cfg.NewsFeedURL, cfg.Scoring.SourceTimeout)
	reddit := source.NewReddit("", cfg.Scoring.SourceTimeout)

	agg := aggregate.New(
		youtube, wikipedia, news, reddit, cache,
		cfg.Scoring.SourceTimeout, logger,
		func(src string) {
			handler.Metrics.SourceFailures.WithLabelValues(src).Inc()
		},
	)

	fallback := scoring.NewFallbackScorer(cfg.Scoring)
	synthesizer := scoring.NewSynthesizer(cfg, fallback, logger)

	svc := service.NewInfluenceService(
		repo, cache, agg, sentiment, rules, synthesizer,
		service.Hooks{
			CacheHit:  handler.Metrics.CacheHits.Inc,
			CacheMiss: handler.Metrics.CacheMisses.Inc,
			Fallback:  handler.Metrics.SynthesisFallback.Inc,
		},
		cfg.Scoring.PipelineTimeout,
		logger,
	)

	worker := service.NewRefreshWorker(repo, svc, refreshInterval, logger)
	go worker.Start(ctx)
	defer worker.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "InfluenceIQ API",
		ServerHeader: "InfluenceIQ",
	})

	router.Setup(app, &router.Handlers{
		Influence: handler.NewInfluenceHandler(svc),
		Health:    handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("InfluenceIQ backend starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
