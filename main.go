package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/auth"
	"github.com/LugiaKB/cinemind-backend/pkg/cache"
	"github.com/LugiaKB/cinemind-backend/pkg/catalog"
	"github.com/LugiaKB/cinemind-backend/pkg/config"
	"github.com/LugiaKB/cinemind-backend/pkg/database"
	"github.com/LugiaKB/cinemind-backend/pkg/handlers"
	"github.com/LugiaKB/cinemind-backend/pkg/llm"
	"github.com/LugiaKB/cinemind-backend/pkg/logging"
	"github.com/LugiaKB/cinemind-backend/pkg/middleware"
	"github.com/LugiaKB/cinemind-backend/pkg/repositories"
	"github.com/LugiaKB/cinemind-backend/pkg/retry"
	"github.com/LugiaKB/cinemind-backend/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Log startup configuration
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("oracle_provider", cfg.Oracle.Provider),
		zap.String("oracle_model", cfg.Oracle.Model))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := retry.Do(ctx, retry.StartupConfig(), logger, "postgres",
		func(ctx context.Context) (*database.DB, error) {
			return database.NewConnection(ctx, &database.Config{
				URL:            cfg.Database.ConnectionString(),
				MaxConnections: cfg.Database.MaxConnections,
			})
		})
	if err != nil {
		return err
	}
	defer db.Close()

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(sqlDB, logger.Named("migrations")); err != nil {
		_ = sqlDB.Close()
		return err
	}
	_ = sqlDB.Close()

	redisClient, err := retry.Do(ctx, retry.StartupConfig(), logger, "redis",
		func(ctx context.Context) (*redis.Client, error) {
			return database.NewRedisClient(ctx, &cfg.Redis)
		})
	if err != nil {
		// The keyword cache is optional; run without it.
		logger.Warn("Redis unavailable, keyword cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	oracle, err := llm.NewOracle(ctx, cfg.Oracle, logger)
	if err != nil {
		return err
	}

	validator, err := auth.NewJWKSClient(ctx, &auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		return err
	}
	authMiddleware := auth.NewMiddleware(auth.NewAuthService(validator, logger), logger)

	// Repositories
	profileRepo := repositories.NewProfileRepository(db)
	questionnaireRepo := repositories.NewQuestionnaireRepository(db)
	genreRepo := repositories.NewGenreRepository(db)
	moodRepo := repositories.NewMoodRepository(db)
	blacklistRepo := repositories.NewBlacklistRepository(db)
	recommendationRepo := repositories.NewRecommendationRepository(db)

	// Services
	catalogClient := catalog.NewClient(cfg.Catalog, logger)
	keywordCache := cache.NewKeywordCache(redisClient, cfg.Recommendations.KeywordCacheTTL, logger)

	scoringService := services.NewScoringService(db, profileRepo, questionnaireRepo, logger)
	preferenceService := services.NewPreferenceService(profileRepo, genreRepo, moodRepo, logger)
	recommendationService := services.NewRecommendationService(services.RecommendationDeps{
		Tx:          db,
		Profiles:    profileRepo,
		Genres:      genreRepo,
		Blacklist:   blacklistRepo,
		Moods:       moodRepo,
		Sets:        recommendationRepo,
		Translator:  services.NewQueryTranslator(oracle, cfg.Oracle.Temperature, cfg.Recommendations.MaxKeywords, logger),
		Resolver:    services.NewCatalogResolver(catalogClient, keywordCache, logger),
		Discoverer:  services.NewCandidateDiscoverer(catalogClient, logger),
		Enricher:    services.NewThumbnailEnricher(catalogClient, cfg.Catalog.PlaceholderURL, logger),
		ResultCount: cfg.Recommendations.ResultCount,
	}, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewProfileHandler(scoringService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPreferencesHandler(preferenceService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewRecommendationsHandler(recommendationService, logger).RegisterRoutes(mux, authMiddleware)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.RequestLogger(logger.Named("http"))(mux),
		ReadHeaderTimeout: 10 * time.Second,
		// Generation makes one oracle call plus several catalog round trips.
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting cinemind", zap.String("addr", server.Addr), zap.String("version", cfg.Version))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
