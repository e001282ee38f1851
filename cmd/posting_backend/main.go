package main

import (
	"context"
	"log/slog"
	"os"

	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	"github.com/SscSPs/coa_posting_engine/internal/core/services"
	"github.com/SscSPs/coa_posting_engine/internal/handlers"
	"github.com/SscSPs/coa_posting_engine/internal/middleware"
	"github.com/SscSPs/coa_posting_engine/internal/observability/metrics"
	"github.com/SscSPs/coa_posting_engine/internal/platform/config"
	"github.com/SscSPs/coa_posting_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/coa_posting_engine/internal/repositories/memory"
	"github.com/SscSPs/coa_posting_engine/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metricsCfg := metrics.Config{ServiceName: cfg.ServiceName, Environment: "development"}
	if cfg.IsProduction {
		metricsCfg.Environment = "production"
	}

	repos, closeRepos, err := newRepositories(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	serviceContainer := services.NewServiceContainer(cfg, repos, metrics.Posting(metricsCfg))

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT", slog.String("value", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	apiLimiter := limiter.New(limitermemory.NewStore(), rate)

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", handlers.IdempotencyKeyHeader, "X-Request-ID")

	// Global middleware (logging, recovery, cors, metrics)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(corsCfg),
		middleware.RequestMetrics(metrics.HTTP(metricsCfg)),
	)

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// rate limited per operator, so it runs after authentication
	handlers.RegisterRoutes(r, cfg, serviceContainer, prometheus.DefaultGatherer, middleware.RateLimit(apiLimiter))

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newRepositories builds the repository provider for the configured storage driver.
func newRepositories(cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage, postings are lost on restart")
		return memory.NewRepositoryProvider(memory.NewSeededStore()), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}
