package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/config"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/handler"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/cache"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/client"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/memstore"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/observability"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/resilience"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/port"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_memstore", cfg.UseMemstore),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "smart-financial-coach")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	analysisCache := cache.New[any](cfg.CacheTTL)

	// --- Transaction store ---
	var store port.TransactionStore

	if cfg.UseMemstore {
		logger.Info("using in-memory transaction store")
		mem := memstore.New()
		if cfg.SeedCSV != "" {
			n, err := mem.SeedCSV(cfg.SeedAccountID, cfg.SeedCSV)
			if err != nil {
				logger.Fatal("failed to seed transactions", zap.Error(err))
			}
			logger.Info("seeded transactions from CSV",
				zap.String("account_id", cfg.SeedAccountID),
				zap.String("path", cfg.SeedCSV),
				zap.Int("count", n),
			)
		}
		store = mem
	} else {
		logger.Info("using ledger API as transaction store",
			zap.String("ledger_url", cfg.LedgerAPIURL),
		)
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
		}
		cb := resilience.NewCircuitBreaker("ledger-api")
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		store = client.NewTransactionsClient(httpClient, cfg.LedgerAPIURL, cb, resilienceCfg, metrics)
	}

	// --- Service ---
	coachSvc := service.NewCoach(store, analysisCache, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(coachSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
