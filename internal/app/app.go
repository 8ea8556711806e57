// Package app wires the configured components into a running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/nkjh2020/investment-manager/internal/api"
	"github.com/nkjh2020/investment-manager/internal/api/handlers"
	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
	"github.com/nkjh2020/investment-manager/internal/domain/price"
	"github.com/nkjh2020/investment-manager/internal/domain/signals"
	"github.com/nkjh2020/investment-manager/internal/infra/cache"
	"github.com/nkjh2020/investment-manager/internal/infra/database/postgres"
	"github.com/nkjh2020/investment-manager/internal/infra/kis"
	"github.com/nkjh2020/investment-manager/internal/infra/yahoo"
	"github.com/nkjh2020/investment-manager/internal/pkg/config"
	"github.com/nkjh2020/investment-manager/internal/service/market"
	"github.com/nkjh2020/investment-manager/internal/service/marketdata"
	portfoliosvc "github.com/nkjh2020/investment-manager/internal/service/portfolio"
	signalssvc "github.com/nkjh2020/investment-manager/internal/service/signals"
)

// App holds the process-wide components, built once and shared by reference
type App struct {
	Config       *config.Config
	Prices       *marketdata.PriceSeriesCache
	Regime       *market.Classifier
	Portfolio    *portfoliosvc.Service
	Orchestrator *signalssvc.Orchestrator

	db    *postgres.Pool
	redis *redis.Client
}

// New builds every component from cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.Cache.Backend == config.CacheBackendRedis {
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			PoolTimeout:  cfg.Redis.PoolTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
	}

	var targets portfolio.TargetRepository = portfoliosvc.NewMemoryTargetRepository()
	if cfg.Database.Enabled {
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.db = pool
		if err := pool.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		targets = postgres.NewTargetRepository(pool.Pool)
	} else {
		log.Warn().Msg("DB_ENABLED=false, rebalance targets are kept in memory")
	}

	// Market data
	seriesStore, indexStore, resultStore := a.stores()
	a.Prices = marketdata.NewPriceSeriesCache(
		yahoo.NewClient(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout),
		seriesStore,
		indexStore,
		marketdata.Config{
			DailyTTL:     cfg.Cache.DailySeriesTTL,
			IndexTTL:     cfg.Cache.IndexTTL,
			FetchTimeout: cfg.Yahoo.Timeout,
		},
	)
	a.Regime = market.NewClassifier(a.Prices)

	// Broker
	auth := kis.NewAuthClient(cfg.KIS.BaseURL, cfg.KIS.Timeout)
	rest := kis.NewRESTClient(auth, cfg.KIS.BaseURL, cfg.KIS.IsPaper, cfg.KIS.Timeout)
	holdings := kis.NewBalanceProvider(rest, kis.StaticAccounts(cfg.KIS.Accounts))
	if len(cfg.KIS.Accounts) == 0 {
		log.Warn().Msg("No KIS accounts configured, holdings requests will fail")
	}

	a.Portfolio = portfoliosvc.NewService(holdings, targets)
	a.Orchestrator = signalssvc.NewOrchestrator(holdings, a.Prices, a.Regime, a.Portfolio, resultStore, signalssvc.Config{
		SignalsTTL:   cfg.Cache.SignalsTTL,
		RefreshScope: signalssvc.RefreshScope(cfg.Signals.RefreshScope),
		MaxFanout:    cfg.Signals.MaxFanout,
	})

	log.Info().
		Str("cache_backend", cfg.Cache.Backend).
		Bool("db_enabled", cfg.Database.Enabled).
		Int("kis_accounts", len(cfg.KIS.Accounts)).
		Str("refresh_scope", cfg.Signals.RefreshScope).
		Msg("✅ Components initialized")

	return a, nil
}

func (a *App) stores() (cache.Store[[]price.PricePoint], cache.Store[price.IndexSnapshot], cache.Store[signals.SignalsResponse]) {
	retention := a.Config.Cache.StaleRetention
	if a.redis == nil {
		return cache.NewMemoryStore[[]price.PricePoint]().WithRetention(retention),
			cache.NewMemoryStore[price.IndexSnapshot]().WithRetention(retention),
			cache.NewMemoryStore[signals.SignalsResponse]().WithRetention(0)
	}

	prefix := a.Config.Cache.RedisKeyPrefix
	return cache.NewRedisStore[[]price.PricePoint](a.redis, prefix+"series:", retention),
		cache.NewRedisStore[price.IndexSnapshot](a.redis, prefix+"index:", retention),
		cache.NewRedisStore[signals.SignalsResponse](a.redis, prefix+"signals:", 0)
}

// Router builds the HTTP router over the app's services
func (a *App) Router(version string) *api.Router {
	deps := handlers.HealthDeps{Prices: a.Prices}
	if a.db != nil {
		deps.DB = a.db
	}
	if a.redis != nil {
		deps.Redis = a.redis
	}

	return api.NewRouter(a.Config, api.Deps{
		Signals:   a.Orchestrator,
		Portfolio: a.Portfolio,
		Health:    deps,
		Version:   version,
	})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully
func (a *App) Serve(ctx context.Context, version string) error {
	addr := ":" + a.Config.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      a.Router(version).Engine(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", addr).Msg("🎯 API Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("🛑 Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the database pool and redis client
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}
