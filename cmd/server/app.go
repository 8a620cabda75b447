package main

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prudhvinik1/electoralsync/internal/config"
	"github.com/prudhvinik1/electoralsync/internal/database"
	"github.com/prudhvinik1/electoralsync/internal/electoralapi"
	"github.com/prudhvinik1/electoralsync/internal/metrics"
	"github.com/prudhvinik1/electoralsync/internal/repositories"
	"github.com/prudhvinik1/electoralsync/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the wired service graph shared by serve and the one-shot sync commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redis.Client
	registry *prometheus.Registry

	audit     *services.SyncAuditLog
	contexts  *services.ElectoralContextProvider
	engine    *services.SyncEngine
	electoral *services.ElectoralService
	auth      *services.AuthService
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(a.registry)
	if err != nil {
		return nil, err
	}

	a.pool, err = database.NewPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	// Without Redis each replica keeps its own bearer token.
	var tokenStore repositories.TokenRepository = repositories.NewMemoryTokenRepository()
	if cfg.RedisURL != "" {
		a.redis, err = database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		tokenStore = repositories.NewRedisTokenRepository(a.redis)
	}

	retry := electoralapi.RetryPolicy{MaxAttempts: uint(cfg.MaxAttempts)}
	httpClient := &http.Client{}

	tokens := electoralapi.NewTokenManager(electoralapi.TokenManagerConfig{
		TokenURL:     cfg.TokenURL(),
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RenewMargin:  cfg.RenewMargin,
		Timeout:      cfg.RequestTimeout,
		Retry:        retry,
	}, tokenStore, httpClient, logger, m)
	client := electoralapi.NewHTTPClient(cfg.APIBaseURL, tokens, httpClient, cfg.RequestTimeout, retry, logger)

	repo := repositories.NewPostgresElectoralEventRepository(a.pool)
	a.audit = services.NewSyncAuditLog(repositories.NewPostgresSyncLogRepository(a.pool), logger)
	a.contexts = services.NewElectoralContextProvider(repo, cfg.ContextCacheTTL, logger, m)
	a.engine = services.NewSyncEngine(client, repo, a.audit, a.contexts, cfg.SyncTypeConcurrency, logger, m)
	a.electoral = services.NewElectoralService(repo, a.contexts)
	a.auth = services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}
