// Package handlers exposes the electoral reference data and sync operations over HTTP.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ServerOption configures the router.
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
	extra       map[string]http.Handler
}

// WithMiddlewares adds middleware after the built-in request id, logging and recovery.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHandler mounts an additional handler, e.g. /metrics.
func WithHandler(pattern string, h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.extra[pattern] = h
	}
}

func NewServer(
	electoral *ElectoralHandler,
	syncHandler *SyncHandler,
	verifier TokenVerifier,
	logger *zap.Logger,
	opts ...ServerOption,
) *chi.Mux {
	cfg := &serverConfig{extra: map[string]http.Handler{}}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	electoral.Routes(r)
	syncHandler.Routes(r, r.With(RequireOperator(verifier, logger)))

	for pattern, h := range cfg.extra {
		r.Handle(pattern, h)
	}

	return r
}
