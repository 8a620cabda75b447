package electoralapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prudhvinik1/electoralsync/internal/metrics"
	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/prudhvinik1/electoralsync/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRenewMargin renews the token this long before its expires_in deadline.
	DefaultRenewMargin = 60 * time.Second

	tokenRefreshKey = "token-refresh"
)

// TokenSource performs the client-credential exchange. *clientcredentials.Config
// satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

type TokenManagerConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RenewMargin  time.Duration
	Timeout      time.Duration
	Retry        RetryPolicy
}

// TokenManager caches the commission bearer token and renews it before expiry.
// Concurrent renewals are coalesced into one call to the auth endpoint.
type TokenManager struct {
	source     TokenSource
	store      repositories.TokenRepository
	httpClient *http.Client
	margin     time.Duration
	timeout    time.Duration
	retry      RetryPolicy
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	mu      sync.RWMutex
	current *models.AccessToken
	group   singleflight.Group
}

func NewTokenManager(
	cfg TokenManagerConfig,
	store repositories.TokenRepository,
	httpClient *http.Client,
	logger *zap.Logger,
	m *metrics.Metrics,
) *TokenManager {
	source := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return newTokenManager(source, cfg, store, httpClient, logger, m)
}

func newTokenManager(
	source TokenSource,
	cfg TokenManagerConfig,
	store repositories.TokenRepository,
	httpClient *http.Client,
	logger *zap.Logger,
	m *metrics.Metrics,
) *TokenManager {
	if cfg.RenewMargin <= 0 {
		cfg.RenewMargin = DefaultRenewMargin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if store == nil {
		store = repositories.NewMemoryTokenRepository()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenManager{
		source:     source,
		store:      store,
		httpClient: httpClient,
		margin:     cfg.RenewMargin,
		timeout:    cfg.Timeout,
		retry:      cfg.Retry,
		logger:     logger.Named("token_manager"),
		metrics:    m,
		now:        time.Now,
	}
}

// GetAccessToken returns a token valid for at least the renew margin, renewing it
// when needed. Callers that give up via ctx stop waiting but do not cancel a renewal
// other callers are waiting on.
func (m *TokenManager) GetAccessToken(ctx context.Context) (string, error) {
	if token := m.cached(); token.ValidFor(m.now(), m.margin) {
		return token.Value, nil
	}

	ch := m.group.DoChan(tokenRefreshKey, func() (any, error) {
		return m.renew(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(*models.AccessToken).Value, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Invalidate drops the cached token so the next call renews it. Used when the API
// rejects a token before its advertised expiry.
func (m *TokenManager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to invalidate access token: %w", err)
	}
	return nil
}

// ObtainToken performs the client-credential exchange with bounded retries. It never
// touches the cache; failures are reported as ErrAuthentication.
func (m *TokenManager) ObtainToken(ctx context.Context) (*models.AccessToken, error) {
	tok, err := retry(ctx, m.retry, m.logger, "obtain_token", func(ctx context.Context) (*oauth2.Token, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		return m.source.Token(context.WithValue(attemptCtx, oauth2.HTTPClient, m.httpClient))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	if tok.Expiry.IsZero() {
		return nil, fmt.Errorf("%w: token response missing expires_in", ErrAuthentication)
	}

	return &models.AccessToken{Value: tok.AccessToken, ExpiresAt: tok.Expiry}, nil
}

func (m *TokenManager) renew(ctx context.Context) (*models.AccessToken, error) {
	// A renewal that finished just before this flight started already did the work.
	if token := m.cached(); token.ValidFor(m.now(), m.margin) {
		return token, nil
	}

	stored, err := m.store.Get(ctx)
	switch {
	case err == nil && stored.ValidFor(m.now(), m.margin):
		m.setCached(stored)
		return stored, nil
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		m.logger.Warn("Failed to read shared access token", zap.Error(err))
	}

	token, err := m.ObtainToken(ctx)
	if err != nil {
		m.metrics.RecordTokenRenewal(false)
		m.logger.Error("Access token renewal failed", zap.Error(err))
		return nil, err
	}
	m.metrics.RecordTokenRenewal(true)

	m.setCached(token)
	if err := m.store.Save(ctx, token); err != nil {
		m.logger.Warn("Failed to share access token", zap.Error(err))
	}

	m.logger.Info("Access token renewed", zap.Time("expires_at", token.ExpiresAt))
	return token, nil
}

func (m *TokenManager) cached() *models.AccessToken {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *TokenManager) setCached(token *models.AccessToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = token
}
