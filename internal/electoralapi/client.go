// Package electoralapi talks to the national electoral commission API: bearer token
// lifecycle and the electoral event type/event data endpoints.
package electoralapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds each individual call to the commission API.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize is the maximum accepted response body (10MB).
	MaxResponseSize = 10 * 1024 * 1024

	UserAgent = "electoralsync/1.0"

	electoralEventPath = "/api/v1/ElectoralEvent"
)

// Client fetches reference data from the commission.
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/prudhvinik1/electoralsync/internal/electoralapi Client
type Client interface {
	// ListElectoralEventTypes returns the full electoral event type taxonomy
	ListElectoralEventTypes(ctx context.Context) ([]EventTypeRecord, error)

	// ListElectoralEvents returns the events of one commission event type
	ListElectoralEvents(ctx context.Context, eventTypeID int) ([]EventRecord, error)
}

// TokenProvider supplies bearer tokens. *TokenManager satisfies it.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	timeout    time.Duration
	retry      RetryPolicy
	logger     *zap.Logger
}

// NewHTTPClient creates a commission API client. If timeout is 0, uses DefaultTimeout.
func NewHTTPClient(baseURL string, tokens TokenProvider, httpClient *http.Client, timeout time.Duration, policy RetryPolicy, logger *zap.Logger) *HTTPClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		timeout:    timeout,
		retry:      policy,
		logger:     logger.Named("electoral_api"),
	}
}

func (c *HTTPClient) ListElectoralEventTypes(ctx context.Context) ([]EventTypeRecord, error) {
	var records []EventTypeRecord
	if err := c.getJSON(ctx, electoralEventPath, nil, &records); err != nil {
		return nil, fmt.Errorf("failed to list electoral event types: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) ListElectoralEvents(ctx context.Context, eventTypeID int) ([]EventRecord, error) {
	query := url.Values{"ElectoralEventTypeID": []string{strconv.Itoa(eventTypeID)}}

	var records []EventRecord
	if err := c.getJSON(ctx, electoralEventPath, query, &records); err != nil {
		return nil, fmt.Errorf("failed to list electoral events for type %d: %w", eventTypeID, err)
	}
	return records, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	// Token failures are terminal for this call; the token manager retries on its own.
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return err
	}

	body, err := retry(ctx, c.retry, c.logger, path, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, target, token)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", target, err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, target, token string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", ErrTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.Invalidate(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("Failed to invalidate rejected token", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, NewHTTPError(resp.StatusCode, target, resp.Status))
	}

	if resp.StatusCode != http.StatusOK {
		httpErr := NewHTTPError(resp.StatusCode, target, resp.Status)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %w", ErrTransient, httpErr)
		}
		return nil, httpErr
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes",
			resp.ContentLength, MaxResponseSize)
	}

	// +1 to detect if limit exceeded
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrTransient, err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response size exceeds maximum allowed size of %d bytes", MaxResponseSize)
	}

	return body, nil
}
