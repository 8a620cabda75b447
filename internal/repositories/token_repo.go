package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/redis/go-redis/v9"
)

const accessTokenKey = "electoral:access_token"

// RedisTokenRepository shares the commission bearer token between replicas.
// Keys expire with the token, so a miss means "renew".
type RedisTokenRepository struct {
	client *redis.Client
	key    string
}

func NewRedisTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client, key: accessTokenKey}
}

func (r *RedisTokenRepository) Get(ctx context.Context) (*models.AccessToken, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	var token models.AccessToken
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal access token: %w", err)
	}
	return &token, nil
}

func (r *RedisTokenRepository) Save(ctx context.Context, token *models.AccessToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal access token: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set access token: %w", err)
	}
	return nil
}

func (r *RedisTokenRepository) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}
	return nil
}

// MemoryTokenRepository is the single-process token store used when Redis is not configured.
type MemoryTokenRepository struct {
	mu    sync.RWMutex
	token *models.AccessToken
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{}
}

func (r *MemoryTokenRepository) Get(_ context.Context) (*models.AccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.token == nil || !time.Now().Before(r.token.ExpiresAt) {
		return nil, ErrNotFound
	}
	token := *r.token
	return &token, nil
}

func (r *MemoryTokenRepository) Save(_ context.Context, token *models.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *token
	r.token = &stored
	return nil
}

func (r *MemoryTokenRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.token = nil
	return nil
}
