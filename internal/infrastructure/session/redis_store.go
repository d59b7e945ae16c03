// Package session provides the stores that hold per-session presentation
// settings, either in Redis or in process memory.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	domain "jan-server/services/assistant-api/internal/domain/session"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

const defaultKeyPrefix = "assistant:session:"

// RedisConfig configures the Redis-backed session store.
type RedisConfig struct {
	URL       string
	TTL       time.Duration
	KeyPrefix string
}

// RedisStore keeps session settings in Redis so settings survive restarts
// and are shared across instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, log zerolog.Logger) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis URL must be provided")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	storeLog := log.With().Str("component", "session-store").Logger()
	storeLog.Info().Msg("connected to redis session store")

	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		log:    storeLog,
	}, nil
}

// Get fetches the session's settings. Returns (nil, nil) when the session
// has never saved any.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.Settings, error) {
	data, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"failed to fetch session settings",
			err,
			"session-get-error",
		)
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal,
			"failed to decode session settings",
			err,
			"session-decode-error",
		)
	}
	return &settings, nil
}

// Put saves the session's settings, refreshing the expiry.
func (s *RedisStore) Put(ctx context.Context, sessionID string, settings domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal,
			"failed to encode session settings",
			err,
			"session-encode-error",
		)
	}

	if err := s.client.Set(ctx, s.prefix+sessionID, data, s.ttl).Err(); err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"failed to save session settings",
			err,
			"session-put-error",
		)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ domain.Store = (*RedisStore)(nil)
