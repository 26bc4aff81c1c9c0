package redis

import (
	"PayoutDesk/internal/core/ports"
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// tokenStore keeps sealed tokens under prefixed redis keys.
type tokenStore struct {
	client *redis.Client
	secSvc ports.SecurityPort
	prefix string
	log    zerolog.Logger
}

var _ ports.TokenStore = (*tokenStore)(nil)

// NewClient dials redis and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int, baseLogger *zerolog.Logger) (*redis.Client, error) {
	log := baseLogger.With().Str("component", "redis").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("Failed to ping redis")
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Str("addr", addr).Msg("Redis connection established")
	return client, nil
}

// NewTokenStore creates a redis-backed token store.
func NewTokenStore(client *redis.Client, secSvc ports.SecurityPort, prefix string, baseLogger *zerolog.Logger) ports.TokenStore {
	return &tokenStore{
		client: client,
		secSvc: secSvc,
		prefix: prefix,
		log:    baseLogger.With().Str("component", "redis_token_store").Logger(),
	}
}

func (s *tokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		s.log.Error().Err(err).Str("key", key).Msg("Failed to read token")
		return "", false, err
	}

	value, err := s.secSvc.OpenString(sealed)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to decrypt token (tampered?)")
		return "", false, err
	}
	return value, true, nil
}

// Set stores the token without expiry; the JWT exp claim governs validity.
func (s *tokenStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.secSvc.SealString(value)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to encrypt token")
		return err
	}
	if err := s.client.Set(ctx, s.prefix+key, sealed, 0).Err(); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to write token")
		return err
	}
	return nil
}

func (s *tokenStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		s.log.Error().Err(err).Strs("keys", keys).Msg("Failed to delete tokens")
		return err
	}
	return nil
}
