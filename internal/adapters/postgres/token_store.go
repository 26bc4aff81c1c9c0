package postgres

import (
	"PayoutDesk/internal/core/ports"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type tokenStore struct {
	db     *DB
	secSvc ports.SecurityPort // values are sealed before they hit the table
	prefix string
	log    zerolog.Logger
}

var _ ports.TokenStore = (*tokenStore)(nil) // Ensure compliance

// NewTokenStore creates a token store backed by the session_tokens table.
func NewTokenStore(db *DB, secSvc ports.SecurityPort, prefix string, baseLogger *zerolog.Logger) ports.TokenStore {
	return &tokenStore{
		db:     db,
		secSvc: secSvc,
		prefix: prefix,
		log:    baseLogger.With().Str("component", "pg_token_store").Logger(),
	}
}

// Get reads and decrypts a token. A missing row is (", false, nil).
func (s *tokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	var sealed string
	err := s.db.pool.QueryRow(ctx,
		`SELECT value FROM session_tokens WHERE key = $1`, s.prefix+key,
	).Scan(&sealed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

// Set encrypts and upserts a token.
func (s *tokenStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.secSvc.SealString(value)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to encrypt token")
		return err
	}

	query := `
		INSERT INTO session_tokens (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := s.db.pool.Exec(ctx, query, s.prefix+key, sealed); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to upsert token")
		return err
	}
	return nil
}

// Delete removes any of the given keys. Missing keys are ignored.
func (s *tokenStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if _, err := s.db.pool.Exec(ctx, `DELETE FROM session_tokens WHERE key = ANY($1)`, full); err != nil {
		s.log.Error().Err(err).Strs("keys", keys).Msg("Failed to delete tokens")
		return err
	}
	return nil
}
