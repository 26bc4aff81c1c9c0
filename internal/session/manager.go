package session

import (
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Manager owns the admin session: it is loaded on start, cleared on logout
// and handed to whoever needs it. The REST client may purge the stored token
// behind our back on a 401, so Ensure always re-reads the store.
type Manager struct {
	log      zerolog.Logger
	tokens   ports.TokenStore
	auth     ports.AuthAPI
	email    string
	password string
	now      func() time.Time

	mu      sync.RWMutex
	current *domain.AdminSession
}

// NewManager creates a session manager. email and password are the service
// credentials used by Ensure; leave them empty to require an existing token.
func NewManager(
	tokens ports.TokenStore,
	auth ports.AuthAPI,
	email, password string,
	baseLogger *zerolog.Logger,
) *Manager {
	return &Manager{
		log:      baseLogger.With().Str("component", "session_manager").Logger(),
		tokens:   tokens,
		auth:     auth,
		email:    email,
		password: password,
		now:      time.Now,
	}
}

// Load restores the session from the token store. Expired tokens are purged
// and reported as ErrNoSession.
func (m *Manager) Load(ctx context.Context) (*domain.AdminSession, error) {
	token, ok, err := m.tokens.Get(ctx, ports.KeyAdminToken)
	if err != nil {
		return nil, fmt.Errorf("read admin token: %w", err)
	}
	if !ok || token == "" {
		m.setCurrent(nil)
		return nil, domain.ErrNoSession
	}

	sess := &domain.AdminSession{Token: token, ExpiresAt: tokenExpiry(token)}
	if sess.Expired(m.now()) {
		m.log.Info().Time("expired_at", *sess.ExpiresAt).Msg("Stored admin token has expired, purging")
		if err := m.purge(ctx); err != nil {
			return nil, err
		}
		return nil, domain.ErrNoSession
	}

	rawUser, ok, err := m.tokens.Get(ctx, ports.KeyAdminUser)
	if err != nil {
		return nil, fmt.Errorf("read admin user: %w", err)
	}
	if ok && rawUser != "" {
		if err := json.Unmarshal([]byte(rawUser), &sess.User); err != nil {
			m.log.Warn().Err(err).Msg("Cached admin user is unreadable, continuing with token only")
		}
	}

	m.setCurrent(sess)
	return sess, nil
}

// Login exchanges credentials for a token and stores both token and user.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.AdminSession, error) {
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	userJSON, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("encode admin user: %w", err)
	}
	if err := m.tokens.Set(ctx, ports.KeyAdminToken, res.Token); err != nil {
		return nil, fmt.Errorf("store admin token: %w", err)
	}
	if err := m.tokens.Set(ctx, ports.KeyAdminUser, string(userJSON)); err != nil {
		return nil, fmt.Errorf("store admin user: %w", err)
	}

	sess := &domain.AdminSession{Token: res.Token, User: res.User, ExpiresAt: tokenExpiry(res.Token)}
	m.setCurrent(sess)
	m.log.Info().Str("email", res.User.Email).Msg("Admin session established")
	return sess, nil
}

// Logout tells the backend (best effort) and always clears the local session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.auth.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
	}
	if err := m.purge(ctx); err != nil {
		return err
	}
	m.log.Info().Msg("Admin session cleared")
	return nil
}

// Current returns a copy of the last loaded session, or nil.
func (m *Manager) Current() *domain.AdminSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	c := *m.current
	return &c
}

// Ensure makes sure a usable admin token is stored, logging in with the
// service credentials when there is none.
func (m *Manager) Ensure(ctx context.Context) error {
	_, err := m.Load(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNoSession) {
		return err
	}
	if m.email == "" || m.password == "" {
		return domain.ErrNoSession
	}
	_, err = m.Login(ctx, m.email, m.password)
	return err
}

func (m *Manager) purge(ctx context.Context) error {
	m.setCurrent(nil)
	if err := m.tokens.Delete(ctx, ports.KeyAdminToken, ports.KeyAdminUser); err != nil {
		return fmt.Errorf("purge admin session: %w", err)
	}
	return nil
}

func (m *Manager) setCurrent(s *domain.AdminSession) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend owns the key. Opaque or exp-less tokens never expire locally.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
