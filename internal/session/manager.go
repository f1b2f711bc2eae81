package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Manager creates, resolves and ends sessions.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a session manager. A zero ttl keeps sessions until logout.
func NewManager(store Store, secret []byte, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: secret, ttl: ttl, now: time.Now}
}

// Begin stores a new session for email and returns its signed token.
func (m *Manager) Begin(ctx context.Context, email string) (string, Session, error) {
	if email == "" {
		return "", Session{}, errors.New("session email is required")
	}
	now := m.now().UTC()
	s := Session{ID: uuid.NewString(), UserEmail: email, CreatedAt: now}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return "", Session{}, err
	}

	claims := jwt.RegisteredClaims{
		ID:       s.ID,
		Subject:  email,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, s, nil
}

// Resolve verifies token and returns the live session it names.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return Session{}, err
	}
	s, err := m.store.Load(ctx, claims.ID)
	if err != nil {
		return Session{}, err
	}
	if s.UserEmail != claims.Subject {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// End deletes the session named by token.
func (m *Manager) End(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}
	return m.store.Delete(ctx, claims.ID)
}

func (m *Manager) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}
