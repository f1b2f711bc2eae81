// Package session holds the signed-in user's identity between requests.
//
// A session is created by a successful registration or login, serialized as
// JSON into a Store, and torn down by logout. Clients hold a signed token
// naming the session; the token alone grants nothing once the record is gone.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoSession is returned when a token or session id does not resolve to a
// live session.
var ErrNoSession = errors.New("no active session")

// Session is the signed-in user's identity.
type Session struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"userEmail"`
	CreatedAt time.Time `json:"createdAt"`
}

// Encode serializes the session for storage.
func (s Session) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a stored session. Records without an email are rejected.
func Decode(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if s.UserEmail == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Store persists sessions by id.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// WithSession returns a child context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.UserEmail != ""
}

// TokenFromHeader extracts the token from an Authorization header value.
func TokenFromHeader(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
