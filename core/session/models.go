package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNoToken         = errors.New("no session token")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the server side record behind a session token.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	ExpiresAt time.Time `json:"expiresAt"` // UTC
}

// Expired reports whether s is no longer valid at t.
func (s Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// Store persists sessions.
// Get must return ErrSessionNotFound for unknown and expired sessions.
type Store interface {
	Save(ctx context.Context, sess Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
