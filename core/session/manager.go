package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/user"
)

// Manager issues, resolves and revokes sessions.
type Manager struct {
	store  Store
	usrSvc *user.Service
	logger core.Logger
	secret []byte
	issuer string
	maxAge time.Duration
}

func NewManager(store Store, usrSvc *user.Service, conf *core.Config, logger core.Logger) *Manager {
	return &Manager{
		store:  store,
		usrSvc: usrSvc,
		logger: logger,
		secret: []byte(conf.SecretKey),
		issuer: conf.AppName,
		maxAge: conf.Session.MaxAge,
	}
}

// MaxAge is the lifetime of every issued session.
func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue creates a session for usr and returns its signed token.
func (m *Manager) Issue(ctx context.Context, usr user.User) (string, Session, error) {
	now := nowFunc().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    usr.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.maxAge),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return "", Session{}, errors.Wrap(err, "saving session")
	}
	token, err := signToken(sess, m.issuer, m.secret)
	if err != nil {
		return "", Session{}, errors.Wrap(err, "signing session token")
	}
	return token, sess, nil
}

// Resolve returns the user owning the session behind token.
func (m *Manager) Resolve(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrNoToken
	}
	claims, err := parseToken(token, m.issuer, m.secret)
	if err != nil {
		return user.User{}, err
	}

	sess, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Cause(err) == ErrSessionNotFound {
			return user.User{}, ErrSessionNotFound
		}
		return user.User{}, errors.Wrap(err, "getting session")
	}
	if sess.UserID != claims.Subject || sess.Expired(nowFunc()) {
		return user.User{}, ErrSessionNotFound
	}

	usr, err := m.usrSvc.GetByID(ctx, sess.UserID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting session user")
	}
	return usr, nil
}

// Revoke deletes the session behind token, if any. It never fails.
func (m *Manager) Revoke(ctx context.Context, token string) {
	if token == "" {
		return
	}
	// expired tokens still identify the session to delete
	claims, err := parseToken(token, m.issuer, m.secret, jwt.WithoutClaimsValidation())
	if err != nil {
		return
	}
	if err := m.store.Delete(ctx, claims.ID); err != nil {
		m.logger.Error(err.Error(), errors.Wrap(err, "revoking session"))
	}
}

// Active returns the number of live sessions.
func (m *Manager) Active(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}
