package inmemdb

import (
	"context"
	"time"

	"github.com/opel-edu/dashboard/core/session"
)

type sessionStore struct {
	db *sessionTable
}

var _ session.Store = (*sessionStore)(nil) // interface compliance check

func NewSessionStore(db *DB) session.Store {
	return &sessionStore{db: db.session}
}

// purge removes expired sessions. Caller must hold the write lock.
func (store *sessionStore) purge(now time.Time) {
	for id, sess := range store.db.table {
		if sess.Expired(now) {
			delete(store.db.table, id)
		}
	}
}

func (store *sessionStore) Save(_ context.Context, sess session.Session) error {
	store.db.Lock()
	defer store.db.Unlock()

	store.purge(time.Now())
	store.db.table[sess.ID] = sess
	return nil
}

func (store *sessionStore) Get(_ context.Context, id string) (session.Session, error) {
	store.db.RLock()
	defer store.db.RUnlock()

	sess, ok := store.db.table[id]
	if !ok || sess.Expired(time.Now()) {
		return session.Session{}, session.ErrSessionNotFound
	}
	return sess, nil
}

func (store *sessionStore) Delete(_ context.Context, id string) error {
	store.db.Lock()
	defer store.db.Unlock()
	delete(store.db.table, id)
	return nil
}

func (store *sessionStore) Count(_ context.Context) (int, error) {
	store.db.RLock()
	defer store.db.RUnlock()

	now := time.Now()
	var n int
	for _, sess := range store.db.table {
		if !sess.Expired(now) {
			n++
		}
	}
	return n, nil
}
