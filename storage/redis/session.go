package redisdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/opel-edu/dashboard/core/session"
)

type sessionStore struct {
	client *redis.Client
	prefix string
}

var _ session.Store = (*sessionStore)(nil) // interface compliance check

// NewSessionStore stores sessions as JSON under prefix+id, expiring with the session.
func NewSessionStore(r *Redis, prefix string) session.Store {
	return &sessionStore{client: r.Client, prefix: prefix}
}

func (store *sessionStore) key(id string) string {
	return store.prefix + id
}

func (store *sessionStore) Save(ctx context.Context, sess session.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return errors.Wrap(store.client.Set(ctx, store.key(sess.ID), data, ttl).Err(), "saving session")
}

func (store *sessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	data, err := store.client.Get(ctx, store.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding session")
	}
	if sess.Expired(time.Now()) {
		return session.Session{}, session.ErrSessionNotFound
	}
	return sess, nil
}

func (store *sessionStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(store.client.Del(ctx, store.key(id)).Err(), "deleting session")
}

func (store *sessionStore) Count(ctx context.Context) (int, error) {
	var n int
	iter := store.client.Scan(ctx, 0, store.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, errors.Wrap(iter.Err(), "counting sessions")
}
