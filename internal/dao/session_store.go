package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-app/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SessionStore keeps login sessions in Redis and announces revocations on a
// per-session channel.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

const (
	// expiryGrace lets Redis drop an expired key before it is read again.
	expiryGrace = 50 * time.Millisecond
	// expiryRetry is the next check after the expiry lookup failed.
	expiryRetry = time.Minute
)

func sessionRedisKey(id string) string {
	return "session:" + id
}

func sessionChannel(id string) string {
	return "session-events:" + id
}

func (s *SessionStore) Create(ctx context.Context, userID string) (models.Session, error) {
	session := models.Session{ID: uuid.NewString(), UserID: userID}
	if err := s.client.Set(ctx, sessionRedisKey(session.ID), userID, s.ttl).Err(); err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// UserID returns the owner of a live session, or ErrSessionNotFound.
func (s *SessionStore) UserID(ctx context.Context, id string) (string, error) {
	userID, err := s.client.Get(ctx, sessionRedisKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return userID, nil
}

func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionRedisKey(id)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if err := s.client.Publish(ctx, sessionChannel(id), "revoked").Err(); err != nil {
		logrus.WithError(err).WithField("session_id", id).Warn("Failed to announce session revocation")
	}
	return nil
}

// Observe emits the session's user id, then an empty id once it is revoked
// or expires.
func (s *SessionStore) Observe(ctx context.Context, id string) (<-chan string, error) {
	return observeChannel(ctx, s.client, sessionChannel(id), func(ctx context.Context) string {
		userID, err := s.UserID(ctx, id)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			logrus.WithError(err).WithField("session_id", id).Warn("Failed to read session")
		}
		return userID
	}, func(ctx context.Context) (time.Duration, bool) {
		ttl, err := s.client.PTTL(ctx, sessionRedisKey(id)).Result()
		if err != nil {
			logrus.WithError(err).WithField("session_id", id).Warn("Failed to read session expiry")
			return expiryRetry, true
		}
		return recheckAfter(ttl)
	})
}

// recheckAfter turns a key's remaining lifetime into the time of the next
// read. Keys without an expiry, or already gone, need none.
func recheckAfter(ttl time.Duration) (time.Duration, bool) {
	if ttl <= 0 {
		return 0, false
	}
	return ttl + expiryGrace, true
}
