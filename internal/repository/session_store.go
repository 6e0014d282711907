package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound is returned for unknown, expired or revoked sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side half of a sign-in. Tokens carry only its ID, so
// deleting the record signs the user out everywhere the token is used.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionStore interface {
	Create(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type redisSessionStore struct{ rdb *redis.Client }

func NewSessionStore(rdb *redis.Client) SessionStore { return &redisSessionStore{rdb: rdb} }

func (s *redisSessionStore) Create(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+sess.ID.String(), data, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *redisSessionStore) Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error {
	ok, err := s.rdb.Expire(ctx, sessionKeyPrefix+id.String(), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id.String()).Err()
}
