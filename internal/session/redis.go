package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps sessions in Redis so they survive process restarts and
// are shared between engine instances.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func sessionKey(identity int64) string {
	return fmt.Sprintf("session:%d", identity)
}

func (s *redisStore) Get(ctx context.Context, identity int64) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(identity)).Bytes()
	if err == redis.Nil {
		return nil, nil
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

func (s *redisStore) Put(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.Identity), raw, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, identity int64) error {
	return s.client.Del(ctx, sessionKey(identity)).Err()
}
