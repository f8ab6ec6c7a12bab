package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionStore keeps the single live session slot of every user.
// The slot holds the jti of the only token accepted for that user.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a new session store
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("%ssession:%d", KeyPrefix, userID)
}

// Open replaces the user's slot with tokenID. Any earlier token stops being accepted.
func (s *SessionStore) Open(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKey(userID), tokenID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// IsActive reports whether tokenID is the user's current session.
func (s *SessionStore) IsActive(ctx context.Context, userID int64, tokenID string) (bool, error) {
	current, err := s.rdb.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session: %w", err)
	}
	return current == tokenID, nil
}

// Close empties the user's slot. Closing an empty slot is not an error.
func (s *SessionStore) Close(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
