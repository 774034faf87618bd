package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ProfileStore implements the per-browser-profile key-value store on
// Redis. Key format: profile:<profile_id>:<record_key>. Records have no
// TTL; the retention policy on thread records is the repository's job,
// not the store's.
type ProfileStore struct {
	client *redis.Client
}

// NewProfileStore creates a ProfileStore wrapping the given Redis client.
func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

func (s *ProfileStore) Get(ctx context.Context, profileID, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key(profileID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("profile store get %s: %w", key, err)
	}
	return raw, nil
}

func (s *ProfileStore) Set(ctx context.Context, profileID, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(profileID, key), value, 0).Err(); err != nil {
		return fmt.Errorf("profile store set %s: %w", key, err)
	}
	return nil
}

func (s *ProfileStore) Delete(ctx context.Context, profileID, key string) error {
	if err := s.client.Del(ctx, s.key(profileID, key)).Err(); err != nil {
		return fmt.Errorf("profile store delete %s: %w", key, err)
	}
	return nil
}

func (s *ProfileStore) key(profileID, key string) string {
	return fmt.Sprintf("profile:%s:%s", profileID, key)
}
