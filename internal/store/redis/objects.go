package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SaveObjects records about -> object id pairs for root (bulk operation)
func (s *Store) SaveObjects(ctx context.Context, root string, objects map[string]string) error {
	if len(objects) == 0 {
		return nil
	}

	key := ObjectsKey(root)
	pipe := s.client.Pipeline()
	for about, id := range objects {
		pipe.HSet(ctx, key, about, id)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save objects: %w", err)
	}

	return nil
}

// ObjectID returns the journaled object id for about; ok is false when unknown
func (s *Store) ObjectID(ctx context.Context, root, about string) (id string, ok bool, err error) {
	id, err = s.client.HGet(ctx, ObjectsKey(root), about).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get object id: %w", err)
	}
	return id, true, nil
}

// ObjectCount returns how many objects were journaled for root
func (s *Store) ObjectCount(ctx context.Context, root string) (int64, error) {
	n, err := s.client.HLen(ctx, ObjectsKey(root)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count objects: %w", err)
	}
	return n, nil
}
