package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/delicious2fluid/internal/syncer"
)

// ErrNoRun is returned when nothing was journaled for a root yet.
var ErrNoRun = errors.New("no run journaled")

// Store journals import runs in Redis. Entries never expire.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveRun stores report as the last run of its root
func (s *Store) SaveRun(ctx context.Context, report *syncer.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, RunKey(report.Root), data, 0)
	pipe.SAdd(ctx, AllRootsKey(), normalizeRoot(report.Root))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}

	return nil
}

// LastRun retrieves the last run report of root, or ErrNoRun
func (s *Store) LastRun(ctx context.Context, root string) (*syncer.Report, error) {
	data, err := s.client.Get(ctx, RunKey(root)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoRun
		}
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	var report syncer.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}

	return &report, nil
}

// Roots lists every journaled root namespace, sorted
func (s *Store) Roots(ctx context.Context) ([]string, error) {
	roots, err := s.client.SMembers(ctx, AllRootsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get roots: %w", err)
	}
	sort.Strings(roots)
	return roots, nil
}
