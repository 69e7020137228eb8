package trial

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrNoClientKey is returned when a trial lookup has nothing to key on.
var ErrNoClientKey = errors.New("trial: missing client key")

// Ledger records which anonymous clients have consumed their free quiz.
// Entries never expire and are never cleared.
type Ledger interface {
	Used(ctx context.Context, clientKey string) (bool, error)
	MarkUsed(ctx context.Context, clientKey string) error
}

const redisKeyPrefix = "trial:used:"

// RedisLedger stores one key per client with no TTL.
type RedisLedger struct {
	client *redis.Client
}

var _ Ledger = (*RedisLedger)(nil)

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) Used(ctx context.Context, clientKey string) (bool, error) {
	if clientKey == "" {
		return false, ErrNoClientKey
	}
	n, err := l.client.Exists(ctx, redisKeyPrefix+clientKey).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RedisLedger) MarkUsed(ctx context.Context, clientKey string) error {
	if clientKey == "" {
		return ErrNoClientKey
	}
	return l.client.Set(ctx, redisKeyPrefix+clientKey, "1", 0).Err()
}

// MemoryLedger is a process-local Ledger for tests and single-node runs.
type MemoryLedger struct {
	mu   sync.RWMutex
	used map[string]struct{}
}

var _ Ledger = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{used: make(map[string]struct{})}
}

func (l *MemoryLedger) Used(_ context.Context, clientKey string) (bool, error) {
	if clientKey == "" {
		return false, ErrNoClientKey
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.used[clientKey]
	return ok, nil
}

func (l *MemoryLedger) MarkUsed(_ context.Context, clientKey string) error {
	if clientKey == "" {
		return ErrNoClientKey
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.used[clientKey] = struct{}{}
	return nil
}
