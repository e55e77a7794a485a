// internal/intent/pattern_store.go
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"support-chatbot/internal/models"

	"github.com/redis/go-redis/v9"
)

// PatternStore holds at most one derived pattern set.
type PatternStore interface {
	Name() string
	Load(ctx context.Context) (*PatternSet, error)
	Save(ctx context.Context, set *PatternSet, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// MemoryPatternStore keeps the set in process memory.
type MemoryPatternStore struct {
	mu  sync.RWMutex
	set *PatternSet
}

func NewMemoryPatternStore() *MemoryPatternStore {
	return &MemoryPatternStore{}
}

func (s *MemoryPatternStore) Name() string { return "memory" }

func (s *MemoryPatternStore) Load(ctx context.Context) (*PatternSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set, nil
}

func (s *MemoryPatternStore) Save(ctx context.Context, set *PatternSet, ttl time.Duration) error {
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
	return nil
}

func (s *MemoryPatternStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	s.set = nil
	s.mu.Unlock()
	return nil
}

// DefaultPatternKey is the Redis key shared by every replica.
const DefaultPatternKey = "chatbot:patterns"

// RedisPatternStore shares one derivation across replicas. The key expires with the TTL.
type RedisPatternStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisPatternStore(client redis.Cmdable, key string) *RedisPatternStore {
	if key == "" {
		key = DefaultPatternKey
	}
	return &RedisPatternStore{client: client, key: key}
}

func (s *RedisPatternStore) Name() string { return "redis" }

type storedPatterns struct {
	Patterns []models.ProductPattern `json:"patterns"`
	BuiltAt  time.Time               `json:"built_at"`
}

func (s *RedisPatternStore) Load(ctx context.Context) (*PatternSet, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var stored storedPatterns
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode cached patterns: %w", err)
	}
	return NewPatternSet(stored.Patterns, stored.BuiltAt)
}

func (s *RedisPatternStore) Save(ctx context.Context, set *PatternSet, ttl time.Duration) error {
	raw, err := json.Marshal(storedPatterns{Patterns: set.Patterns, BuiltAt: set.BuiltAt})
	if err != nil {
		return fmt.Errorf("encode patterns: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisPatternStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}
