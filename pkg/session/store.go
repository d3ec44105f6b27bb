package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists session data by id. Load returns nil data for an unknown
// or expired id.
type Store interface {
	Load(ctx context.Context, id string) (map[string]interface{}, error)
	Save(ctx context.Context, id string, data map[string]interface{}, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps JSON-encoded sessions in process so values decode the
// same way they do from Redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (map[string]interface{}, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decode(e.raw)
}

func (m *MemoryStore) Save(_ context.Context, id string, data map[string]interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[id] = memoryEntry{raw: raw, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Sweep drops expired entries and reports how many went.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

// Len reports stored entries, expired ones included until Load or Sweep.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RedisStore keeps sessions under heartscript:session:<id> with a TTL.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string { return "heartscript:session:" + id }

func (s *RedisStore) Load(ctx context.Context, id string) (map[string]interface{}, error) {
	raw, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, id string, data map[string]interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(id), raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKey(id)).Err()
}

func decode(raw []byte) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return data, nil
}
