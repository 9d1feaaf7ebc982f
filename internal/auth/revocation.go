package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultRevocationCapacity bounds the in-memory revocation set.
const DefaultRevocationCapacity = 100_000

// RevocationStore remembers revoked refresh tokens by jti until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Claim revokes jti and reports whether this call was the one that did
	// it. Only one concurrent caller wins per jti.
	Claim(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
}

type RedisRevocationStore struct {
	client *redis.Client
	prefix string
}

func NewRedisRevocationStore(client *redis.Client, prefix string) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, prefix: prefix}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisRevocationStore) key(jti string) string {
	return s.prefix + ":revoked:" + jti
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(jti), "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisRevocationStore) Claim(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return false, nil
	}
	return s.client.SetNX(ctx, s.key(jti), "1", ttl).Result()
}

// MemoryRevocationStore is the single-process fallback used when no Redis
// URL is configured. Entries live for at most ttl, which should be the
// refresh token lifetime; once capacity is reached the oldest entries go
// first.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	revoked *lru.LRU[string, time.Time]
	now     func() time.Time
}

func NewMemoryRevocationStore(capacity int, ttl time.Duration) *MemoryRevocationStore {
	if capacity <= 0 {
		capacity = DefaultRevocationCapacity
	}
	return &MemoryRevocationStore{
		revoked: lru.NewLRU[string, time.Time](capacity, nil, ttl),
		now:     time.Now,
	}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiresAt.After(s.now()) {
		s.revoked.Add(jti, expiresAt)
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.revokedLocked(jti), nil
}

func (s *MemoryRevocationStore) Claim(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !expiresAt.After(s.now()) || s.revokedLocked(jti) {
		return false, nil
	}
	s.revoked.Add(jti, expiresAt)
	return true, nil
}

func (s *MemoryRevocationStore) revokedLocked(jti string) bool {
	exp, ok := s.revoked.Peek(jti)
	return ok && exp.After(s.now())
}
