// Package idempotency guards mutating requests with a client supplied
// Idempotency-Key, claimed in redis with SET NX.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(k string) string { return fmt.Sprintf("loan:idem:%s", k) }

// Claim 返回 true 表示第一次见到该 key；TTL 内重复请求返回 false
func (s *Store) Claim(ctx context.Context, k string) (bool, error) {
	return s.rdb.SetNX(ctx, key(k), time.Now().Unix(), s.ttl).Result()
}

// Release 让失败的请求可以用同一个 key 重试
func (s *Store) Release(ctx context.Context, k string) error {
	return s.rdb.Del(ctx, key(k)).Err()
}
