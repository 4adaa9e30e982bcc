// Package redissvc wraps the shared redis client: it caches derived
// read models (participant summaries, the public open-orders listing)
// and stores refresh tokens with a TTL. Cached entries are deleted on
// every mutation that could change them, so a cache hit is never stale
// across a ledger mutation.
package redissvc

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const OpenOrdersKey = "orders:open"

// SummaryKey names the cached participant summaries of one order.
func SummaryKey(orderID int) string {
	return fmt.Sprintf("order:%d:participants", orderID)
}

type RedisService struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisService(rdb *redis.Client, ctx context.Context) *RedisService {
	return &RedisService{
		rdb: rdb,
		ctx: ctx,
	}
}

func (s *RedisService) Rdb() *redis.Client {
	return s.rdb
}

func (s *RedisService) Ctx() context.Context {
	return s.ctx
}

// GetCached returns the cached payload for key, if any.
func (s *RedisService) GetCached(key string) ([]byte, bool) {
	data, err := s.rdb.Get(s.ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *RedisService) SetCached(key string, value []byte, ttl time.Duration) {
	s.rdb.Set(s.ctx, key, value, ttl)
}

func (s *RedisService) Invalidate(keys ...string) {
	if len(keys) > 0 {
		s.rdb.Del(s.ctx, keys...)
	}
}

func refreshKey(token string) string {
	return "auth:refresh:" + token
}

// StoreRefreshToken remembers a refresh token for a user. Expiry is
// handled by redis, no cleanup loop needed.
func (s *RedisService) StoreRefreshToken(token string, userID int, ttl time.Duration) error {
	return s.rdb.Set(s.ctx, refreshKey(token), userID, ttl).Err()
}

// RefreshTokenUser resolves a refresh token to its user id. Unknown or
// expired tokens report ok=false.
func (s *RedisService) RefreshTokenUser(token string) (int, bool) {
	id, err := s.rdb.Get(s.ctx, refreshKey(token)).Int()
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *RedisService) DeleteRefreshToken(token string) {
	s.rdb.Del(s.ctx, refreshKey(token))
}
