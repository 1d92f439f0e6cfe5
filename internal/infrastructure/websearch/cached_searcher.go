package websearch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"ali-assistant-api/internal/infrastructure/persistence/redis"
	"ali-assistant-api/pkg/logger"
)

const defaultCacheTTL = 10 * time.Minute

// CachedSearcher 在实时搜索前加一层 Redis 缓存
// 缓存故障时直接回退到实时搜索
type CachedSearcher struct {
	inner *Client
	cache *redis.Cache
	ttl   time.Duration
}

// NewCachedSearcher 创建带缓存的搜索客户端
func NewCachedSearcher(inner *Client, cache *redis.Cache, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedSearcher{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

// Search 查询缓存命中则直接返回，否则执行实时搜索并回填
func (s *CachedSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	if s.cache == nil {
		return s.inner.Search(ctx, query)
	}

	key := cacheKey(query)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var results []Result
		if err := json.Unmarshal(data, &results); err == nil {
			return results, nil
		}
		logger.Warn(ctx, "corrupt search cache entry, falling back to live search", "key", key)
	} else if !redis.IsNil(err) {
		logger.Warn(ctx, "search cache unavailable", "error", err)
	}

	results, err := s.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	// 回填失败不影响结果
	if err := s.cache.Set(ctx, key, results, s.ttl); err != nil {
		logger.Warn(ctx, "failed to populate search cache", "key", key, "error", err)
	}
	return results, nil
}

func cacheKey(query string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "websearch:" + hex.EncodeToString(sum[:])
}
