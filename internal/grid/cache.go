package grid

import (
	"huntcore/internal/config"
	redisclient "huntcore/internal/redis"
)

// RedisCache backs the sampler cache with the shared Redis connection.
// Entries hold immutable upstream payloads only, keyed by coordinates,
// radius and data version, and expire after config.FeatureCacheTTL.
type RedisCache struct{}

func (RedisCache) Get(key string) (string, bool) {
	if !redisclient.Available() {
		return "", false
	}
	value, err := redisclient.Get(key)
	if err != nil {
		return "", false
	}
	return value, true
}

func (RedisCache) Set(key, value string) {
	if !redisclient.Available() {
		return
	}
	if err := redisclient.Set(key, value, config.FeatureCacheTTL); err != nil {
		// Cache writes are best effort; a miss next time costs latency only.
		return
	}
}
