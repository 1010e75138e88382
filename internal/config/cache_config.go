package config

import "time"

type CacheConfig interface {
	GetRedisURL() string
	GetUserCacheTTL() time.Duration
}

type Cache struct{}

var _ CacheConfig = Cache{}

// GetRedisURL points the user cache at Redis. Empty keeps it in memory.
func (Cache) GetRedisURL() string {
	return GetEnv("REDIS_URL", "")
}

func (Cache) GetUserCacheTTL() time.Duration {
	return GetDuration("USER_CACHE_TTL", 15*time.Minute)
}
