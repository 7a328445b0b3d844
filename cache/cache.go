package cache

import (
	"strings"

	"github.com/cppla/minipost/config"
	"github.com/cppla/minipost/utils"
)

// New selects the backend named by cfg.CacheBackend. An unreachable Redis
// falls back to the in-memory store rather than failing startup.
func New(cfg config.AppConfig) Store {
	if strings.EqualFold(cfg.CacheBackend, "redis") {
		client, err := NewRedisClient(cfg)
		if err == nil {
			utils.Sugar.Infow("post list cache backed by redis", "host", cfg.RedisHost, "port", cfg.RedisPort)
			return NewRedisStore(client, cfg.CacheTTL())
		}
		utils.Sugar.Warnw("redis unavailable, using in-memory post list cache", "error", err)
	}
	return NewMemoryStore(cfg.CacheCapacity, cfg.CacheTTL())
}
