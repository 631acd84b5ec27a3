package app

import (
	"github.com/guttosm/tradesummary/config"
	"github.com/guttosm/tradesummary/internal/cache"
	"github.com/guttosm/tradesummary/internal/storage"
)

// InitCache connects to Redis using cfg.Redis.
// It returns (nil, nil) when no address is configured.
func InitCache(cfg config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled() {
		return nil, nil
	}
	return cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
}

// cacheOpener and migrator are indirections used by InitializeApp; overridden in tests.
var (
	cacheOpener = InitCache
	migrator    = storage.Migrate
)
