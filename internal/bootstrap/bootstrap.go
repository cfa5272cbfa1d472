// Package bootstrap wires the runtime dependencies (database, Redis)
// shared by the server and the seed/migrate commands.
package bootstrap

import (
	"fmt"

	"incognitor/internal/cache"
	"incognitor/internal/config"
	"incognitor/internal/database"
	"incognitor/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo populates the database with fake demo data. Development only.
	SeedDemo bool
}

// InitRuntime connects to the database and Redis. The Redis client is nil
// when the instance is unreachable; caching and search indexing degrade
// in that case.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo && cfg.Env == "development" {
		if err := seed.Run(db, seed.Options{NumUsers: 5, NumPosts: 15, NumBlogs: 5, NumEvents: 5}); err != nil {
			return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}

	return db, r, nil
}
