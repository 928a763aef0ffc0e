// Package bootstrap opens the process-wide runtime dependencies.
package bootstrap

import (
	"fmt"

	"creepycorners/internal/cache"
	"creepycorners/internal/config"
	"creepycorners/internal/database"
	"creepycorners/internal/middleware"
	"creepycorners/internal/models"
	"creepycorners/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedWhenEmpty fills an empty database with demo data.
	SeedWhenEmpty bool
}

// InitRuntime connects to the database (migrating it) and to Redis.
// The Redis client is nil when Redis is not reachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.NewRedisClient(cfg.RedisURL)

	if opts.SeedWhenEmpty {
		if err := seedIfEmpty(db); err != nil {
			_ = database.Close(db)
			if r != nil {
				_ = r.Close()
			}
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(db *gorm.DB) error {
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}
	middleware.Logger.Info("database is empty, seeding demo data")
	_, err := seed.NewSeeder(db, seed.DefaultOptions()).Run()
	return err
}
