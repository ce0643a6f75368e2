package database

import (
	"fmt"

	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/config"
)

// Connect opens a Postgres connection from the given config. The handle is
// returned to the caller and passed down explicitly; nothing here is global,
// so tests can substitute their own stores.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// ConnectRedis builds a redis client from REDIS_URL. Returns nil when no URL
// is configured; callers treat a nil client as "redis disabled".
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	return redis.NewClient(opts), nil
}

// ConnectMeili builds a meilisearch client for project search indexing.
func ConnectMeili(cfg *config.Config) meilisearch.ServiceManager {
	return meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
}
