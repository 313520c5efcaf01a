package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relocity/relocation-backend/internal/conf"
	"github.com/relocity/relocation-backend/internal/pkg/database"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	"github.com/relocity/relocation-backend/internal/pkg/minio"
	relocationmodels "github.com/relocity/relocation-backend/internal/relocation/models"
	userdata "github.com/relocity/relocation-backend/internal/user/data"
)

// Data holds the shared infrastructure clients.
type Data struct {
	DB    *database.DB
	Redis *redis.Client
	MinIO *minio.Client
}

// NewData connects to the database, redis, and object storage, runs
// migrations, and returns a cleanup function that closes everything.
func NewData(cfg *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := userdata.Migrate(db.GetDB()); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := relocationmodels.Migrate(db.GetDB()); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	mc, err := minio.NewClient(&cfg.MinIO, log.Logger)
	if err != nil {
		rdb.Close()
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}

	if err := mc.EnsureBucket(ctx); err != nil {
		rdb.Close()
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		log.Info("closing data resources")
		if err := rdb.Close(); err != nil {
			log.Warn("failed to close redis client")
		}
		if err := db.Close(); err != nil {
			log.Warn("failed to close database")
		}
	}

	return &Data{
		DB:    db,
		Redis: rdb,
		MinIO: mc,
	}, cleanup, nil
}
