package db

import (
	"context"
	"fmt"

	"github.com/dsjohal14/songstack/internal/libs/config"
)

// Open creates the storage backend selected by cfg.StoreBackend
func Open(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		return NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI(),
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			BatchSize:  cfg.SeedBatchSize,
		})
	case config.BackendPostgres:
		// The table shares the collection name
		return NewPostgresStore(ctx, PostgresConfig{
			ConnString: cfg.DatabaseURL,
			Table:      cfg.MongoCollection,
			BatchSize:  cfg.SeedBatchSize,
		})
	case config.BackendMemory:
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
