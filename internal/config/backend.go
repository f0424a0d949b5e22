package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/imrishuroy/go-library-checkout/internal/aws"
	"github.com/imrishuroy/go-library-checkout/internal/idempotency"
	"github.com/imrishuroy/go-library-checkout/internal/store"
)

// Backend is an opened record store and the resources behind it.
type Backend struct {
	Store store.Store
	close func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the configured record store. clients may be nil unless
// the dynamodb backend is selected.
func OpenBackend(ctx context.Context, cfg StoreConfig, clients *aws.AWSClients) (*Backend, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return &Backend{Store: store.NewFileStore(afero.NewOsFs(), cfg.Dir)}, nil

	case BackendDynamoDB:
		if clients == nil {
			return nil, fmt.Errorf("dynamodb backend requires AWS clients")
		}
		return &Backend{Store: store.NewDynamoStore(clients.DynamoDB, cfg.Table)}, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return &Backend{Store: store.NewRedisStore(client), close: client.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// NewIdempotencyStore returns the idempotency store matching the configured
// backend: a dedicated DynamoDB table, or a collection of the record store.
func NewIdempotencyStore(cfg Config, backend *Backend, clients *aws.AWSClients) idempotency.Store {
	if cfg.Store.Backend == BackendDynamoDB && clients != nil {
		return idempotency.NewDynamoStore(clients.DynamoDB, cfg.Idempotency.Table, cfg.Idempotency.TTL)
	}
	records := store.NewCollection[idempotency.Record](backend.Store, idempotency.CollectionName)
	return idempotency.NewCollectionStore(records, cfg.Idempotency.TTL)
}
