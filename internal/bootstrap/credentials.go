package bootstrap

import (
	"context"
	"fmt"

	"github.com/igmoiiz/Project-Portal-AUMC/config"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/auth"
)

// Credentials is the opened credential store plus its cleanup.
type Credentials struct {
	Store auth.CredentialStore
	// Redis is set only for the redis backend; the health check pings it.
	Redis *auth.RedisStore
	Close func() error
}

// OpenCredentials opens the backend named by cfg.Credentials.Backend.
func OpenCredentials(ctx context.Context, cfg *config.Config) (*Credentials, error) {
	noop := func() error { return nil }

	switch cfg.Credentials.Backend {
	case config.CredentialBackendMemory:
		return &Credentials{Store: auth.NewMemoryStore(), Close: noop}, nil
	case config.CredentialBackendFile:
		return &Credentials{Store: auth.NewFileStore(cfg.Credentials.File), Close: noop}, nil
	case config.CredentialBackendRedis:
		client, err := OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		store := auth.NewRedisStore(client, cfg.App.Environment, 0)
		return &Credentials{Store: store, Redis: store, Close: client.Close}, nil
	default:
		return nil, fmt.Errorf("unknown credential store %q", cfg.Credentials.Backend)
	}
}
