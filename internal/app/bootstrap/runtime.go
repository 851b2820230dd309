package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/clinic-portal/internal/config"
	"github.com/wolfman30/clinic-portal/internal/sessions"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPostgresPool opens and pings a pgx pool for DATABASE_URL.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("bootstrap: DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

// SessionBackend is the selected session store plus what the process needs to
// monitor and release it.
type SessionBackend struct {
	Store   sessions.Store
	Sweeper Sweeper
	Ping    func(ctx context.Context) error
	Close   func()
}

// BuildSessionStore selects the session store named by SESSION_STORE.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*SessionBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.SessionStore {
	case "", appconfig.SessionStoreMemory:
		store := sessions.NewMemoryStore()
		logger.Info("session store ready", "backend", appconfig.SessionStoreMemory)
		return &SessionBackend{Store: store, Sweeper: store, Close: func() {}}, nil

	case appconfig.SessionStoreRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, fmt.Errorf("bootstrap: redis session store unavailable at %q", cfg.RedisAddr)
		}
		logger.Info("session store ready", "backend", appconfig.SessionStoreRedis, "addr", cfg.RedisAddr)
		return &SessionBackend{
			Store: sessions.NewRedisStore(client),
			Ping:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
			Close: func() { _ = client.Close() },
		}, nil

	case appconfig.SessionStorePostgres:
		pool, err := BuildPostgresPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := sessions.NewPostgresStore(pool)
		logger.Info("session store ready", "backend", appconfig.SessionStorePostgres)
		return &SessionBackend{
			Store:   store,
			Sweeper: store,
			Ping:    pool.Ping,
			Close:   pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("bootstrap: unknown session store %q", cfg.SessionStore)
}
