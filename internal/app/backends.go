package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
	"github.com/hackgods/clinic-appointment-engine/internal/config"
	"github.com/hackgods/clinic-appointment-engine/internal/db"
	redisclient "github.com/hackgods/clinic-appointment-engine/internal/redis"
)

// Backends holds the store and lock selected by configuration. PgPool and
// Redis are nil when the in-memory alternatives are used.
type Backends struct {
	Repo   appointment.Repository
	Locker redisclient.Locker
	PgPool *pgxpool.Pool
	Redis  *redis.Client
}

var ErrSharedStoreRequired = errors.New("a shared store is required: set STORE_BACKEND=postgres")

// RequireSharedStore rejects the in-memory store for processes that read
// appointments written by another process.
func RequireSharedStore(cfg config.Config) error {
	if cfg.StoreBackend != config.StorePostgres {
		return fmt.Errorf("%w (got %q)", ErrSharedStoreRequired, cfg.StoreBackend)
	}
	return nil
}

// Open connects the configured store and lock. The memory store is seeded
// with the fixture directory; the Postgres store gets its schema applied.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Backends, error) {
	b := &Backends{}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolConfig{
			MaxConns: int32(cfg.PgMaxConns),
			MinConns: int32(cfg.PgMinConns),
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("postgres connection: %w", err)
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		b.PgPool = pool
		b.Repo = appointment.NewPgRepository(pool)
		logger.Info().Msg("connected to Postgres")
	default:
		repo := appointment.NewMemoryRepository()
		if err := appointment.SeedFixtures(ctx, repo); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		b.Repo = repo
		logger.Info().Msg("using in-memory store with fixture directory")
	}

	switch cfg.LockBackend {
	case config.LockRedis:
		rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			b.Close(logger)
			return nil, fmt.Errorf("redis connection: %w", err)
		}
		b.Redis = rdb
		b.Locker = redisclient.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
	default:
		b.Locker = redisclient.NewLocalLocker()
	}

	return b, nil
}

func (b *Backends) Close(logger zerolog.Logger) {
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}
	if b.PgPool != nil {
		b.PgPool.Close()
	}
}
