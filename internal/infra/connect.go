package infra

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectPostgres открывает пул и ждет, пока база ответит на Ping.
// При старте в docker-compose Postgres часто поднимается позже приложения.
func ConnectPostgres(ctx context.Context, cfg DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	err = retry.New(
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectRetries),
		retry.Delay(cfg.ConnectDelay),
	).Do(func() error {
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("database unreachable, retrying", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: unreachable: %w", err)
	}
	return pool, nil
}

// ConnectRedis создает клиента и проверяет доступность тем же способом.
func ConnectRedis(ctx context.Context, cfg RedisConfig, retries uint, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(retries),
	).Do(func() error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, retrying", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: unreachable: %w", err)
	}
	return rdb, nil
}
