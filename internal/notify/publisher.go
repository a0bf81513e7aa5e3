package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrBrokerUnavailable - предохранитель разомкнут, Redis временно не принимает публикации.
var ErrBrokerUnavailable = errors.New("notify: broker unavailable")

// RedisPublisher - минимальный срез *redis.Client, нужный для публикации.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher публикует сообщения в Redis через circuit breaker:
// при серии сбоев вызовы сразу отклоняются, не дожидаясь таймаутов сети.
type Publisher struct {
	rdb    RedisPublisher
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

func NewPublisher(rdb RedisPublisher, logger *zap.Logger) *Publisher {
	logger = logger.Named("publisher")
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-publish",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     15 * time.Second, // через сколько пробуем полуоткрыться
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &Publisher{rdb: rdb, cb: cb, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.rdb.Publish(ctx, channel, payload).Err()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	if err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}
