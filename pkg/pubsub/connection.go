package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConnectionOptions struct {
	URL           string
	RetryAttempts int
	Delay         time.Duration
	Logger        *slog.Logger
	Dial          func(url string) (*amqp.Connection, error)
}

// MaxDelay caps the wait between dial attempts.
const MaxDelay = 60 * time.Second

// backoff returns the wait after the given failed attempt, doubling from
// delay and capped at MaxDelay.
func backoff(delay time.Duration, attempt int) time.Duration {
	if delay <= 0 {
		delay = time.Second
	}
	sleep := delay
	for i := 1; i < attempt && sleep < MaxDelay; i++ {
		sleep *= 2
	}
	return min(sleep, MaxDelay)
}

// DialWithRetry tries to connect to RabbitMQ with exponential backoff.
// It respects context cancellation for graceful shutdown.
func DialWithRetry(ctx context.Context, cfg ConnectionOptions) (*amqp.Connection, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	dial := cfg.Dial
	if dial == nil {
		dial = amqp.Dial
	}
	attempts := max(cfg.RetryAttempts, 1)

	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := dial(cfg.URL)
		if err == nil {
			if i > 1 {
				log.Info("rabbit connected", slog.Int("attempt", i))
			}
			return conn, nil
		}
		lastErr = err
		if i == attempts {
			break
		}

		sleep := backoff(cfg.Delay, i)
		log.Warn("rabbit dial failed",
			slog.Int("attempt", i),
			slog.Duration("sleep", sleep),
			slog.Any("error", err),
		)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("dial cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}

// dialer picks the configured Dialer, or a retrying dial built from the
// config.
func (c Config) dialer(logger *slog.Logger) func(context.Context, string) (*amqp.Connection, error) {
	if c.Dialer != nil {
		return c.Dialer
	}
	return func(ctx context.Context, url string) (*amqp.Connection, error) {
		return DialWithRetry(ctx, ConnectionOptions{
			URL:           url,
			RetryAttempts: c.DialAttempts,
			Delay:         c.DialDelay,
			Logger:        logger,
		})
	}
}
