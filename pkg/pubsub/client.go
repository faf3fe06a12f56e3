package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client is a RabbitMQ connection with a publishing channel pool and
// supervised consumers.
type Client struct {
	conn   *amqp.Connection
	pool   *channelPool[*amqp.Channel]
	config Config
	logger *slog.Logger

	consumerWG     sync.WaitGroup
	consumerClosed chan string
	consumerSpecs  map[string]ConsumerSpec
}

func (c *Client) Config() Config { return c.config }

func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	const op = "rabbitmq.NewClient"

	if config.URL == "" {
		return nil, errors.New("rabbitmq URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("op", op)

	host := ""
	if u, _ := url.Parse(config.URL); u != nil {
		host = u.Host
	}
	log.Info("connecting to rabbitmq", slog.String("host", host))

	// amqp has no ctx on dial; bound it with the configured timeout.
	timeout := Dsec(config.ConnTimeoutSeconds, 30)
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := config.dialer(logger)(dialCtx, config.URL)
	if err != nil {
		log.Error("dial failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	client := &Client{
		conn:   conn,
		config: config,
		logger: logger,
	}
	if err := client.setupExchanges(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	client.pool = newChannelPool(conn, config.PublishPoolSize)

	log.Info("client ready", slog.String("exchange", config.exchange()))
	return client, nil
}

// setupExchanges declares the packet exchange on a throwaway channel.
// Queues and bindings are per consumer so they can carry DLX/TTL args.
func (c *Client) setupExchanges() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()
	if err := ch.ExchangeDeclare(c.config.exchange(), "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", c.config.exchange(), err)
	}
	return nil
}

// Close stops consumers, closes pool and connection.
func (c *Client) Close() error {
	done := make(chan struct{})
	go func() {
		c.consumerWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	if c.pool != nil {
		c.pool.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}

// reconnect rebuilds the connection, exchange and pool.
func (c *Client) reconnect(ctx context.Context) error {
	const op = "rabbitmq.reconnect"

	if c.pool != nil {
		c.pool.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		_ = c.conn.Close()
	}

	conn, err := c.config.dialer(c.logger)(ctx, c.config.URL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	c.conn = conn
	if err := c.setupExchanges(); err != nil {
		_ = conn.Close()
		return err
	}
	c.pool = newChannelPool(conn, c.config.PublishPoolSize)

	c.logger.With("op", op).Info("reconnected")
	return nil
}
