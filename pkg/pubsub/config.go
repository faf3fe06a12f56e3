package pubsub

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roboricindustries/maxwire/pkg/schemas/common"
)

// Config defines the broker connection and topology defaults. Zero values
// are resolved at use.
type Config struct {
	URL                         string
	Exchange                    string // default common.PacketEvent.Exchange
	Producer                    string
	PublishPoolSize             int
	ConsumerPrefetch            int
	ConnTimeoutSeconds          int
	PoolRetryDelayMs            int
	ReconnectBackoffBaseSeconds int
	ReconnectBackoffCapSeconds  int
	ReconnectJitterPercent      int
	DialAttempts                int
	DialDelay                   time.Duration
	Dialer                      func(ctx context.Context, url string) (*amqp.Connection, error)

	KafkaBrokers []string
	KafkaTopic   string

	Metrics *Metrics
}

func (c Config) exchange() string {
	return FirstNonEmpty(c.Exchange, common.PacketEvent.Exchange)
}

// Environment variables read by LoadConfig.
const (
	EnvAMQPURL          = "MAX_AMQP_URL"
	EnvExchange         = "MAX_EXCHANGE"
	EnvProducer         = "MAX_PRODUCER"
	EnvPublishPoolSize  = "MAX_PUBLISH_POOL_SIZE"
	EnvConsumerPrefetch = "MAX_CONSUMER_PREFETCH"
	EnvDialAttempts     = "MAX_DIAL_ATTEMPTS"
	EnvDialDelay        = "MAX_DIAL_DELAY"
	EnvKafkaBrokers     = "MAX_KAFKA_BROKERS"
	EnvKafkaTopic       = "MAX_KAFKA_TOPIC"
)

// LoadConfig loads the given .env files into the environment and builds a
// Config from MAX_* variables. Without files it tries ./.env and ignores a
// missing one. Variables already set win over the files.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := Config{
		URL:        os.Getenv(EnvAMQPURL),
		Exchange:   os.Getenv(EnvExchange),
		Producer:   os.Getenv(EnvProducer),
		KafkaTopic: os.Getenv(EnvKafkaTopic),
	}
	if v := os.Getenv(EnvKafkaBrokers); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvPublishPoolSize, &cfg.PublishPoolSize},
		{EnvConsumerPrefetch, &cfg.ConsumerPrefetch},
		{EnvDialAttempts, &cfg.DialAttempts},
	}
	for _, it := range ints {
		v := os.Getenv(it.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", it.key, err)
		}
		*it.dst = n
	}
	if v := os.Getenv(EnvDialDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvDialDelay, err)
		}
		cfg.DialDelay = d
	}
	return cfg, nil
}
