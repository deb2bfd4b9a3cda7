// Package redis provides the Redis client and the response cache used to
// short-circuit repeated generation requests with identical parameters.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

var (
	ErrInvalidMode      = errors.New(errors.ErrCodeValidation, "invalid redis mode")
	ErrConnectionFailed = errors.New(errors.ErrCodeCacheError, "redis connection failed")
)

// RedisConfig holds connection settings.  Mode selects standalone or
// cluster.
type RedisConfig struct {
	Mode         string        `mapstructure:"mode"`
	Addr         string        `mapstructure:"addr"`
	ClusterAddrs []string      `mapstructure:"cluster_addrs"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

func applyDefaults(cfg *RedisConfig) {
	if cfg.Mode == "" {
		cfg.Mode = "standalone"
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
}

// Client wraps a universal Redis client.
type Client struct {
	rdb    redis.UniversalClient
	config *RedisConfig
	logger logging.Logger
}

// NewClient connects according to the config and verifies the connection
// with a ping.
func NewClient(cfg *RedisConfig, log logging.Logger) (*Client, error) {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}

	var rdb redis.UniversalClient
	switch cfg.Mode {
	case "standalone":
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			MaxRetries:   cfg.MaxRetries,
		})
	case "cluster":
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.ClusterAddrs,
			Username:     cfg.Username,
			Password:     cfg.Password,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			MaxRetries:   cfg.MaxRetries,
		})
	default:
		return nil, ErrInvalidMode
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis connection failed")
	}

	log.Info("redis connected",
		logging.String("mode", cfg.Mode),
		logging.String("addr", cfg.Addr))
	return &Client{rdb: rdb, config: cfg, logger: log}, nil
}

// Underlying exposes the wrapped client for command access.
func (c *Client) Underlying() redis.UniversalClient {
	return c.rdb
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
