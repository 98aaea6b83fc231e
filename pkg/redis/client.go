package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by GetJSON when the key does not exist.
var ErrNotFound = errors.New("redis: key not found")

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client wraps go-redis with logging and JSON helpers.
type Client struct {
	rdb    *redis.Client
	logger ectologger.Logger
}

// NewClient connects and pings Redis.
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Infof("Connected to Redis at %s", addr)

	return NewClientFromRedis(rdb, logger), nil
}

// NewClientFromRedis wraps an existing go-redis client without pinging it.
func NewClientFromRedis(rdb *redis.Client, logger ectologger.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Redis returns the underlying client, e.g. for the health checker.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// GetJSON decodes the value at key into dest.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores value as JSON with the given expiration.
func (c *Client) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, raw, expiration).Err(); err != nil {
		return err
	}
	c.logger.WithContext(ctx).Debugf("cached %s for %s", key, expiration)
	return nil
}
