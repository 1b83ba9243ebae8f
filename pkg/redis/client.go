package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/boosthq/boosthq-backend/pkg/config"
)

// keyNamespace prefixes every key so multiple apps can share one Redis.
const keyNamespace = "bhq"

// cmdable is the subset of redis commands the app uses.
type cmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Client wraps go-redis with the app's key conventions.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger is implemented by clients that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IdempotencyStore is the narrow interface middleware and webhook
// handlers depend on.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// New connects to Redis using the provided configuration.
func New(cfg config.RedisConfig) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	raw := redis.NewClient(opts)
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		return opts, nil
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address or url required")
	}
	return &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

// Set stores a value with a TTL.
func (c *Client) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns the value and whether the key exists.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.store.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetNX stores a value only if the key does not exist. Returns true when
// this call won the write.
func (c *Client) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

// Del removes the given keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.store.Del(ctx, keys...).Err()
}

// Ping checks connectivity against the underlying server.
func (c *Client) Ping(ctx context.Context) error {
	if c.raw == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return c.raw.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// IdempotencyKey builds the key for client-supplied idempotency tokens.
func IdempotencyKey(scope, token string) string {
	return fmt.Sprintf("%s:idem:%s:%s", keyNamespace, scope, token)
}

// WebhookDedupeKey builds the key used to suppress duplicate webhook deliveries.
func WebhookDedupeKey(fingerprint string) string {
	return fmt.Sprintf("%s:webhook:fruit:%s", keyNamespace, fingerprint)
}
