// Package redis implements the shared cross-process store of the grade hub.
// The primary process publishes derived widget snapshots here; the widget
// process reads them on its own schedule. Legacy settings from the previous
// storage generation live in the same store and are drained by the migrator.
//
// Key components:
//   - Client: thin connection wrapper with health checks
//   - SnapshotStore: widget snapshot publisher/reader with refresh signaling
//   - LegacySettings: read-mostly access to the legacy settings namespace
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// MaxRetries is the maximum number of retries before giving up.
	MaxRetries int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration

	// PoolTimeout is the timeout for getting a connection from the pool.
	PoolTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrStoreConnection is returned when the Redis connection fails.
	ErrStoreConnection = errors.New("redis: connection failed")

	// ErrKeyNotFound is returned when a requested key does not exist.
	ErrKeyNotFound = errors.New("redis: key not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client wraps the Redis connection used by the snapshot store and the
// legacy settings reader.
type Client struct {
	client *redis.Client
	config Config
}

// NewClient creates a new Client and verifies the connection.
// Used by the primary process, which cannot operate without the store.
func NewClient(cfg Config) (*Client, error) {
	c := NewReaderClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreConnection, err)
	}

	return c, nil
}

// NewReaderClient creates a Client without verifying the connection.
// The widget process uses it: the store being unreachable at startup is
// not fatal for a reader, every read falls back to the empty snapshot
// until the store appears. The underlying client dials lazily.
func NewReaderClient(cfg Config) *Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
	})

	return &Client{
		client: client,
		config: cfg,
	}
}

// NewClientFromRedis wraps an already constructed go-redis client.
// Used by tests that run against an embedded Redis.
func NewClientFromRedis(client *redis.Client) *Client {
	return &Client{client: client}
}

// Client returns the underlying Redis client for advanced operations.
func (c *Client) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
