package qdrant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// CollectionPrefix namespaces shelf-search collections on shared clusters.
const CollectionPrefix = "shelf_"

const (
	defaultHost    = "localhost"
	defaultPort    = 6334
	defaultTimeout = 30 * time.Second
)

// ClientConfig holds Qdrant connection settings.
type ClientConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool

	// Timeout bounds every individual operation.
	Timeout time.Duration
}

// withDefaults fills unset fields with local-development values.
func (cfg ClientConfig) withDefaults() ClientConfig {
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// Client is the shared Qdrant connection. Safe for concurrent use; Close is
// terminal and later calls fail fast.
type Client struct {
	client *qdrant.Client
	config ClientConfig

	mu     sync.RWMutex
	closed bool
}

// NewClient connects to Qdrant. The connection is lazy; reachability is
// checked by HealthCheck, not here.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg = cfg.withDefaults()

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Client{client: client, config: cfg}, nil
}

// Close releases the underlying connection. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// HealthCheck verifies the server answers. Used by bench preflight before a
// run commits to the qdrant backend.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	reply, err := c.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if reply.GetTitle() == "" {
		return fmt.Errorf("unexpected health check response")
	}
	return nil
}

func collectionName(name string) string {
	return CollectionPrefix + name
}
