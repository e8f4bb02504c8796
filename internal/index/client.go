// Package index adapts the Redis search engine (FT.* commands via rueidis)
// into the catalog's search surface. The index holds a best-effort,
// denormalized copy of the relational store and is never the source of truth.
package index

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// KeyPrefix namespaces document hashes in the keyspace.
const KeyPrefix = "catalog:resource:"

const defaultTimeout = 2 * time.Second

// Config holds index connectivity settings. An empty Addr disables the index
// entirely: every read reports unavailability and queries fall back to the
// relational store unconditionally.
type Config struct {
	Addr               string
	Username           string
	Password           string
	Name               string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Enabled reports whether a connection endpoint is configured.
func (c Config) Enabled() bool { return c.Addr != "" }

// Client is the long-lived search index handle, constructed once at process
// start and shared read-only across concurrent callers.
type Client struct {
	client  rueidis.Client
	name    string
	timeout time.Duration
	logger  *zap.Logger
}

// New connects to the configured index endpoint. With no endpoint configured
// it returns a disabled client rather than an error.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return Disabled(logger), nil
	}

	opt := rueidis.ClientOption{
		InitAddress:  []string{cfg.Addr},
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	}
	if cfg.InsecureSkipVerify {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-in for self-signed clusters
	}

	rc, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("create index client: %w", err)
	}

	return &Client{
		client:  rc,
		name:    indexName(cfg.Name),
		timeout: timeoutOrDefault(cfg.Timeout),
		logger:  logger,
	}, nil
}

// Disabled returns a client whose every call reports unavailability.
func Disabled(logger *zap.Logger) *Client {
	return &Client{name: indexName(""), timeout: defaultTimeout, logger: logger}
}

// NewWithClient wires an existing rueidis client, primarily for tests.
func NewWithClient(rc rueidis.Client, name string, logger *zap.Logger) *Client {
	return &Client{
		client:  rc,
		name:    indexName(name),
		timeout: defaultTimeout,
		logger:  logger,
	}
}

func indexName(name string) string {
	if name == "" {
		return "resources"
	}
	return name
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}

// Enabled reports whether the client can reach an index at all.
func (c *Client) Enabled() bool { return c != nil && c.client != nil }

// Ping checks index connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return domain.ErrIndexUnavailable
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.client.Do(ctx, c.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping index: %w", err)
	}
	return nil
}

// Close shuts down the connection.
func (c *Client) Close() {
	if c.Enabled() {
		c.client.Close()
	}
}

// bound caps a call with the configured timeout. The index never gets to
// stall a caller longer than this; on expiry the call counts as unavailable.
func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return c.client.Do(ctx, cmd)
}

func (c *Client) b() rueidis.Builder {
	return c.client.B()
}

// isRedisErr checks if err is a server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls := len(s)
	lsub := len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc := s[i+j]
			tc := substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
