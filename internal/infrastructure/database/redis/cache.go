package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

var ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")

type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonSerializer struct{}

func (s *jsonSerializer) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (s *jsonSerializer) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

// ParseCache stores parse results under content-digest keys.  A miss is
// reported as (false, nil), never as an error.
type ParseCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	ttl        time.Duration
	serializer Serializer
}

type CacheOption func(*ParseCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *ParseCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *ParseCache) { c.ttl = ttl }
}

func NewParseCache(client *Client, log logging.Logger, opts ...CacheOption) *ParseCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &ParseCache{
		client:     client,
		logger:     log,
		prefix:     "chemlogqc:",
		ttl:        7 * 24 * time.Hour,
		serializer: &jsonSerializer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ParseCache) fullKey(key string) string {
	return c.prefix + key
}

// jitterTTL spreads expiry by +/- 10% so a large batch does not expire at once.
func (c *ParseCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *ParseCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if err := c.serializer.Unmarshal(data, dest); err != nil {
		// A stale encoding is treated as a miss and overwritten on the next Set.
		c.logger.Warn("undecodable cache entry", logging.String("key", key), logging.Err(err))
		return false, nil
	}
	return true, nil
}

func (c *ParseCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := c.serializer.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, c.jitterTTL(c.ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache")
	}
	return nil
}

// Purge deletes every entry whose key starts with prefix and returns how many
// were removed.
func (c *ParseCache) Purge(ctx context.Context, prefix string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	match := c.fullKey(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 200).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to scan cache")
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache keys")
			}
			deleted += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	c.logger.Info("parse cache purged", logging.String("prefix", prefix), logging.Int64("deleted", deleted))
	return deleted, nil
}

//Personal.AI order the ending
