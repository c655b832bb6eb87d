// Package redis backs the published-event details cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	dialCheckTimeout = 2 * time.Second
	// generationTTL must outlive any single read.
	generationTTL = 24 * time.Hour
)

// KEYS[1] value, KEYS[2] generation; ARGV gen, payload, ttl in ms (0 = none)
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if (cur or '0') ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

var lookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "event_service",
		Name:      "cache_lookups_total",
		Help:      "Event cache lookups by outcome",
	},
	[]string{"outcome"}, // hit, miss, corrupt, error
)

// Client stores JSON values with a TTL. It never caches enriched numbers;
// callers put raw rows in and enrich after reading.
type Client struct {
	rdb *redis.Client
}

// New parses a redis:// URL and fails fast when the server does not answer.
func New(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := NewFromClient(redis.NewClient(opts))

	ctx, cancel := context.WithTimeout(context.Background(), dialCheckTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

func NewFromClient(rdb *redis.Client) *Client { return &Client{rdb: rdb} }

func (c *Client) Close() error                   { return c.rdb.Close() }
func (c *Client) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

// Get decodes the value under key into dest. A miss is (false, nil); so is a
// payload that no longer decodes, which is evicted on the way out.
func (c *Client) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		lookups.WithLabelValues("miss").Inc()
		return false, nil
	case err != nil:
		lookups.WithLabelValues("error").Inc()
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		lookups.WithLabelValues("corrupt").Inc()
		_ = c.rdb.Del(ctx, key).Err()
		return false, nil
	}
	lookups.WithLabelValues("hit").Inc()
	return true, nil
}

func generationKey(key string) string { return key + ":gen" }

// Generation returns the invalidation counter of key; 0 when never bumped.
func (c *Client) Generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetIfGeneration stores val under key only while the counter still equals
// gen. It reports whether the value was written.
func (c *Client) SetIfGeneration(ctx context.Context, key string, gen int64, val any, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(val)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}
	n, err := setIfGeneration.Run(ctx, c.rdb,
		[]string{key, generationKey(key)},
		strconv.FormatInt(gen, 10), raw, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Invalidate bumps the counter and drops the value in one MULTI, so fills
// that read the old counter are refused from here on.
func (c *Client) Invalidate(ctx context.Context, key string) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, generationKey(key))
		p.Expire(ctx, generationKey(key), generationTTL)
		p.Del(ctx, key)
		return nil
	})
	return err
}
