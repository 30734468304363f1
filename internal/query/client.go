// internal/query/client.go
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tenderec/internal/common/config"
	"tenderec/internal/common/errors"
	"tenderec/internal/common/logger"
	"tenderec/internal/common/metrics"

	"golang.org/x/sync/singleflight"
)

// Key identifies a cached query: the operation name followed by its parameters.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k starts with every part of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (k Key) name() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// id is the map key; parts are length-prefixed so "a/b"+"c" never equals "a"+"b/c".
func (k Key) id() string {
	var b strings.Builder
	for _, p := range k {
		fmt.Fprintf(&b, "%d:%s;", len(p), p)
	}
	return b.String()
}

type Options struct {
	StaleTime  time.Duration
	Retry      int
	RetryDelay time.Duration
	MaxDelay   time.Duration
}

func DefaultOptions() Options {
	return Options{
		StaleTime:  5 * time.Minute,
		Retry:      2,
		RetryDelay: time.Second,
		MaxDelay:   30 * time.Second,
	}
}

func OptionsFromConfig(cfg config.QueryConfig) Options {
	return Options{
		StaleTime:  config.GetDuration(cfg.StaleTime),
		Retry:      cfg.Retry,
		RetryDelay: config.GetDuration(cfg.RetryDelay),
		MaxDelay:   config.GetDuration(cfg.MaxDelay),
	}
}

type entry struct {
	key       Key
	value     interface{}
	updatedAt time.Time
	stale     bool
}

// Client caches successful query results. Errors are never cached.
type Client struct {
	mu      sync.RWMutex
	entries map[string]*entry
	gens    map[string]uint64 // invalidations per key
	keys    map[string]Key    // every key ever fetched
	group   singleflight.Group
	opts    Options
	logger  logger.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		entries: make(map[string]*entry),
		gens:    make(map[string]uint64),
		keys:    make(map[string]Key),
		opts:    opts,
		logger:  log.Named("query"),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithClock replaces the time source and the retry sleeper.
func (c *Client) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Client {
	if now != nil {
		c.now = now
	}
	if sleep != nil {
		c.sleep = sleep
	}
	return c
}

// Peek returns the cached value for key regardless of freshness.
func (c *Client) Peek(key Key) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.id()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// IsFresh reports whether key holds a value younger than the stale time.
func (c *Client) IsFresh(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.id()]
	return ok && c.fresh(e)
}

func (c *Client) fresh(e *entry) bool {
	return !e.stale && c.now().Sub(e.updatedAt) < c.opts.StaleTime
}

// Set stores a value directly, e.g. the response of a mutation.
func (c *Client) Set(key Key, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.id()] = &entry{key: key, value: value, updatedAt: c.now()}
	c.keys[key.id()] = key
}

// Invalidate drops every entry whose key starts with prefix so the next read
// refetches, and returns how many were dropped. Fetches already in flight when
// this is called do not repopulate the cache with their result.
func (c *Client) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, k := range c.keys {
		if !k.HasPrefix(prefix) {
			continue
		}
		c.gens[id]++
		if _, ok := c.entries[id]; ok {
			delete(c.entries, id)
			n++
		}
	}
	c.logger.Debug("Invalidated queries", map[string]interface{}{
		"prefix":  prefix.String(),
		"removed": n,
	})
	return n
}

// Clear drops every entry.
func (c *Client) Clear() {
	c.Invalidate(Key{})
}

// lookup returns a fresh cached value, or the key's current generation.
func (c *Client) lookup(key Key) (interface{}, uint64, bool) {
	id := key.id()
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok && c.fresh(e) {
		return e.value, c.gens[id], true
	}
	c.keys[id] = key
	return nil, c.gens[id], false
}

func (c *Client) store(key Key, value interface{}, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key.id()] = key
	if c.gens[key.id()] != gen {
		// Invalidated while in flight: keep the value for Peek but force a refetch.
		c.entries[key.id()] = &entry{key: key, value: value, updatedAt: c.now(), stale: true}
		return
	}
	c.entries[key.id()] = &entry{key: key, value: value, updatedAt: c.now()}
}

// retry runs fn until it succeeds, fails with a non-retryable error, or
// exhausts the configured retries. Delays double from RetryDelay up to MaxDelay.
func (c *Client) retry(ctx context.Context, key Key, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt >= c.opts.Retry || attempt >= errors.GetRetryCount(errors.CodeOf(err)) || !errors.IsRetryable(err) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		delay := c.backoff(attempt)
		metrics.QueryRetries.WithLabelValues(key.name()).Inc()
		c.logger.Warn("Query failed, retrying", map[string]interface{}{
			"query":    key.String(),
			"attempt":  attempt + 1,
			"delay_ms": delay.Milliseconds(),
			"error":    err.Error(),
		})
		if err := c.sleep(ctx, delay); err != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if c.opts.MaxDelay > 0 && d >= c.opts.MaxDelay {
			return c.opts.MaxDelay
		}
	}
	if c.opts.MaxDelay > 0 && d > c.opts.MaxDelay {
		return c.opts.MaxDelay
	}
	return d
}

// Fetch returns the cached value for key while it is fresh, otherwise runs fn
// with retries and caches the result. Concurrent fetches of one key share a
// single call.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	cached, gen, ok := c.lookup(key)
	if ok {
		if v, ok := cached.(T); ok {
			metrics.QueryCacheHits.WithLabelValues(key.name()).Inc()
			return v, nil
		}
	}
	metrics.QueryCacheMisses.WithLabelValues(key.name()).Inc()

	flightKey := fmt.Sprintf("%s#%d", key.id(), gen)
	v, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		value, err := c.retry(ctx, key, func(ctx context.Context) (interface{}, error) {
			return fn(ctx)
		})
		if err != nil {
			return nil, err
		}
		c.store(key, value, gen)
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: cached value has type %T", key, v)
	}
	return typed, nil
}

// Mutate runs a mutation once, without retries, and on success invalidates
// every key under each of the given prefixes.
func Mutate[T any](ctx context.Context, c *Client, fn func(ctx context.Context) (T, error), invalidate ...Key) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	for _, prefix := range invalidate {
		c.Invalidate(prefix)
	}
	return v, nil
}
