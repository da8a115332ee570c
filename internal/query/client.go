package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/galacash/gateway/internal/pkg/metrics"
)

// EventType names what happened to a scope's cache.
type EventType string

const (
	EventInvalidated EventType = "invalidated"
	EventCleared     EventType = "cleared"
)

// Event is published after every invalidation so subscribers (the UI
// websocket) know which views to refetch.
type Event struct {
	Scope      string      `json:"-"`
	Type       EventType   `json:"type"`
	Mutation   string      `json:"mutation,omitempty"`
	Namespaces []Namespace `json:"namespaces,omitempty"`
	At         time.Time   `json:"at"`
}

// Observer receives cache events.
type Observer interface {
	Publish(Event)
}

// Descriptor binds a key to the function that loads it and its staleness.
type Descriptor[T any] struct {
	Key       Key
	StaleTime time.Duration
	Fetch     func(ctx context.Context) (T, error)
}

// Client is a scope's view of a Store.
type Client struct {
	scope    string
	store    Store
	retry    RetryPolicy
	observer Observer
	log      zerolog.Logger
	now      func() time.Time
	group    singleflight.Group
	gens     generations
}

// generations counts invalidations per namespace. A load remembers the
// generation it started under; if that moved by the time it finishes, its
// result predates a write and is not stored.
type generations struct {
	mu      sync.RWMutex
	seq     uint64
	cleared uint64
	byNS    map[Namespace]uint64
}

func (g *generations) current(ns Namespace) uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentLocked(ns)
}

func (g *generations) currentLocked(ns Namespace) uint64 {
	return max(g.byNS[ns], g.cleared)
}

func (g *generations) bump(namespaces ...Namespace) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	if len(namespaces) == 0 {
		g.cleared = g.seq
		return
	}
	if g.byNS == nil {
		g.byNS = make(map[Namespace]uint64)
	}
	for _, ns := range namespaces {
		g.byNS[ns] = g.seq
	}
}

// Option configures a Client.
type Option func(*Client)

func WithRetryPolicy(p RetryPolicy) Option { return func(c *Client) { c.retry = p } }
func WithObserver(o Observer) Option       { return func(c *Client) { c.observer = o } }
func WithLogger(l zerolog.Logger) Option   { return func(c *Client) { c.log = l } }
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(scope string, store Store, opts ...Option) *Client {
	c := &Client{
		scope: scope,
		store: store,
		retry: DefaultRetryPolicy(),
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scope returns the partition this client reads and writes.
func (c *Client) Scope() string { return c.scope }

// Fetch serves d from the cache when fresh, otherwise loads it (retrying per
// the client's policy) and stores the result. Concurrent fetches of one key
// share a single load; the load outlives a cancelled caller so the next
// reader still finds the entry.
func Fetch[T any](ctx context.Context, c *Client, d Descriptor[T]) (T, error) {
	var zero T
	ns := string(d.Key.Namespace())

	entry, ok, err := c.store.Get(ctx, c.scope, d.Key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", d.Key.String()).Msg("cache read failed, fetching")
		ok = false
	}
	if ok && entry.Fresh(c.now(), d.StaleTime) {
		var v T
		if err := json.Unmarshal(entry.Data, &v); err == nil {
			metrics.QueryLookupsTotal.WithLabelValues(ns, "hit").Inc()
			return v, nil
		}
	}
	if ok {
		metrics.QueryLookupsTotal.WithLabelValues(ns, "stale").Inc()
	} else {
		metrics.QueryLookupsTotal.WithLabelValues(ns, "miss").Inc()
	}

	// Readers that arrive after an invalidation never join a load started
	// before it.
	gen := c.gens.current(d.Key.Namespace())
	flight := d.Key.String() + "@" + strconv.FormatUint(gen, 10)
	ch := c.group.DoChan(flight, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), d.Key, gen, func(ctx context.Context) (any, error) {
			return d.Fetch(ctx)
		})
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		var v T
		if err := json.Unmarshal(res.Val.(json.RawMessage), &v); err != nil {
			return zero, fmt.Errorf("decode cached %s: %w", d.Key, err)
		}
		return v, nil
	}
}

// Peek returns the cached value for key only when it is fresh. It never
// loads.
func Peek[T any](ctx context.Context, c *Client, key Key, staleTime time.Duration) (T, bool) {
	var v T
	entry, ok, err := c.store.Get(ctx, c.scope, key)
	if err != nil || !ok || !entry.Fresh(c.now(), staleTime) {
		return v, false
	}
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		return v, false
	}
	return v, true
}

// Set stores v under key as a freshly fetched entry.
func Set[T any](ctx context.Context, c *Client, key Key, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.store.Set(ctx, c.scope, key, Entry{Data: data, FetchedAt: c.now()})
}

func (c *Client) load(ctx context.Context, key Key, gen uint64, fetch func(context.Context) (any, error)) (json.RawMessage, error) {
	ns := string(key.Namespace())
	for failures := 0; ; {
		v, err := fetch(ctx)
		if err == nil {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", key, err)
			}
			if err := c.storeLoaded(ctx, key, gen, data); err != nil {
				c.log.Warn().Err(err).Str("key", key.String()).Msg("cache write failed")
			}
			return data, nil
		}

		failures++
		if !c.retry.ShouldRetry(failures, err) {
			return nil, err
		}
		metrics.QueryRetriesTotal.WithLabelValues(ns).Inc()
		c.log.Debug().Err(err).Str("key", key.String()).Int("attempt", failures).Msg("retrying query")

		timer := time.NewTimer(c.retry.Delay(failures))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// storeLoaded writes a load result. The generation check and the write
// happen under the read lock so an invalidation either sees the entry in
// the store or makes the check fail.
func (c *Client) storeLoaded(ctx context.Context, key Key, gen uint64, data json.RawMessage) error {
	c.gens.mu.RLock()
	defer c.gens.mu.RUnlock()
	if c.gens.currentLocked(key.Namespace()) != gen {
		c.log.Debug().Str("key", key.String()).Msg("load overtaken by invalidation, not cached")
		return nil
	}
	return c.store.Set(ctx, c.scope, key, Entry{Data: data, FetchedAt: c.now()})
}

// Invalidate marks every entry under the given namespaces stale and
// publishes one event naming them.
func (c *Client) Invalidate(ctx context.Context, mutation string, namespaces ...Namespace) error {
	c.gens.bump(namespaces...)
	var firstErr error
	for _, ns := range namespaces {
		n, err := c.store.Invalidate(ctx, c.scope, Key{string(ns)})
		if err != nil {
			c.log.Error().Err(err).Str("namespace", string(ns)).Msg("invalidate failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.InvalidationsTotal.WithLabelValues(mutation, string(ns)).Inc()
		c.log.Debug().Str("mutation", mutation).Str("namespace", string(ns)).Int("entries", n).Msg("namespace invalidated")
	}
	c.publish(Event{Type: EventInvalidated, Mutation: mutation, Namespaces: namespaces})
	return firstErr
}

// Clear drops the whole scope.
func (c *Client) Clear(ctx context.Context, mutation string) error {
	c.gens.bump()
	err := c.store.Clear(ctx, c.scope)
	if err != nil {
		c.log.Error().Err(err).Msg("clear cache failed")
	}
	c.publish(Event{Type: EventCleared, Mutation: mutation})
	return err
}

func (c *Client) publish(e Event) {
	if c.observer == nil {
		return
	}
	e.Scope = c.scope
	e.At = c.now()
	c.observer.Publish(e)
}
