package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/galacash/gateway/internal/query"
)

const (
	keyPrefix     = "galacash:q:"
	defaultGCTime = 30 * time.Minute
	scanCount     = 200
)

// QueryStore is a query.Store shared by every gateway replica.
// Key format: galacash:q:<scope>:<query key>
//
// Invalidation deletes entries instead of flagging them: a deleted key is a
// miss, which refetches exactly like a stale hit.
type QueryStore struct {
	client *redis.Client
	gcTime time.Duration
}

// NewQueryStore creates a QueryStore. Entries expire after gcTime without
// being rewritten.
func NewQueryStore(client *redis.Client, gcTime time.Duration) *QueryStore {
	if gcTime <= 0 {
		gcTime = defaultGCTime
	}
	return &QueryStore{client: client, gcTime: gcTime}
}

func (s *QueryStore) Get(ctx context.Context, scope string, key query.Key) (query.Entry, bool, error) {
	var e query.Entry
	raw, err := s.client.Get(ctx, s.key(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, false, nil
	}
	if err != nil {
		return e, false, fmt.Errorf("query store get: %w", err)
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, false, fmt.Errorf("query store decode: %w", err)
	}
	return e, true, nil
}

func (s *QueryStore) Set(ctx context.Context, scope string, key query.Key, e query.Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("query store encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(scope, key), raw, s.gcTime).Err(); err != nil {
		return fmt.Errorf("query store set: %w", err)
	}
	return nil
}

func (s *QueryStore) Invalidate(ctx context.Context, scope string, prefix query.Key) (int, error) {
	scopePrefix := keyPrefix + scope + ":"
	keys, err := s.scan(ctx, scopePrefix+globEscape(prefix.String())+"*")
	if err != nil {
		return 0, err
	}
	// The glob also matches longer segments ("cash" vs "cash-bills");
	// keep only true tuple prefixes.
	matched := keys[:0]
	for _, k := range keys {
		if query.ParseKey(strings.TrimPrefix(k, scopePrefix)).HasPrefix(prefix) {
			matched = append(matched, k)
		}
	}
	if err := s.del(ctx, matched); err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (s *QueryStore) Clear(ctx context.Context, scope string) error {
	keys, err := s.scan(ctx, keyPrefix+globEscape(scope)+":*")
	if err != nil {
		return err
	}
	return s.del(ctx, keys)
}

func (s *QueryStore) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("query store scan: %w", err)
	}
	return keys, nil
}

func (s *QueryStore) del(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("query store delete: %w", err)
	}
	return nil
}

func (s *QueryStore) key(scope string, key query.Key) string {
	return keyPrefix + scope + ":" + key.String()
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func globEscape(s string) string {
	return globReplacer.Replace(s)
}
