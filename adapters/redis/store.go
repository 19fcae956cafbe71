// Package redis provides a Redis-backed implementation of the store port.
// Entries are serialized as JSON. Concurrent reads of the same key are
// collapsed into a single round trip.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/codewandler/feedkit-go/core/sf"
	"github.com/codewandler/feedkit-go/ports/store"
)

type Config struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces all keys, e.g. "feedkit:".
	KeyPrefix string

	// Client overrides Addr/Password/DB with an existing client.
	Client *goredis.Client
}

type getResult[V any] struct {
	entry store.Entry[V]
	ok    bool
}

// Store is a Redis-backed store.Store.
type Store[V any] struct {
	rdb    *goredis.Client
	prefix string
	reads  *sf.Group[getResult[V]]
}

func New[V any](cfg Config) *Store[V] {
	rdb := cfg.Client
	if rdb == nil {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}
	return &Store[V]{
		rdb:    rdb,
		prefix: cfg.KeyPrefix,
		reads:  sf.New[getResult[V]](),
	}
}

func (s *Store[V]) key(key string) string {
	return s.prefix + key
}

func (s *Store[V]) Get(ctx context.Context, key string) (store.Entry[V], bool, error) {
	res, err, _ := s.reads.Do(key, func() (getResult[V], error) {
		data, err := s.rdb.Get(ctx, s.key(key)).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return getResult[V]{}, nil
			}
			return getResult[V]{}, fmt.Errorf("redis get: %w", err)
		}

		var entry store.Entry[V]
		if err := json.Unmarshal(data, &entry); err != nil {
			return getResult[V]{}, fmt.Errorf("decode entry: %w", err)
		}
		return getResult[V]{entry: entry, ok: true}, nil
	})
	if err != nil {
		return store.Entry[V]{}, false, err
	}
	return res.entry, res.ok, nil
}

func (s *Store[V]) Set(ctx context.Context, key string, entry store.Entry[V]) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	// No Redis-side expiration: collection is explicit and owned by the
	// cache, not the backend.
	if err := s.rdb.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *Store[V]) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Del(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// Ping checks the Redis connection.
func (s *Store[V]) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store[V]) Close() error {
	return s.rdb.Close()
}

var _ store.Store[any] = (*Store[any])(nil)
