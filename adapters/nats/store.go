package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/feedkit-go/core/sf"
	"github.com/codewandler/feedkit-go/ports/store"
)

type StoreConfig struct {
	Connect Connector
	Bucket  string

	// MaxBytes bounds the size of the KV bucket (default 1 MiB).
	MaxBytes int64
}

type getResult[V any] struct {
	entry store.Entry[V]
	ok    bool
}

// Store is a store.Store backed by a NATS JetStream KV bucket. Entries are
// serialized as JSON. Concurrent reads of the same key are collapsed into a
// single round trip.
type Store[V any] struct {
	kv    jetstream.KeyValue
	close closeFunc
	reads *sf.Group[getResult[V]]
}

func NewStore[V any](cfg StoreConfig) (*Store[V], error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 1024 * 1024
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeCon, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeCon()
		return nil, err
	}

	kv, err := js.CreateOrUpdateKeyValue(context.Background(), jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  jetstream.FileStorage,
		MaxBytes: cfg.MaxBytes,
	})
	if err != nil {
		closeCon()
		return nil, err
	}

	return &Store[V]{
		kv:    kv,
		close: closeCon,
		reads: sf.New[getResult[V]](),
	}, nil
}

func (s *Store[V]) Get(ctx context.Context, key string) (store.Entry[V], bool, error) {
	res, err, _ := s.reads.Do(key, func() (getResult[V], error) {
		v, err := s.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				return getResult[V]{}, nil
			}
			return getResult[V]{}, fmt.Errorf("kv get %q: %w", key, err)
		}

		var entry store.Entry[V]
		if err := json.Unmarshal(v.Value(), &entry); err != nil {
			return getResult[V]{}, fmt.Errorf("decode entry %q: %w", key, err)
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
		return fmt.Errorf("encode entry %q: %w", key, err)
	}
	if _, err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func (s *Store[V]) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return true, nil
}

func (s *Store[V]) Delete(ctx context.Context, key string) (bool, error) {
	ok, err := s.Has(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := s.kv.Purge(ctx, key); err != nil {
		return false, fmt.Errorf("kv purge %q: %w", key, err)
	}
	return true, nil
}

// Close releases the NATS connection.
func (s *Store[V]) Close() {
	if s.close != nil {
		s.close()
	}
}

var _ store.Store[any] = (*Store[any])(nil)
