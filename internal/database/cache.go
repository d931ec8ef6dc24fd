package database

import (
	"context"
	"encoding/json"
	"fmt"
	"server/config"
	"time"

	"github.com/valkey-io/valkey-go"
)

const defaultCacheTimeout = 5 * time.Second

func newCacheClient(config config.Config, dbIdx int) (CacheClient, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{
			fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort),
		},
		SelectDB: dbIdx,
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

// CacheBuilder is a fluent wrapper over a single cache key. Values are
// stored as JSON. A nil client behaves as an always-miss cache so code
// paths stay usable without a cache server.
type CacheBuilder struct {
	client CacheClient
	key    string
	value  any
	ttl    time.Duration
	ctx    context.Context
}

func NewCacheBuilder(client CacheClient, key string) *CacheBuilder {
	return &CacheBuilder{
		client: client,
		key:    key,
	}
}

func (b *CacheBuilder) WithStruct(value any) *CacheBuilder {
	b.value = value
	return b
}

func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.ttl = ttl
	return b
}

func (b *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	b.ctx = ctx
	return b
}

func (b *CacheBuilder) context() (context.Context, context.CancelFunc) {
	if b.ctx != nil {
		return b.ctx, func() {}
	}
	return context.WithTimeout(context.Background(), defaultCacheTimeout)
}

func (b *CacheBuilder) Set() error {
	if b.client == nil {
		return nil
	}

	ctx, cancel := b.context()
	defer cancel()

	payload, err := json.Marshal(b.value)
	if err != nil {
		return err
	}

	builder := b.client.B().Set().Key(b.key).Value(string(payload))
	if b.ttl > 0 {
		return b.client.Do(ctx, builder.Ex(b.ttl).Build()).Error()
	}
	return b.client.Do(ctx, builder.Build()).Error()
}

// Get unmarshals the cached value into dest. Returns false when the key
// does not exist.
func (b *CacheBuilder) Get(dest any) (bool, error) {
	if b.client == nil {
		return false, nil
	}

	ctx, cancel := b.context()
	defer cancel()

	payload, err := b.client.Do(ctx, b.client.B().Get().Key(b.key).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}

	return true, nil
}

func (b *CacheBuilder) Delete() error {
	if b.client == nil {
		return nil
	}

	ctx, cancel := b.context()
	defer cancel()

	return b.client.Do(ctx, b.client.B().Del().Key(b.key).Build()).Error()
}
