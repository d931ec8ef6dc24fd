package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"server/internal/database"
	"strings"
	"sync"
	"time"
)

// valkeyDraftKV stores drafts in the dedicated Draft cache database.
type valkeyDraftKV struct {
	client database.CacheClient
}

func NewValkeyDraftKV(client database.CacheClient) DraftKV {
	return &valkeyDraftKV{client: client}
}

func (kv *valkeyDraftKV) Get(ctx context.Context, key string, dest any) (bool, error) {
	return database.NewCacheBuilder(kv.client, key).WithContext(ctx).Get(dest)
}

func (kv *valkeyDraftKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	err := database.NewCacheBuilder(kv.client, key).
		WithStruct(value).
		WithTTL(ttl).
		WithContext(ctx).
		Set()
	if err != nil {
		// The server signals a full maxmemory budget with an OOM reply; that
		// string prefix is the only signal it gives.
		if strings.Contains(err.Error(), "OOM") {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, err.Error())
		}
		return err
	}
	return nil
}

func (kv *valkeyDraftKV) Delete(ctx context.Context, key string) error {
	return database.NewCacheBuilder(kv.client, key).WithContext(ctx).Delete()
}

func (kv *valkeyDraftKV) FlushAll(ctx context.Context) error {
	return kv.client.Do(ctx, kv.client.B().Flushdb().Build()).Error()
}

// MemoryDraftKV is the in-memory DraftKV used by tests and local runs
// without a cache server. Capacity, when set, makes writes past the limit
// fail with ErrQuotaExceeded.
type MemoryDraftKV struct {
	mu       sync.RWMutex
	data     map[string][]byte
	capacity int
}

func NewMemoryDraftKV() *MemoryDraftKV {
	return &MemoryDraftKV{data: make(map[string][]byte)}
}

// SetCapacity caps total stored bytes. Zero means unlimited.
func (kv *MemoryDraftKV) SetCapacity(capacity int) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.capacity = capacity
}

func (kv *MemoryDraftKV) Get(ctx context.Context, key string, dest any) (bool, error) {
	kv.mu.RLock()
	payload, ok := kv.data[key]
	kv.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (kv *MemoryDraftKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.capacity > 0 {
		used := 0
		for k, v := range kv.data {
			if k == key {
				continue
			}
			used += len(v)
		}
		if used+len(payload) > kv.capacity {
			return ErrQuotaExceeded
		}
	}

	kv.data[key] = payload
	return nil
}

func (kv *MemoryDraftKV) Delete(ctx context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
	return nil
}

func (kv *MemoryDraftKV) FlushAll(ctx context.Context) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data = make(map[string][]byte)
	return nil
}
