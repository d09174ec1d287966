package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Local is an in-process backend for single-instance deployments.
// Writes are applied asynchronously; a Get right after Set may miss.
type Local struct {
	client *ristretto.Cache
}

func NewLocal(maxCost int64) (*Local, error) {
	if maxCost <= 0 {
		maxCost = 32 << 20
	}

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Local{client: client}, nil
}

func (l *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	raw, ok := v.([]byte)
	return raw, ok, nil
}

func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	l.client.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

func (l *Local) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		l.client.Del(k)
	}
	return nil
}

// Wait blocks until pending writes are visible.
func (l *Local) Wait() { l.client.Wait() }

func (l *Local) Close() { l.client.Close() }
