// Package memory is a process-local document backend, used by tests and by
// hosts that do not want anything written to disk.
package memory

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"playgate/pkg/platform/sentinel"
)

// Backend keeps documents in a go-cache instance without expiry.
type Backend struct {
	cache *gocache.Cache
}

func New() *Backend {
	return &Backend{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (b *Backend) Read(_ context.Context, key string) ([]byte, error) {
	v, ok := b.cache.Get(key)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	data := v.([]byte)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *Backend) Write(_ context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	b.cache.Set(key, stored, gocache.NoExpiration)
	return nil
}

func (b *Backend) Remove(_ context.Context, key string) error {
	b.cache.Delete(key)
	return nil
}

// Len reports the number of stored documents.
func (b *Backend) Len() int {
	return b.cache.ItemCount()
}
