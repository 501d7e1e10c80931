// Package redis stores compliance documents in Redis, for hosts that run the
// gate server-side on behalf of thin clients.
package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"playgate/pkg/platform/sentinel"
)

const defaultPrefix = "playgate:"

// Backend is a Redis-backed document backend. Keys are namespaced by a
// prefix that should include the client id.
type Backend struct {
	client *redis.Client
	prefix string
}

// Option configures a Backend.
type Option func(*Backend)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(b *Backend) {
		b.prefix = prefix
	}
}

// New constructs a Redis backend. The client lifecycle is managed by the
// caller.
func New(client *redis.Client, opts ...Option) *Backend {
	b := &Backend{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Backend) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(sentinel.ErrUnavailable, err)
	}
	return data, nil
}

func (b *Backend) Write(ctx context.Context, key string, data []byte) error {
	if err := b.client.Set(ctx, b.prefix+key, data, 0).Err(); err != nil {
		return errors.Join(sentinel.ErrUnavailable, err)
	}
	return nil
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return errors.Join(sentinel.ErrUnavailable, err)
	}
	return nil
}
