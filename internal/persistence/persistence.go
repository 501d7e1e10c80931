// Package persistence stores one JSON document per logical cache per
// compliance user. Documents are addressed by namespace and a hashed user id
// so raw account identifiers never appear in storage keys.
package persistence

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"playgate/pkg/platform/sentinel"
)

// Namespaces of the documents kept per user.
const (
	NamespaceVerification       = "verification_v2"
	NamespaceLegacyVerification = "verification"
	NamespaceUserPolicy         = "user_anti_config"
)

// Backend is a flat key to bytes store. Read returns sentinel.ErrNotFound
// for a missing key; Remove of a missing key is not an error.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

// Key derives the storage key of a user's document in namespace.
func Key(namespace, userID string) string {
	sum := md5.Sum([]byte(userID))
	return namespace + "/" + hex.EncodeToString(sum[:])
}

// Store hands out typed documents over a backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report self-healed documents.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	s := &Store{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Document is a typed handle on one stored JSON document.
type Document[T any] struct {
	store *Store
	key   string
}

// Open returns the handle of userID's document in namespace. Nothing is read
// until Load is called.
func Open[T any](s *Store, namespace, userID string) *Document[T] {
	return &Document[T]{store: s, key: Key(namespace, userID)}
}

// Key returns the storage key of the document.
func (d *Document[T]) Key() string {
	return d.key
}

// Load returns the stored value, or nil when there is none. A document that
// cannot be decoded is deleted and reported as missing.
func (d *Document[T]) Load(ctx context.Context) (*T, error) {
	data, err := d.store.backend.Read(ctx, d.key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		d.store.logger.WarnContext(ctx, "discarding corrupt document",
			"key", d.key,
			"error", err,
		)
		if rmErr := d.store.backend.Remove(ctx, d.key); rmErr != nil {
			d.store.logger.ErrorContext(ctx, "failed to remove corrupt document",
				"key", d.key,
				"error", rmErr,
			)
		}
		return nil, nil
	}
	return &v, nil
}

// Save replaces the stored value with v.
func (d *Document[T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return fmt.Errorf("save %s: nil value: %w", d.key, sentinel.ErrInvalidState)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.key, err)
	}
	if err := d.store.backend.Write(ctx, d.key, data); err != nil {
		return fmt.Errorf("write %s: %w", d.key, err)
	}
	return nil
}

// Delete removes the stored value. Deleting a missing document succeeds.
func (d *Document[T]) Delete(ctx context.Context) error {
	if err := d.store.backend.Remove(ctx, d.key); err != nil {
		return fmt.Errorf("remove %s: %w", d.key, err)
	}
	return nil
}
