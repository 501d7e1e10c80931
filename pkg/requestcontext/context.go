// Package requestcontext provides context accessors for call-scoped values.
//
// Values are set by the host (or by tests) and consumed by the signer and the
// worker without either of them reaching for globals.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	gameUserID := requestcontext.GameUserID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	requestTimeKey struct{}
	gameUserIDKey  struct{}
	requestIDKey   struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyGameUserID  = gameUserIDKey{}
	ContextKeyRequestID   = requestIDKey{}
)

// -----------------------------------------------------------------------------
// Call time
// -----------------------------------------------------------------------------

// Now retrieves the call-scoped time from context.
// Falls back to time.Now() if not set (pollers, CLI, production calls).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Signer tests that need a stable X-Tap-Ts header
//   - Offline playability tests that pin the local clock
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// -----------------------------------------------------------------------------
// Game account
// -----------------------------------------------------------------------------

// GameUserID retrieves the host game's local account id, if the host set one.
func GameUserID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyGameUserID).(string); ok {
		return v
	}
	return ""
}

// WithGameUserID injects the host game's local account id.
func WithGameUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyGameUserID, userID)
}

// -----------------------------------------------------------------------------
// Correlation
// -----------------------------------------------------------------------------

// RequestID retrieves the correlation id from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}
