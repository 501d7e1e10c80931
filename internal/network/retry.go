package network

import "context"

// WithTimestampRetry runs call with timestamp 0 (now). If the server rejects
// the clock, call is repeated exactly once with the server's time. A second
// rejection, or any other error, is returned as is.
func WithTimestampRetry[T any](ctx context.Context, call func(ctx context.Context, ts int64) (T, error)) (T, error) {
	out, err := call(ctx, 0)
	if err == nil {
		return out, nil
	}
	now, ok := ServerNow(err)
	if !ok {
		return out, err
	}
	return call(ctx, now)
}
