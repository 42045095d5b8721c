package turso

import (
	"context"
	"strings"
	"time"
)

const maxRetries = 2

// isStreamError reports a Turso "stream not found" error from a stale
// remote connection.
func isStreamError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "stream not found")
}

// withRetry runs fn again when it fails with a stream error.
func withRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil || !isStreamError(err) || attempt == maxRetries {
			return result, err
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return result, err
}
