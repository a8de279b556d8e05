// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled returns the context error if ctx is done (Canceled or
// DeadlineExceeded) and nil otherwise. Multi-stage operations call it
// before starting each stage; a running external process is not interrupted
// by this check.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
