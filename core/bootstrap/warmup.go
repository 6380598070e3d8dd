package bootstrap

import (
	"context"
	"fmt"
)

// Warmup prepares application state that must be ready before the bot starts
// serving updates, such as preloading reference data into memory.
type Warmup interface {
	Warm(ctx context.Context, infra *Result) error
}

// WarmupFunc adapts a bare function to the Warmup interface.
type WarmupFunc func(ctx context.Context, infra *Result) error

// Warm executes the underlying function.
func (f WarmupFunc) Warm(ctx context.Context, infra *Result) error {
	return f(ctx, infra)
}

// RunWarmups executes each warmup in order and stops at the first failure.
func RunWarmups(ctx context.Context, infra *Result, warmups ...Warmup) error {
	for i, w := range warmups {
		if w == nil {
			continue
		}
		if err := w.Warm(ctx, infra); err != nil {
			return fmt.Errorf("bootstrap: warmup %d failed: %w", i, err)
		}
	}
	return nil
}
