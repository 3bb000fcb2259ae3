package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// FallbackAdapter chains several ProviderAdapters, trying each in
// order with a small number of retries before moving to the next.
type FallbackAdapter struct {
	Adapters   []ProviderAdapter
	MaxRetries int
	RetryDelay time.Duration
}

// Chat implements ProviderAdapter by trying each adapter in order. Each
// adapter gets up to MaxRetries attempts in total (at least one) before
// Chat falls through to the next adapter. Before attempt n (n > 1) it
// waits n × RetryDelay plus a random jitter of up to RetryDelay.
func (f *FallbackAdapter) Chat(ctx context.Context, req ChatRequest) (string, error) {
	maxRetries := f.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for i, adapter := range f.Adapters {
		for attempt := 1; attempt <= maxRetries; attempt++ {
			if attempt > 1 {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(jitter(f.RetryDelay, attempt)):
				}
			}

			out, err := adapter.Chat(ctx, req)
			if err == nil {
				return out, nil
			}
			lastErr = err
			slog.Warn("llm: provider attempt failed", "provider_index", i, "attempt", attempt, "max", maxRetries, "error", err)
		}
	}
	return "", fmt.Errorf("llm: all fallback providers failed: %w", lastErr)
}

func jitter(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := time.Duration(attempt) * base
	return d + time.Duration(rand.Int63n(int64(base)+1))
}
