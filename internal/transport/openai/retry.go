package openai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain"
)

const (
	maxAttempts    = 3
	baseBackoff    = 500 * time.Millisecond
	defaultTimeout = 30 * time.Second
)

// retryConfig tunes the retry loop shared by the embedder and the generator.
type retryConfig struct {
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func newRetryConfig(timeout time.Duration, logger *zap.Logger) retryConfig {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return retryConfig{
		attempts: maxAttempts,
		backoff:  baseBackoff,
		timeout:  timeout,
		logger:   logger,
	}
}

// withRetry runs fn up to cfg.attempts times with exponential backoff and a
// per-attempt timeout. Rate-limit errors are retried like transient failures;
// context cancellation stops the loop immediately.
func withRetry(ctx context.Context, cfg retryConfig, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= cfg.attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == cfg.attempts {
			break
		}

		delay := cfg.backoff << (attempt - 1)
		cfg.logger.Warn("Provider call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

// isRateLimited reports whether the error chain contains a rate-limit signal.
func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
