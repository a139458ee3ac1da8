package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry runs op with exponential backoff. Errors not classified as
// retryable stop the loop immediately.
func Retry(ctx context.Context, cfg *Config, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.retryInterval()
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 2 * time.Minute
	b.Multiplier = 2.0

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)

	operation := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if cfg.OnRetry != nil {
		return backoff.RetryNotify(operation, policy, cfg.OnRetry)
	}
	return backoff.Retry(operation, policy)
}
