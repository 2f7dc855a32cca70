package leave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

const (
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 20 * time.Millisecond
)

// RetryPolicy bounds how often a transaction that lost a lock race is rerun.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.MaxRetries == 0 && p.Backoff == 0 {
		return RetryPolicy{MaxRetries: DefaultMaxRetries, Backoff: DefaultRetryBackoff}
	}
	return p
}

// run calls fn once plus up to MaxRetries more times while it fails with a
// concurrency error. The wait before attempt n is n*Backoff.
func (p RetryPolicy) run(ctx context.Context, op string, onRetry func(), fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, leave.ErrConcurrency) || attempt >= p.MaxRetries {
			return err
		}

		slog.Warn("Retrying after concurrent modification",
			"operation", op,
			"attempt", attempt+1,
			"error", err,
		)
		if onRetry != nil {
			onRetry()
		}

		wait := time.Duration(attempt+1) * p.Backoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
