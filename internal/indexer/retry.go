package indexer

import (
	"context"
	"errors"
	"time"
)

const maxRetryDelay = 10 * time.Second

// temporary is implemented by source errors that know whether a retry can help,
// such as chain.StatusError.
type temporary interface {
	Temporary() bool
}

// withRetry calls fn until it succeeds, the attempts run out, or the error
// reports itself as permanent. Delays double from baseDelay up to maxRetryDelay.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || permanent(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func permanent(err error) bool {
	var t temporary
	return errors.As(err, &t) && !t.Temporary()
}
