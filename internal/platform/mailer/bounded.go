package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/consult-relay/pkg/logger"
)

// Bounded wraps a Service so every attempt runs under its own timeout.
// MaxRetries of 0 means a single attempt.
type Bounded struct {
	next       Service
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

func NewBounded(next Service, timeout time.Duration, maxRetries int, backoff time.Duration) *Bounded {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Bounded{
		next:       next,
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

func (b *Bounded) Send(ctx context.Context, msg Message) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			logger.WarnContext(ctx, "Retrying email delivery",
				"attempt", attempt+1,
				"to", msg.ToEmail,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("delivery aborted after %d attempts: %w", attempt, lastErr)
			case <-time.After(b.backoff * time.Duration(attempt)):
			}
		}

		id, err := b.attempt(ctx, msg)
		if err == nil {
			return id, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

func (b *Bounded) attempt(ctx context.Context, msg Message) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	return b.next.Send(ctx, msg)
}
