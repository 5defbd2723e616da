package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/voterroll/internal/metrics"
)

// Retry defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Retrier retries transient failures of the wrapped recognizer with
// exponential backoff: base, 2*base, 4*base, ...
type Retrier struct {
	next        Recognizer
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetrier wraps next. Non-positive values select the defaults.
func NewRetrier(next Recognizer, maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{
		next:        next,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Recognize implements Recognizer.
func (r *Retrier) Recognize(ctx context.Context, image []byte) (*Result, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		res, err := r.next.Recognize(ctx, image)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !IsRetryable(err) && !attemptTimedOut(ctx, err) {
			return nil, err
		}
		if attempt == r.maxAttempts-1 {
			break
		}

		wait := r.baseDelay << attempt
		metrics.OCRRetriesTotal.Inc()
		r.logger.Warn("transient OCR failure, retrying",
			"attempt", attempt+1,
			"max_attempts", r.maxAttempts,
			"wait", wait,
			"error", err)
		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.maxAttempts, lastErr)
}

// attemptTimedOut reports whether only the per-attempt deadline fired while
// the caller's context is still live. A hung call is treated like an
// unavailable service.
func attemptTimedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
