package ocr

import (
	"context"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/voterroll/internal/metrics"
	"golang.org/x/time/rate"
)

// DefaultPageInterval is the minimum spacing between OCR calls.
const DefaultPageInterval = 300 * time.Millisecond

// Limited spaces calls to the wrapped recognizer. One Limited shared by all
// page workers enforces a single service-wide rate.
type Limited struct {
	next    Recognizer
	limiter *rate.Limiter
}

// NewLimited allows one call per interval. A non-positive interval disables
// limiting.
func NewLimited(next Recognizer, interval time.Duration) *Limited {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limited{next: next, limiter: rate.NewLimiter(limit, 1)}
}

// Recognize implements Recognizer.
func (l *Limited) Recognize(ctx context.Context, image []byte) (*Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.next.Recognize(ctx, image)
}

// instrumented records call counts and latency per backend.
// A positive timeout bounds each attempt.
type instrumented struct {
	next    Recognizer
	backend string
	timeout time.Duration
}

func (i instrumented) Recognize(ctx context.Context, image []byte) (*Result, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := i.next.Recognize(ctx, image)
	metrics.OCRRequestDuration.WithLabelValues(i.backend).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.OCRRequestsTotal.WithLabelValues(i.backend, status).Inc()
	return res, err
}

// Policy configures the call policy wrapped around a backend.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Interval    time.Duration
	Timeout     time.Duration
}

// Wrap applies the standard policy to a backend: every attempt, retries
// included, passes through the shared limiter and is instrumented.
func Wrap(backend Recognizer, name string, p Policy, logger *slog.Logger) Recognizer {
	limited := NewLimited(instrumented{next: backend, backend: name, timeout: p.Timeout}, p.Interval)
	return NewRetrier(limited, p.MaxAttempts, p.BaseDelay, logger)
}
