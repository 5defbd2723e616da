// Package metrics holds the Prometheus collectors for extraction runs.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Page outcomes
	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voterroll_pages_total",
			Help: "Total number of pages processed by terminal status",
		},
		[]string{"status"},
	)

	PageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voterroll_page_duration_seconds",
			Help:    "Time to OCR and extract one page",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25},
		},
	)

	// Record outcomes
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voterroll_records_total",
			Help: "Total number of grid blocks by validation decision",
		},
		[]string{"decision"}, // decision: accept, flag, reject
	)

	// OCR service metrics
	OCRRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voterroll_ocr_requests_total",
			Help: "Total number of OCR service calls",
		},
		[]string{"backend", "status"},
	)

	OCRRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voterroll_ocr_request_duration_seconds",
			Help:    "OCR service call duration in seconds",
			Buckets: []float64{.25, .5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"backend"},
	)

	OCRRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voterroll_ocr_retries_total",
			Help: "Total number of retried OCR calls",
		},
	)

	// Transliteration metrics
	TranslitCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voterroll_translit_cache_total",
			Help: "Transliteration cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)

	TranslitFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voterroll_translit_fallback_total",
			Help: "Batches fully or partly transliterated with the local fallback",
		},
	)
)

// Serve exposes the default registry on addr under /metrics until ctx is
// done. An empty addr disables the listener.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
