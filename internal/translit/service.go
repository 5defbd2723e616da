package translit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/voterroll/internal/metrics"
)

// DefaultBatchSize bounds the names sent in one backend request, about one
// roll page worth of names and relatives.
const DefaultBatchSize = 50

// Service deduplicates names, serves what it can from the cache and sends
// the rest to the backend in batches of at most the batch size.
// Transliteration is best-effort: when the backend fails or leaves a name
// unanswered the local scheme is used instead, and Transliterate never
// returns an error.
type Service struct {
	backend   Transliterator
	fallback  Transliterator
	cache     Cache
	logger    *slog.Logger
	batchSize int
}

// NewService wraps backend. A nil cache disables caching.
func NewService(backend Transliterator, cache Cache, logger *slog.Logger) *Service {
	if backend == nil {
		backend = Local{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:   backend,
		fallback:  Local{},
		cache:     cache,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize sets the request size. Values below 1 are ignored.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Transliterate returns one English name per input, in input order.
// Blank inputs map to blank outputs.
func (s *Service) Transliterate(ctx context.Context, names []string) []string {
	out := make([]string, len(names))
	if _, ok := s.backend.(None); ok {
		return out
	}

	pending := make(map[string][]int)
	var batch []string
	for i, name := range names {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		if s.cache != nil {
			if v, ok := s.cache.Get(ctx, key); ok {
				metrics.TranslitCacheTotal.WithLabelValues("hit").Inc()
				out[i] = v
				continue
			}
			metrics.TranslitCacheTotal.WithLabelValues("miss").Inc()
		}
		if _, seen := pending[key]; !seen {
			batch = append(batch, key)
		}
		pending[key] = append(pending[key], i)
	}
	if len(batch) == 0 {
		return out
	}

	for start := 0; start < len(batch); start += s.batchSize {
		end := min(start+s.batchSize, len(batch))
		for j, english := range s.request(ctx, batch[start:end]) {
			for _, i := range pending[batch[start+j]] {
				out[i] = english
			}
		}
	}
	return out
}

// request transliterates one chunk. Names the backend leaves blank are
// filled locally and counted as a fallback.
func (s *Service) request(ctx context.Context, chunk []string) []string {
	results, err := s.backend.Transliterate(ctx, chunk)
	answered := err == nil && len(results) == len(chunk)
	if !answered {
		s.logger.Warn("Transliteration backend failed, using local scheme",
			"names", len(chunk), "error", err)
		metrics.TranslitFallbackTotal.Inc()
		results, _ = s.fallback.Transliterate(ctx, chunk)
	}

	out := make([]string, len(chunk))
	missing := 0
	for j, key := range chunk {
		english := strings.TrimSpace(results[j])
		switch {
		case english == "":
			if answered {
				missing++
			}
			english = TransliterateName(key)
		case answered && s.cache != nil:
			s.cache.Set(ctx, key, english)
		}
		out[j] = english
	}
	if missing > 0 {
		s.logger.Warn("Transliteration backend left names unanswered, using local scheme",
			"names", len(chunk), "unanswered", missing)
		metrics.TranslitFallbackTotal.Inc()
	}
	return out
}
