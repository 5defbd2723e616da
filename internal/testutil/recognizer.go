package testutil

import (
	"context"
	"sync"

	"github.com/MeKo-Tech/voterroll/internal/ocr"
)

// Recognizer is a scripted OCR backend keyed by the image bytes.
type Recognizer struct {
	mu      sync.Mutex
	results map[string]*ocr.Result
	errs    map[string][]error
	calls   int
}

// NewRecognizer returns an empty script.
func NewRecognizer() *Recognizer {
	return &Recognizer{
		results: make(map[string]*ocr.Result),
		errs:    make(map[string][]error),
	}
}

// On registers the result returned for image.
func (r *Recognizer) On(image []byte, res *ocr.Result) *Recognizer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[string(image)] = res
	return r
}

// FailWith queues errors returned, one per call, before the result for
// image is served.
func (r *Recognizer) FailWith(image []byte, errs ...error) *Recognizer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[string(image)] = append(r.errs[string(image)], errs...)
	return r
}

// Calls returns the number of Recognize calls.
func (r *Recognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Recognize implements ocr.Recognizer. Unknown images yield an empty result.
func (r *Recognizer) Recognize(ctx context.Context, image []byte) (*ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	key := string(image)
	if queued := r.errs[key]; len(queued) > 0 {
		r.errs[key] = queued[1:]
		return nil, queued[0]
	}
	if res, ok := r.results[key]; ok {
		return res, nil
	}
	return &ocr.Result{}, nil
}
