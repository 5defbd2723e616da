package ocr

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MeKo-Tech/voterroll/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	vision "google.golang.org/api/vision/v1"
)

// scripted returns the queued errors in order, then succeeds.
type scripted struct {
	errs  []error
	calls atomic.Int32
}

func (s *scripted) Recognize(ctx context.Context, image []byte) (*Result, error) {
	n := int(s.calls.Add(1)) - 1
	if n < len(s.errs) {
		return nil, s.errs[n]
	}
	return &Result{FullText: "ok"}, nil
}

func box(x0, y0, x1, y1 int) []geometry.Vertex {
	return []geometry.Vertex{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestResult_WordsSkipsPageToken(t *testing.T) {
	res := &Result{
		PageToken: true,
		Annotations: []Annotation{
			{Text: "whole page", Vertices: box(0, 0, 1000, 1000)},
			{Text: "211", Vertices: box(10, 10, 30, 20)},
			{Text: "bad", Vertices: box(0, 0, 1, 1)[:3]},
			{Text: "SML9025685", Vertices: box(40, 10, 140, 20)},
		},
	}

	words := res.Words()
	require.Len(t, words, 2)
	assert.Equal(t, "211", words[0].Text)
	assert.Equal(t, geometry.Vertex{X: 20, Y: 15}, words[0].Center)
	assert.Equal(t, "SML9025685", words[1].Text)

	res.PageToken = false
	assert.Len(t, res.WordAnnotations(), 4)

	var nilRes *Result
	assert.Empty(t, nilRes.Words())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"googleapi 429", &googleapi.Error{Code: 429}, true},
		{"googleapi 503 wrapped", fmt.Errorf("vision annotate: %w", &googleapi.Error{Code: 503}), true},
		{"googleapi 400", &googleapi.Error{Code: 400}, false},
		{"service unavailable", &ServiceError{Code: rpcUnavailable, Retryable: true}, true},
		{"service invalid", &ServiceError{Code: 3, Message: "bad image"}, false},
		{"message marker", errors.New("upstream returned 502 Bad Gateway"), true},
		{"rate limit text", errors.New("Rate Limit exceeded"), true},
		{"UNAVAILABLE text", errors.New("rpc error: code = UNAVAILABLE"), true},
		{"canceled", context.Canceled, false},
		{"deadline alone", context.DeadlineExceeded, false},
		{"permanent", errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func noSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestRetrier_RecoversFromTransient(t *testing.T) {
	backend := &scripted{errs: []error{&googleapi.Error{Code: 503}, &googleapi.Error{Code: 429}}}
	r := NewRetrier(backend, 3, 100*time.Millisecond, nil)
	var waits []time.Duration
	r.sleep = noSleep(&waits)

	res, err := r.Recognize(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.FullText)
	assert.Equal(t, int32(3), backend.calls.Load())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, waits)
}

func TestRetrier_Exhausted(t *testing.T) {
	cause := &googleapi.Error{Code: 503}
	backend := &scripted{errs: []error{cause, cause, cause, cause}}
	r := NewRetrier(backend, 3, time.Millisecond, nil)
	var waits []time.Duration
	r.sleep = noSleep(&waits)

	_, err := r.Recognize(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	var ge *googleapi.Error
	assert.ErrorAs(t, err, &ge)
	assert.Equal(t, int32(3), backend.calls.Load())
	assert.Len(t, waits, 2)
}

func TestRetrier_PermanentFailsFast(t *testing.T) {
	backend := &scripted{errs: []error{errors.New("invalid image")}}
	r := NewRetrier(backend, 3, time.Millisecond, nil)

	_, err := r.Recognize(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestRetrier_ContextCanceledDuringBackoff(t *testing.T) {
	backend := &scripted{errs: []error{&googleapi.Error{Code: 503}}}
	r := NewRetrier(backend, 3, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Recognize(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimited_SpacesCalls(t *testing.T) {
	backend := &scripted{}
	l := NewLimited(backend, 20*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := l.Recognize(context.Background(), nil)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
	assert.Equal(t, int32(3), backend.calls.Load())
}

func TestLimited_Disabled(t *testing.T) {
	l := NewLimited(&scripted{}, 0)
	for i := 0; i < 100; i++ {
		_, err := l.Recognize(context.Background(), nil)
		require.NoError(t, err)
	}
}

func TestWrap(t *testing.T) {
	backend := &scripted{errs: []error{&ServiceError{Code: rpcResourceExhausted, Retryable: true}}}
	rec := Wrap(backend, "test", Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}, nil)

	res, err := rec.Recognize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.FullText)
	assert.Equal(t, int32(2), backend.calls.Load())
}

// hanging blocks until its context ends.
type hanging struct{}

func (hanging) Recognize(ctx context.Context, _ []byte) (*Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWrap_TimeoutBoundsAttempt(t *testing.T) {
	rec := Wrap(hanging{}, "test", Policy{MaxAttempts: 1, Timeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	_, err := rec.Recognize(context.Background(), nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

// hangOnce blocks on its first call until the context ends, then succeeds.
type hangOnce struct {
	calls atomic.Int32
}

func (h *hangOnce) Recognize(ctx context.Context, _ []byte) (*Result, error) {
	if h.calls.Add(1) == 1 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &Result{FullText: "ok"}, nil
}

func TestWrap_RetriesTimedOutAttempt(t *testing.T) {
	backend := &hangOnce{}
	rec := Wrap(backend, "test", Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Timeout: 20 * time.Millisecond}, nil)

	res, err := rec.Recognize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.FullText)
	assert.Equal(t, int32(2), backend.calls.Load())
}

func TestRetrier_ExpiredCallerDeadlineNotRetried(t *testing.T) {
	backend := &hangOnce{}
	r := NewRetrier(backend, 3, time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.Recognize(ctx, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestConvertVision(t *testing.T) {
	resp := &vision.AnnotateImageResponse{
		TextAnnotations: []*vision.EntityAnnotation{
			{Description: "211 SML9025685", BoundingPoly: &vision.BoundingPoly{Vertices: []*vision.Vertex{{X: 0, Y: 0}, {X: 500, Y: 0}, {X: 500, Y: 40}, {X: 0, Y: 40}}}},
			{Description: "211", BoundingPoly: &vision.BoundingPoly{Vertices: []*vision.Vertex{{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 20}, {X: 10, Y: 20}}}},
			{Description: "SML9025685"},
		},
	}

	res, err := convertVision(resp)
	require.NoError(t, err)
	assert.True(t, res.PageToken)
	assert.Equal(t, "211 SML9025685", res.FullText)
	require.Len(t, res.Annotations, 3)

	words := res.Words()
	require.Len(t, words, 1)
	assert.Equal(t, "211", words[0].Text)

	resp.FullTextAnnotation = &vision.TextAnnotation{Text: "full"}
	res, err = convertVision(resp)
	require.NoError(t, err)
	assert.Equal(t, "full", res.FullText)
}

func TestConvertVision_Error(t *testing.T) {
	_, err := convertVision(&vision.AnnotateImageResponse{Error: &vision.Status{Code: rpcUnavailable, Message: "try later"}})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	_, err = convertVision(&vision.AnnotateImageResponse{Error: &vision.Status{Code: 3, Message: "bad image"}})
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "bad image")
}

func TestRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page_1.json")
	rec := &Recording{
		Page: 1, Width: 2480, Height: 3509,
		Result: Result{PageToken: true, Annotations: []Annotation{{Text: "all"}, {Text: "211", Vertices: box(1, 2, 3, 4)}}},
	}
	require.NoError(t, SaveRecording(path, rec))

	got, err := LoadRecording(path)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = LoadRecording(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNoTesseractBackend(t *testing.T) {
	if _, err := NewTesseractRecognizer(nil); err != nil {
		assert.ErrorIs(t, err, ErrNoBackend)
	}
}
