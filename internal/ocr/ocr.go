// Package ocr wraps the OCR services that turn a page image into positioned
// words, together with the retry and rate limiting policy shared by every
// backend.
package ocr

import (
	"context"

	"github.com/MeKo-Tech/voterroll/internal/geometry"
	"github.com/MeKo-Tech/voterroll/internal/layout"
)

// Recognizer runs OCR on one encoded page image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*Result, error)
}

// Annotation is one text annotation returned by an OCR service.
type Annotation struct {
	Text     string            `json:"text"`
	Vertices []geometry.Vertex `json:"vertices"`
}

// Result is the OCR output for a page.
type Result struct {
	FullText    string       `json:"full_text"`
	Annotations []Annotation `json:"annotations"`
	// PageToken is set when the first annotation spans the whole page and
	// holds its full text instead of a single word.
	PageToken bool `json:"page_token"`
}

// WordAnnotations returns the annotations excluding the page pseudo-token.
func (r *Result) WordAnnotations() []Annotation {
	if r == nil {
		return nil
	}
	if r.PageToken && len(r.Annotations) > 0 {
		return r.Annotations[1:]
	}
	return r.Annotations
}

// AnnotationCount is the number of annotations as the service returned
// them, page pseudo-token included.
func (r *Result) AnnotationCount() int {
	if r == nil {
		return 0
	}
	return len(r.Annotations)
}

// Words converts the word annotations to layout words, dropping those with
// fewer than four vertices or no text.
func (r *Result) Words() []layout.Word {
	anns := r.WordAnnotations()
	out := make([]layout.Word, 0, len(anns))
	for _, a := range anns {
		if w, ok := layout.NewWord(a.Text, a.Vertices); ok {
			out = append(out, w)
		}
	}
	return out
}
