//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MeKo-Tech/voterroll/internal/geometry"
	"github.com/otiai10/gosseract/v2"
)

// DefaultTesseractLanguages maps the Vision language hints to Tesseract
// traineddata names.
var DefaultTesseractLanguages = []string{"mar", "hin", "eng"}

// TesseractRecognizer runs a local Tesseract engine. Calls are serialized
// because a gosseract client is not safe for concurrent use.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractRecognizer creates a Tesseract client for the given languages.
func NewTesseractRecognizer(languages []string) (Recognizer, error) {
	if len(languages) == 0 {
		languages = DefaultTesseractLanguages
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set tesseract languages %s: %w", strings.Join(languages, "+"), err)
	}
	return &TesseractRecognizer{client: client}, nil
}

// Recognize implements Recognizer.
func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract word boxes: %w", err)
	}

	res := &Result{FullText: text, Annotations: make([]Annotation, 0, len(boxes))}
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		r := box.Box
		res.Annotations = append(res.Annotations, Annotation{
			Text: box.Word,
			Vertices: []geometry.Vertex{
				{X: r.Min.X, Y: r.Min.Y},
				{X: r.Max.X, Y: r.Min.Y},
				{X: r.Max.X, Y: r.Max.Y},
				{X: r.Min.X, Y: r.Max.Y},
			},
		})
	}
	return res, nil
}

// Close releases the Tesseract engine.
func (t *TesseractRecognizer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
