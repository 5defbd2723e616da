// Package layout turns a page's OCR word boxes into grid cells and
// reading-order text.
package layout

import (
	"strings"

	"github.com/MeKo-Tech/voterroll/internal/geometry"
	"golang.org/x/text/unicode/norm"
)

// Word is one OCR-recognized word with its normalized position.
type Word struct {
	Text   string
	Center geometry.Vertex
	Extent geometry.Extent
}

// NewWord builds a Word from raw OCR text and polygon. Text is trimmed and
// NFC-normalized so Devanagari matras compare equal across OCR backends. It
// reports false for polygons with too few corners or blank text.
func NewWord(text string, poly []geometry.Vertex) (Word, bool) {
	if !geometry.Usable(poly) {
		return Word{}, false
	}
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return Word{}, false
	}
	c, e := geometry.Normalize(poly)
	return Word{Text: text, Center: c, Extent: e}, true
}

// WordAt is a convenience for building a word from its center, used by
// synthetic pages and tests. The extent is a degenerate box at the center.
func WordAt(text string, x, y int) Word {
	return Word{
		Text:   text,
		Center: geometry.Vertex{X: x, Y: y},
		Extent: geometry.Extent{MinX: x, MaxX: x, MinY: y, MaxY: y},
	}
}
