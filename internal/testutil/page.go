package testutil

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/voterroll/internal/geometry"
	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/MeKo-Tech/voterroll/internal/template"
)

// Synthetic layout constants. Lines are further apart than the default
// line tolerance so reconstruction reproduces the input text exactly.
const (
	lineStep   = 30
	wordStep   = 60
	cellMargin = 20
	wordHalfW  = 20
	wordHalfH  = 8
)

// Default page size used when the template carries no calibration size.
const (
	DefaultPageWidth  = 2480
	DefaultPageHeight = 3509
)

type cellText struct {
	row, col int
	text     string
}

// PageBuilder places text into the grid cells of a template the way an
// OCR service would report it: one annotation per whitespace-separated
// word, preceded by a whole-page pseudo annotation.
type PageBuilder struct {
	tpl     template.Template
	width   int
	height  int
	heading []string
	cells   []cellText
}

// NewPage starts a page at the template's calibration size.
func NewPage(tpl template.Template) *PageBuilder {
	w, h := tpl.CalibratedWidth, tpl.CalibratedHeight
	if w <= 0 || h <= 0 {
		w, h = DefaultPageWidth, DefaultPageHeight
	}
	return &PageBuilder{tpl: tpl, width: w, height: h}
}

// Size overrides the page size.
func (b *PageBuilder) Size(width, height int) *PageBuilder {
	b.width, b.height = width, height
	return b
}

// Heading adds lines above the grid.
func (b *PageBuilder) Heading(lines ...string) *PageBuilder {
	b.heading = append(b.heading, lines...)
	return b
}

// Cell sets the text of one grid cell. Lines are separated by "\n".
func (b *PageBuilder) Cell(row, col int, text string) *PageBuilder {
	b.cells = append(b.cells, cellText{row: row, col: col, text: text})
	return b
}

// Dimensions returns the page size.
func (b *PageBuilder) Dimensions() (int, int) {
	return b.width, b.height
}

// Result renders the page as an OCR result.
func (b *PageBuilder) Result() *ocr.Result {
	var anns []ocr.Annotation
	var full []string

	for i, line := range b.heading {
		anns = appendLine(anns, line, 100, 40+i*lineStep, wordStep)
		full = append(full, line)
	}

	workW, workH := b.tpl.Work(b.width, b.height)
	boxW, boxH := 0, 0
	if b.tpl.Cols > 0 && b.tpl.Rows > 0 {
		boxW, boxH = workW/b.tpl.Cols, workH/b.tpl.Rows
	}
	for _, c := range b.cells {
		x0 := b.tpl.Left + c.col*boxW + cellMargin
		y0 := b.tpl.Top + c.row*boxH + cellMargin
		for i, line := range strings.Split(c.text, "\n") {
			step := wordStep
			if n := len(strings.Fields(line)); n > 1 && (boxW-2*cellMargin)/n < step {
				step = max(1, (boxW-2*cellMargin)/n)
			}
			anns = appendLine(anns, line, x0+wordHalfW, y0+i*lineStep, step)
			full = append(full, line)
		}
	}

	page := ocr.Annotation{
		Text: strings.Join(full, "\n"),
		Vertices: []geometry.Vertex{
			{X: 0, Y: 0}, {X: b.width, Y: 0}, {X: b.width, Y: b.height}, {X: 0, Y: b.height},
		},
	}
	return &ocr.Result{
		FullText:    page.Text,
		Annotations: append([]ocr.Annotation{page}, anns...),
		PageToken:   true,
	}
}

func appendLine(anns []ocr.Annotation, line string, x, y, step int) []ocr.Annotation {
	for j, word := range strings.Fields(line) {
		anns = append(anns, Box(word, x+j*step, y))
	}
	return anns
}

// Box returns a word annotation centred on (x, y).
func Box(text string, x, y int) ocr.Annotation {
	return ocr.Annotation{
		Text: text,
		Vertices: []geometry.Vertex{
			{X: x - wordHalfW, Y: y - wordHalfH},
			{X: x + wordHalfW, Y: y - wordHalfH},
			{X: x + wordHalfW, Y: y + wordHalfH},
			{X: x - wordHalfW, Y: y + wordHalfH},
		},
	}
}

// VoterBlock renders a complete Marathi voter block with father as the
// relation, in the layout printed on booth lists.
func VoterBlock(serial, epic, name, father, house, age, gender string) string {
	return fmt.Sprintf("%s %s 71/158/%s\nमतदाराचे पूर्ण नाव : %s\nवडिलांचे नाव : %s\nघर क्रमांक : %s\nवय : %s लिंग : %s",
		serial, epic, serial, name, father, house, age, gender)
}
