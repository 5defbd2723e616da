package layout

import (
	"testing"

	"github.com/MeKo-Tech/voterroll/internal/geometry"
	"github.com/stretchr/testify/assert"
)

func TestStructureLines(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []Token
		tolerance int
		expected  string
	}{
		{name: "empty", tokens: nil, tolerance: 10, expected: ""},
		{
			name:      "single line ordered by x",
			tokens:    []Token{{X: 50, Y: 10, Text: "SML9025685"}, {X: 10, Y: 12, Text: "211"}},
			tolerance: 10,
			expected:  "211 SML9025685",
		},
		{
			name: "two lines",
			tokens: []Token{
				{X: 10, Y: 100, Text: "वय"},
				{X: 10, Y: 10, Text: "10"},
				{X: 60, Y: 8, Text: "SRO8732299"},
				{X: 40, Y: 101, Text: ":"},
				{X: 60, Y: 99, Text: "45"},
			},
			tolerance: 10,
			expected:  "10 SRO8732299\nवय : 45",
		},
		{
			name: "anchor is first token of line",
			tokens: []Token{
				{X: 0, Y: 0, Text: "a"},
				{X: 10, Y: 8, Text: "b"},
				{X: 20, Y: 16, Text: "c"},
			},
			tolerance: 10,
			expected:  "a b\nc",
		},
		{
			name:      "zero tolerance splits every distinct y",
			tokens:    []Token{{X: 0, Y: 0, Text: "a"}, {X: 10, Y: 1, Text: "b"}},
			tolerance: 0,
			expected:  "a\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StructureLines(tt.tokens, tt.tolerance))
		})
	}
}

func TestNewWord(t *testing.T) {
	poly := []geometry.Vertex{{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 20}, {X: 10, Y: 20}}

	w, ok := NewWord("  नाव ", poly)
	assert.True(t, ok)
	assert.Equal(t, "नाव", w.Text)
	assert.Equal(t, geometry.Vertex{X: 20, Y: 15}, w.Center)

	_, ok = NewWord("x", poly[:3])
	assert.False(t, ok)

	_, ok = NewWord("   ", poly)
	assert.False(t, ok)
}
