package layout

import (
	"sort"
	"strings"
)

// DefaultLineTolerance is the vertical distance in pixels within which two
// words are treated as part of the same text line.
const DefaultLineTolerance = 10

// Token is a positioned piece of text fed to the line reconstructor.
type Token struct {
	X, Y int
	Text string
}

// Tokens converts words to line reconstructor input.
func Tokens(words []Word) []Token {
	out := make([]Token, len(words))
	for i, w := range words {
		out[i] = Token{X: w.Center.X, Y: w.Center.Y, Text: w.Text}
	}
	return out
}

// StructureLines groups tokens into lines by vertical proximity and returns
// the lines joined with newlines, words within a line joined by single spaces
// in left-to-right order.
//
// A new line starts whenever a token's y differs from the y of the first
// token of the current line by more than tolerance. Tokens are sorted on all
// fields first so the result does not depend on input order.
func StructureLines(tokens []Token, tolerance int) string {
	if len(tokens) == 0 {
		return ""
	}
	if tolerance < 0 {
		tolerance = 0
	}

	sorted := append([]Token(nil), tokens...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Text < b.Text
	})

	var lines []string
	line := []Token{sorted[0]}
	anchor := sorted[0].Y
	for _, tk := range sorted[1:] {
		if abs(tk.Y-anchor) > tolerance {
			lines = append(lines, joinLine(line))
			line = line[:0:0]
			anchor = tk.Y
		}
		line = append(line, tk)
	}
	lines = append(lines, joinLine(line))

	return strings.Join(lines, "\n")
}

func joinLine(line []Token) string {
	sort.SliceStable(line, func(i, j int) bool {
		a, b := line[i], line[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Text < b.Text
	})
	parts := make([]string, len(line))
	for i, tk := range line {
		parts[i] = tk.Text
	}
	return strings.Join(parts, " ")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
