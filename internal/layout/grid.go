package layout

import (
	"github.com/MeKo-Tech/voterroll/internal/template"
)

// Cell is one (row, column) region of the voter grid.
type Cell struct {
	Row   int
	Col   int
	Index int
	Words []Word
}

// Text reconstructs the cell's reading-order text.
func (c Cell) Text(tolerance int) string {
	return StructureLines(Tokens(c.Words), tolerance)
}

// Empty reports whether no word landed in the cell.
func (c Cell) Empty() bool { return len(c.Words) == 0 }

// Grid is the result of mapping a page's words onto a template.
type Grid struct {
	Rows    int
	Cols    int
	BoxW    int
	BoxH    int
	Heading []Word
	// Cells holds every grid position in row-major order, populated or not.
	Cells []Cell
	// Dropped counts words that fell below the grid or into the side margins.
	Dropped int
}

// Cell returns the cell at (row, col).
func (g *Grid) Cell(row, col int) *Cell {
	return &g.Cells[row*g.Cols+col]
}

// Populated returns the number of cells holding at least one word.
func (g *Grid) Populated() int {
	n := 0
	for _, c := range g.Cells {
		if !c.Empty() {
			n++
		}
	}
	return n
}

// HeadingText reconstructs the text above the grid.
func (g *Grid) HeadingText(tolerance int) string {
	return StructureLines(Tokens(g.Heading), tolerance)
}

// MapGrid assigns each word to the page heading (center above the top margin)
// or to exactly one grid cell. Words in the slack between the grid and the
// page edges are dropped. It returns template.ErrInvalidGeometry when the
// template leaves no usable area on a page of this size.
func MapGrid(words []Word, width, height int, tpl template.Template) (*Grid, error) {
	if err := tpl.CheckPage(width, height); err != nil {
		return nil, err
	}
	workW, workH := tpl.Work(width, height)

	g := &Grid{
		Rows:  tpl.Rows,
		Cols:  tpl.Cols,
		BoxW:  workW / tpl.Cols,
		BoxH:  workH / tpl.Rows,
		Cells: make([]Cell, tpl.Rows*tpl.Cols),
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			i := r*g.Cols + c
			g.Cells[i] = Cell{Row: r, Col: c, Index: i}
		}
	}
	// Fewer pixels than cells leaves a zero box; no word can be placed.
	if g.BoxW == 0 || g.BoxH == 0 {
		for _, w := range words {
			if w.Center.Y < tpl.Top {
				g.Heading = append(g.Heading, w)
			} else {
				g.Dropped++
			}
		}
		return g, nil
	}

	for _, w := range words {
		if w.Center.Y < tpl.Top {
			g.Heading = append(g.Heading, w)
			continue
		}
		relX := w.Center.X - tpl.Left
		relY := w.Center.Y - tpl.Top
		if relX < 0 || relY < 0 {
			g.Dropped++
			continue
		}
		col := relX / g.BoxW
		row := relY / g.BoxH
		if row >= g.Rows || col >= g.Cols {
			g.Dropped++
			continue
		}
		cell := g.Cell(row, col)
		cell.Words = append(cell.Words, w)
	}
	return g, nil
}
