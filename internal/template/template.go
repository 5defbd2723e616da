// Package template holds the grid geometry of each electoral-roll layout
// family and the registry that resolves them by name.
package template

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned when a template leaves no usable grid area on
// a page. It is fatal for a document run.
var ErrInvalidGeometry = errors.New("invalid template geometry")

// Template is the margin and grid configuration of one layout family. Margins
// are in pixels at the calibration DPI.
type Template struct {
	Name                  string `yaml:"name" json:"name"`
	Left                  int    `yaml:"left" json:"left"`
	Right                 int    `yaml:"right" json:"right"`
	Top                   int    `yaml:"top" json:"top"`
	Bottom                int    `yaml:"bottom" json:"bottom"`
	Rows                  int    `yaml:"rows" json:"rows"`
	Cols                  int    `yaml:"cols" json:"cols"`
	MinWordAnnotations    int    `yaml:"min_word_annotations" json:"min_word_annotations"`
	MinValidBlocksForPage int    `yaml:"min_valid_blocks_for_page" json:"min_valid_blocks_for_page"`

	// Page size the margins were measured on. Zero disables drift checks.
	CalibratedWidth  int `yaml:"calibrated_width" json:"calibrated_width"`
	CalibratedHeight int `yaml:"calibrated_height" json:"calibrated_height"`
}

// Work returns the usable grid area for a page of the given size.
func (t Template) Work(width, height int) (int, int) {
	return width - t.Left - t.Right, height - t.Top - t.Bottom
}

// CheckPage verifies that the template yields a non-empty grid on a page of
// the given size.
func (t Template) CheckPage(width, height int) error {
	workW, workH := t.Work(width, height)
	if workW <= 0 || workH <= 0 || t.Rows <= 0 || t.Cols <= 0 {
		return fmt.Errorf("%w: template %q on %dx%d page (work %dx%d, grid %dx%d)",
			ErrInvalidGeometry, t.Name, width, height, workW, workH, t.Rows, t.Cols)
	}
	return nil
}

// Validate checks the template fields that do not depend on page size.
func (t Template) Validate() error {
	if t.Name == "" {
		return errors.New("template name cannot be empty")
	}
	if t.Left < 0 || t.Right < 0 || t.Top < 0 || t.Bottom < 0 {
		return fmt.Errorf("%w: template %q has negative margins", ErrInvalidGeometry, t.Name)
	}
	if t.Rows <= 0 || t.Cols <= 0 {
		return fmt.Errorf("%w: template %q has %dx%d grid", ErrInvalidGeometry, t.Name, t.Rows, t.Cols)
	}
	if t.MinWordAnnotations < 0 || t.MinValidBlocksForPage < 0 {
		return fmt.Errorf("template %q has negative thresholds", t.Name)
	}
	if t.CalibratedWidth > 0 && t.CalibratedHeight > 0 {
		if err := t.CheckPage(t.CalibratedWidth, t.CalibratedHeight); err != nil {
			return err
		}
	}
	return nil
}

// Drift returns the larger relative difference between the page size and the
// calibration size. It returns 0 when the template carries no calibration.
func (t Template) Drift(width, height int) float64 {
	if t.CalibratedWidth <= 0 || t.CalibratedHeight <= 0 {
		return 0
	}
	dw := relDiff(width, t.CalibratedWidth)
	dh := relDiff(height, t.CalibratedHeight)
	if dw > dh {
		return dw
	}
	return dh
}

func relDiff(v, ref int) float64 {
	d := float64(v-ref) / float64(ref)
	if d < 0 {
		return -d
	}
	return d
}
