package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/stretchr/testify/require"
)

// WriteRecording saves the page built by b as a recorded OCR response and
// returns its path.
func WriteRecording(t *testing.T, dir string, page int, b *PageBuilder) string {
	t.Helper()

	w, h := b.Dimensions()
	path := filepath.Join(dir, fmt.Sprintf("page_%03d.json", page))
	require.NoError(t, ocr.SaveRecording(path, &ocr.Recording{
		Page:   page,
		Width:  w,
		Height: h,
		Result: *b.Result(),
	}))
	return path
}
