package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/MeKo-Tech/voterroll/internal/layout"
	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/MeKo-Tech/voterroll/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.True(t, FileExists(root+"/go.mod"))
}

func TestPageBuilder_RoundTripsCellText(t *testing.T) {
	tpl := template.NewRegistry(nil).Lookup(template.DefaultName)
	block := VoterBlock("12", "ABC1234567", "सुनील पाटील", "रमेश पाटील", "4", "40", "पुरुष")

	b := NewPage(tpl).
		Heading("जिल्हा : पुणे").
		Cell(2, 1, block)
	res := b.Result()
	require.True(t, res.PageToken)

	w, h := b.Dimensions()
	grid, err := layout.MapGrid(res.Words(), w, h, tpl)
	require.NoError(t, err)

	assert.Equal(t, 1, grid.Populated())
	assert.Equal(t, block, grid.Cell(2, 1).Text(layout.DefaultLineTolerance))
	assert.Equal(t, "जिल्हा : पुणे", grid.HeadingText(layout.DefaultLineTolerance))
	assert.Empty(t, grid.Dropped)
}

func TestRecognizer(t *testing.T) {
	ctx := context.Background()
	want := &ocr.Result{FullText: "x"}
	boom := errors.New("boom")
	r := NewRecognizer().On([]byte("a"), want).FailWith([]byte("a"), boom)

	_, err := r.Recognize(ctx, []byte("a"))
	assert.ErrorIs(t, err, boom)

	got, err := r.Recognize(ctx, []byte("a"))
	require.NoError(t, err)
	assert.Same(t, want, got)

	got, err = r.Recognize(ctx, []byte("unknown"))
	require.NoError(t, err)
	assert.Empty(t, got.Annotations)
	assert.Equal(t, 3, r.Calls())
}

func TestWriteRecording(t *testing.T) {
	tpl := template.NewRegistry(nil).Lookup(template.DefaultName)
	path := WriteRecording(t, t.TempDir(), 3, NewPage(tpl).Cell(0, 0, "1 ABC1234567"))

	rec, err := ocr.LoadRecording(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Page)
	assert.Equal(t, DefaultPageWidth, rec.Width)
	assert.Len(t, rec.Result.WordAnnotations(), 2)
}
