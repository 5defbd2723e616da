package pdf

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name        string
		pageRange   string
		want        []int
		expectError bool
	}{
		{name: "empty range returns nil", pageRange: "", want: nil},
		{name: "single page", pageRange: "1", want: []int{1}},
		{name: "multiple single pages", pageRange: "1,3,5", want: []int{1, 3, 5}},
		{name: "simple range", pageRange: "1-5", want: []int{1, 2, 3, 4, 5}},
		{name: "mixed pages and ranges", pageRange: "1,3-5,7", want: []int{1, 3, 4, 5, 7}},
		{name: "range with spaces", pageRange: " 1 - 3 , 5 ", want: []int{1, 2, 3, 5}},
		{name: "overlapping and unordered", pageRange: "7,2-4,3", want: []int{2, 3, 4, 7}},
		{name: "invalid page number", pageRange: "abc", expectError: true},
		{name: "invalid range format", pageRange: "1-2-3", expectError: true},
		{name: "start greater than end", pageRange: "5-1", expectError: true},
		{name: "invalid end page", pageRange: "1-xyz", expectError: true},
		{name: "zero page", pageRange: "0", expectError: true},
		{name: "negative page", pageRange: "-1", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRange(tt.pageRange)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageFromFilename(t *testing.T) {
	tests := []struct {
		filename    string
		want        int
		expectError bool
	}{
		{filename: "roll_3_Im0.jpg", want: 3},
		{filename: "ward_5_roll_12_Im1.png", want: 12},
		{filename: "page_1_image_1.png", want: 1},
		{filename: "page_10_image_2.jpg", want: 10},
		{filename: "image_1.png", expectError: true},
		{filename: "notes.txt", expectError: true},
		{filename: "page_abc_image.png", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := parsePageFromFilename(tt.filename)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func testImage(w, h int) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
}

func TestCollectPageImages(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, imaging.Save(testImage(40, 60), filepath.Join(dir, "roll_2_Im0.png")))
	require.NoError(t, imaging.Save(testImage(80, 120), filepath.Join(dir, "roll_2_Im1.jpg")))
	require.NoError(t, imaging.Save(testImage(30, 20), filepath.Join(dir, "roll_1_Im0.png")))

	var tiffBuf bytes.Buffer
	require.NoError(t, tiff.Encode(&tiffBuf, testImage(50, 70), nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roll_4_Im0.tif"), tiffBuf.Bytes(), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "roll_5_Im0.png"), []byte("corrupt"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644))

	pages, err := collectPageImages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, 80, pages[1].Width, "largest image of the page wins")
	assert.Equal(t, 120, pages[1].Height)
	assert.Equal(t, 4, pages[2].Number)
	assert.Equal(t, 50, pages[2].Width)

	for _, p := range pages {
		_, format, err := image.DecodeConfig(bytes.NewReader(p.Data))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, imaging.Save(testImage(64, 32), path))

	page, err := LoadImage(path, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, page.Number)
	assert.Equal(t, 64, page.Width)
	assert.Equal(t, 32, page.Height)
	assert.NotEmpty(t, page.Data)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"), 1)
	require.Error(t, err)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("roll.pdf"))
	assert.True(t, IsPDF("/data/ROLL.PDF"))
	assert.False(t, IsPDF("scan.png"))
}

func TestExtractPages_Errors(t *testing.T) {
	_, err := ExtractPages("roll.pdf", "5-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page range")

	_, err = ExtractPages(filepath.Join(t.TempDir(), "missing.pdf"), "")
	require.Error(t, err)

	_, err = PageCount(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}
