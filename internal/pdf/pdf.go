// Package pdf turns scanned electoral-roll PDFs and loose scan files into
// page images ready for OCR.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// JPEGQuality is used when re-encoding page images for upload.
const JPEGQuality = 95

// PageImage is one page rendered for OCR. Data holds JPEG bytes.
type PageImage struct {
	Number int
	Width  int
	Height int
	Data   []byte
}

// ErrNoPages is returned when a PDF yields no page images.
var ErrNoPages = errors.New("no page images found")

// IsPDF reports whether path looks like a PDF file.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// PageCount returns the number of pages in a PDF.
func PageCount(filename string) (int, error) {
	n, err := api.PageCountFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF %s: %w", filename, err)
	}
	return n, nil
}

// ExtractPages extracts the scan image of each selected page. Scanned
// rolls carry one full-page image per page; when a page holds several
// images the largest one is taken. Pages without an image are omitted.
func ExtractPages(filename, pageRange string) ([]PageImage, error) {
	pageNumbers, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "voterroll-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var selected []string
	for _, n := range pageNumbers {
		selected = append(selected, strconv.Itoa(n))
	}
	if err := api.ExtractImagesFile(filename, tempDir, selected, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	pages, err := collectPageImages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to process extracted images: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPages, filename)
	}
	return pages, nil
}

// LoadImage reads a single scan file as a page.
func LoadImage(path string, number int) (PageImage, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	return encodePage(img, number)
}

func encodePage(img image.Image, number int) (PageImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return PageImage{}, fmt.Errorf("failed to encode page %d: %w", number, err)
	}
	b := img.Bounds()
	return PageImage{Number: number, Width: b.Dx(), Height: b.Dy(), Data: buf.Bytes()}, nil
}

// collectPageImages groups the extracted files by page, keeps the largest
// image of each page and returns the pages in order. Unreadable files and
// files without a page number are skipped.
func collectPageImages(dir string) ([]PageImage, error) {
	largest := make(map[int]image.Image)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		pageNum, err := parsePageFromFilename(e.Name())
		if err != nil {
			continue
		}
		img, err := imaging.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		if cur, ok := largest[pageNum]; !ok || area(img) > area(cur) {
			largest[pageNum] = img
		}
	}

	numbers := make([]int, 0, len(largest))
	for n := range largest {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	pages := make([]PageImage, 0, len(numbers))
	for _, n := range numbers {
		p, err := encodePage(largest[n], n)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func area(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}

var (
	legacyImageName = regexp.MustCompile(`^page_(\d+)_`)
	pdfcpuImageName = regexp.MustCompile(`_(\d+)_[^_]*$`)
)

// parsePageFromFilename extracts the page number from an extracted image
// name. pdfcpu names images <file>_<page>_<id>.<ext>; the older
// page_<page>_image_<n>.<ext> form is accepted too.
func parsePageFromFilename(filename string) (int, error) {
	m := legacyImageName.FindStringSubmatch(filename)
	if m == nil {
		m = pdfcpuImageName.FindStringSubmatch(filename)
	}
	if m == nil {
		return 0, errors.New("not a page image file")
	}
	return strconv.Atoi(m[1])
}

// parsePageRange parses a page selection such as "1-5" or "1,3,5". The
// result is sorted and free of duplicates; an empty selection means all
// pages.
func parsePageRange(pageRange string) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		for _, p := range tokenPages {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}
	sort.Ints(pages)
	return pages, nil
}

// parseRangeToken parses either a single page ("3") or a range ("1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := parsePageNumber(rangeParts[0])
		if err != nil {
			return nil, err
		}
		end, err := parsePageNumber(rangeParts[1])
		if err != nil {
			return nil, err
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := parsePageNumber(part)
	if err != nil {
		return nil, err
	}
	return []int{page}, nil
}

func parsePageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page number: %q", strings.TrimSpace(s))
	}
	return n, nil
}

// ParsePageRange validates a page selection and returns the selected pages.
func ParsePageRange(pageRange string) ([]int, error) {
	return parsePageRange(pageRange)
}
