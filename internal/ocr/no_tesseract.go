//go:build !tesseract

package ocr

// NewTesseractRecognizer reports that the binary was built without the
// tesseract tag.
func NewTesseractRecognizer(languages []string) (Recognizer, error) {
	return nil, ErrNoBackend
}
