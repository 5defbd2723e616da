package ocr

import (
	"encoding/json"
	"fmt"
	"os"
)

// Recording is a saved OCR result together with the page size it was taken
// from, so extraction can be replayed without calling the service.
type Recording struct {
	Page   int    `json:"page"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Result Result `json:"result"`
}

// LoadRecording reads a recording written by SaveRecording.
func LoadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OCR recording: %w", err)
	}
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse OCR recording %s: %w", path, err)
	}
	if rec.Width <= 0 || rec.Height <= 0 {
		return nil, fmt.Errorf("OCR recording %s has no page size", path)
	}
	return &rec, nil
}

// SaveRecording writes rec as indented JSON.
func SaveRecording(path string, rec *Recording) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode OCR recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write OCR recording: %w", err)
	}
	return nil
}
