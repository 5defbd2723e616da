package pipeline

import (
	"errors"
	"fmt"
)

// PageStatus is the terminal state of one page.
type PageStatus string

const (
	StatusUnprocessed PageStatus = "UNPROCESSED"
	StatusAccepted    PageStatus = "ACCEPTED"

	StatusSkippedLowText        PageStatus = "SKIPPED_LOW_TEXT"
	StatusSkippedNoBlocks       PageStatus = "SKIPPED_NO_BLOCKS"
	StatusSkippedCover          PageStatus = "SKIPPED_COVER"
	StatusSkippedEmpty          PageStatus = "SKIPPED_EMPTY"
	StatusSkippedFirstPageLimit PageStatus = "SKIPPED_FIRST_PAGE_THRESHOLD"

	StatusFailedOCR PageStatus = "FAILED_OCR"
)

// Statuses lists every terminal state in report order.
var Statuses = []PageStatus{
	StatusAccepted,
	StatusSkippedLowText,
	StatusSkippedNoBlocks,
	StatusSkippedCover,
	StatusSkippedEmpty,
	StatusSkippedFirstPageLimit,
	StatusFailedOCR,
}

// Skipped reports whether the page was skipped by a guard.
func (s PageStatus) Skipped() bool {
	switch s {
	case StatusSkippedLowText, StatusSkippedNoBlocks, StatusSkippedCover,
		StatusSkippedEmpty, StatusSkippedFirstPageLimit:
		return true
	}
	return false
}

// ErrOCRUnavailable is returned when OCR failed on every page of a run.
var ErrOCRUnavailable = errors.New("OCR unavailable for every page")

// PageError records an OCR failure for one page.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
