// Package support holds the godog step definitions of the extraction suite.
// Scenarios run the pipeline in-process on synthetic OCR pages.
package support

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/MeKo-Tech/voterroll/internal/pipeline"
	"github.com/MeKo-Tech/voterroll/internal/template"
	"github.com/MeKo-Tech/voterroll/internal/testutil"
	"github.com/MeKo-Tech/voterroll/internal/validate"
	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	Template template.Template
	Logger   *slog.Logger

	// Pages under construction, by page number.
	Pages   map[int]*testutil.PageBuilder
	Current int
	Failing map[int]bool
	serial  int

	// Block parsing state
	Record  voter.Record
	Verdict validate.Verdict

	// Extraction state
	Outcome pipeline.PageOutcome
	Result  *pipeline.DocumentResult
	RunErr  error
}

// NewTestContext creates a context on the default template.
func NewTestContext() *TestContext {
	return &TestContext{
		Template: template.NewRegistry(nil).Lookup(template.DefaultName),
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		Pages:    make(map[int]*testutil.PageBuilder),
		Failing:  make(map[int]bool),
	}
}

func (testCtx *TestContext) page() (*testutil.PageBuilder, error) {
	b, ok := testCtx.Pages[testCtx.Current]
	if !ok {
		return nil, fmt.Errorf("no page started; use 'Given page N of the roll'")
	}
	return b, nil
}

func (testCtx *TestContext) pageNumbers() []int {
	numbers := make([]int, 0, len(testCtx.Pages))
	for n := range testCtx.Pages {
		numbers = append(numbers, n)
	}
	for n := range testCtx.Failing {
		if _, ok := testCtx.Pages[n]; !ok {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers
}

func (testCtx *TestContext) nextSerial() string {
	testCtx.serial++
	return fmt.Sprint(testCtx.serial)
}
