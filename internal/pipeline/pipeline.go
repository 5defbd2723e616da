// Package pipeline runs grid extraction over the pages of a document: OCR,
// grid mapping, field extraction and block validation per page, followed by
// document-wide ordering and transliteration of the accepted records.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/voterroll/internal/layout"
	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/MeKo-Tech/voterroll/internal/template"
	"github.com/MeKo-Tech/voterroll/internal/translit"
)

// DriftThreshold is the relative page size difference from the template's
// calibration size above which a warning is logged.
const DriftThreshold = 0.02

// Config holds configuration for a document run.
type Config struct {
	Template      template.Template
	LineTolerance int
	// Workers is the number of pages processed concurrently; 1 is sequential.
	Workers int

	Recognizer ocr.Recognizer
	Translit   *translit.Service
	Progress   ProgressCallback
	Logger     *slog.Logger

	// OnRecognized, when set, receives every fresh OCR result. It is called
	// from page workers concurrently.
	OnRecognized func(page Page, res *ocr.Result)
}

// DefaultConfig returns a sequential config on the default template.
func DefaultConfig() Config {
	return Config{
		Template:      template.NewRegistry(nil).Lookup(template.DefaultName),
		LineTolerance: layout.DefaultLineTolerance,
		Workers:       1,
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithTemplate sets the grid template used for every page.
func (b *Builder) WithTemplate(tpl template.Template) *Builder {
	b.cfg.Template = tpl
	return b
}

// WithLineTolerance sets the vertical tolerance for line reconstruction.
func (b *Builder) WithLineTolerance(px int) *Builder {
	if px > 0 {
		b.cfg.LineTolerance = px
	}
	return b
}

// WithWorkers sets the number of concurrent page workers.
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Workers = n
	}
	return b
}

// WithRecognizer sets the OCR backend. It is only needed for pages that do
// not carry a recorded OCR result.
func (b *Builder) WithRecognizer(r ocr.Recognizer) *Builder {
	b.cfg.Recognizer = r
	return b
}

// WithRecognizedHook sets a function receiving every fresh OCR result.
func (b *Builder) WithRecognizedHook(fn func(page Page, res *ocr.Result)) *Builder {
	b.cfg.OnRecognized = fn
	return b
}

// WithTransliterator sets the service filling the English name fields.
func (b *Builder) WithTransliterator(s *translit.Service) *Builder {
	b.cfg.Translit = s
	return b
}

// WithProgressCallback sets the progress callback.
func (b *Builder) WithProgressCallback(callback ProgressCallback) *Builder {
	b.cfg.Progress = callback
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.cfg.Logger = logger
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks the template geometry and worker settings.
func (b *Builder) Validate() error {
	if err := b.cfg.Template.Validate(); err != nil {
		return err
	}
	if b.cfg.LineTolerance <= 0 {
		return errors.New("line tolerance must be > 0")
	}
	if b.cfg.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	return nil
}

// Pipeline processes documents with one template.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// Build validates the config and returns the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	cfg := b.cfg
	if cfg.Progress == nil {
		cfg.Progress = NoOpProgressCallback{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger.With("template", cfg.Template.Name)}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }
