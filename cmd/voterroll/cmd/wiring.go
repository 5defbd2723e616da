package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/MeKo-Tech/voterroll/internal/config"
	"github.com/MeKo-Tech/voterroll/internal/export"
	"github.com/MeKo-Tech/voterroll/internal/metrics"
	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/MeKo-Tech/voterroll/internal/pipeline"
	"github.com/MeKo-Tech/voterroll/internal/template"
	"github.com/MeKo-Tech/voterroll/internal/translit"
)

// tesseractLanguages maps Vision language hints to traineddata names.
var tesseractLanguages = map[string]string{
	"mr": "mar",
	"hi": "hin",
	"en": "eng",
}

func newRegistry(cfg *config.Config, logger *slog.Logger) (*template.Registry, error) {
	reg := template.NewRegistry(logger)
	if cfg.Template.File != "" {
		if err := reg.LoadFile(cfg.Template.File); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func resolveTemplate(cfg *config.Config, logger *slog.Logger) (template.Template, error) {
	reg, err := newRegistry(cfg, logger)
	if err != nil {
		return template.Template{}, err
	}
	return reg.Lookup(cfg.Template.Name), nil
}

// newRecognizer builds the configured OCR backend wrapped in the retry and
// rate-limit policy. The returned func releases backend resources.
func newRecognizer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ocr.Recognizer, func(), error) {
	var backend ocr.Recognizer
	switch cfg.OCR.Backend {
	case config.OCRBackendVision:
		v, err := ocr.NewVisionRecognizer(ctx, cfg.VisionConfig())
		if err != nil {
			return nil, nil, err
		}
		backend = v
	case config.OCRBackendTesseract:
		var langs []string
		for _, hint := range cfg.OCR.LanguageHints {
			if l, ok := tesseractLanguages[hint]; ok {
				langs = append(langs, l)
			}
		}
		t, err := ocr.NewTesseractRecognizer(langs)
		if err != nil {
			return nil, nil, fmt.Errorf("tesseract backend: %w", err)
		}
		backend = t
	case config.OCRBackendRecorded:
		return nil, nil, errors.New("the recorded OCR backend replays saved results; use the parse command")
	default:
		return nil, nil, fmt.Errorf("unknown OCR backend %q", cfg.OCR.Backend)
	}

	release := func() {
		if c, ok := backend.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return ocr.Wrap(backend, cfg.OCR.Backend, cfg.OCRPolicy(), logger), release, nil
}

// newTransliterator builds the transliteration service. A missing Gemini
// key or an unreachable Redis degrade to the local backend and the memory
// cache.
func newTransliterator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*translit.Service, func(), error) {
	var backend translit.Transliterator
	switch cfg.Translit.Backend {
	case translit.BackendNone:
		backend = translit.None{}
	case translit.BackendLocal:
		backend = translit.Local{}
	case translit.BackendGemini:
		gc := cfg.GeminiConfig()
		if gc.APIKey == "" {
			gc.APIKey = os.Getenv("GEMINI_API_KEY")
		}
		g, err := translit.NewGemini(ctx, gc)
		switch {
		case errors.Is(err, translit.ErrMissingAPIKey):
			logger.Warn("No Gemini API key configured, using local transliteration")
			backend = translit.Local{}
		case err != nil:
			return nil, nil, err
		default:
			backend = g
		}
	default:
		return nil, nil, translit.ValidateBackend(cfg.Translit.Backend)
	}

	var cache translit.Cache = translit.NewMemoryCache()
	release := func() {}
	if cfg.Translit.Cache == config.CacheRedis {
		rc, err := translit.NewRedisCache(ctx, cfg.Translit.RedisURL, cfg.CacheTTL())
		if err != nil {
			logger.Warn("Redis cache unavailable, using memory cache", "error", err)
		} else {
			cache = rc
			release = func() { _ = rc.Close() }
		}
	}
	return translit.NewService(backend, cache, logger), release, nil
}

// recordingHook saves each fresh OCR result under dir so the run can be
// replayed with the parse command.
func recordingHook(dir string, logger *slog.Logger) (func(pipeline.Page, *ocr.Result), error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create OCR output directory: %w", err)
	}
	return func(page pipeline.Page, res *ocr.Result) {
		path := filepath.Join(dir, fmt.Sprintf("page_%03d.json", page.Number))
		rec := &ocr.Recording{Page: page.Number, Width: page.Width, Height: page.Height, Result: *res}
		if err := ocr.SaveRecording(path, rec); err != nil {
			logger.Warn("Failed to save OCR result", "page", page.Number, "error", err)
		}
	}, nil
}

// filterPages keeps the pages named by the range; nil keeps all.
func filterPages(pages []pipeline.Page, selected []int) []pipeline.Page {
	if selected == nil {
		return pages
	}
	var out []pipeline.Page
	for _, p := range pages {
		if slices.Contains(selected, p.Number) {
			out = append(out, p)
		}
	}
	return out
}

type runOptions struct {
	recognizer ocr.Recognizer
	hook       func(pipeline.Page, *ocr.Result)
	progress   bool
}

// runPipeline processes pages and exports the result. Records are written
// even when every page failed OCR, and the failure is then returned.
func runPipeline(ctx context.Context, out, errOut io.Writer, cfg *config.Config, pages []pipeline.Page, opts runOptions) error {
	logger := slog.Default()

	tpl, err := resolveTemplate(cfg, logger)
	if err != nil {
		return err
	}
	svc, releaseTranslit, err := newTransliterator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer releaseTranslit()

	if cfg.Metrics.Addr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := metrics.Serve(metricsCtx, cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics listener failed", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
	}

	progress := pipeline.NewMultiProgressCallback(pipeline.NewLogProgressCallback(logger, slog.LevelDebug))
	if opts.progress {
		progress.Add(pipeline.NewConsoleProgressCallback(errOut, "Extracting: "))
	}

	p, err := pipeline.NewBuilder().
		WithTemplate(tpl).
		WithLineTolerance(cfg.Pipeline.LineTolerance).
		WithWorkers(cfg.Pipeline.Workers).
		WithRecognizer(opts.recognizer).
		WithRecognizedHook(opts.hook).
		WithTransliterator(svc).
		WithProgressCallback(progress).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}

	res, runErr := p.Run(ctx, pages)
	if res == nil {
		return runErr
	}
	logger.Info("Extraction summary",
		"run_id", res.RunID,
		"template", res.Template,
		"pages", res.Summary.Pages,
		"records", res.Summary.Records,
		"flagged", res.Summary.Flagged,
		"rejected_blocks", res.Summary.Rejected,
		"elapsed", res.Summary.Elapsed)

	doc := export.Document{
		RunID:    res.RunID,
		Template: res.Template,
		Records:  res.Records,
		Summary:  res.Summary,
	}
	if err := writeDocument(ctx, out, cfg, doc, logger); err != nil {
		return err
	}
	return runErr
}

func writeDocument(ctx context.Context, out io.Writer, cfg *config.Config, doc export.Document, logger *slog.Logger) error {
	if cfg.Output.File == "" || cfg.Output.File == "-" {
		if err := export.Write(out, cfg.Output.Format, doc); err != nil {
			return err
		}
	} else {
		if err := export.WriteFile(cfg.Output.File, cfg.Output.Format, doc); err != nil {
			return err
		}
		logger.Info("Records written", "file", cfg.Output.File, "format", cfg.Output.Format, "records", len(doc.Records))
	}

	if cfg.Postgres.URL == "" {
		return nil
	}
	sink, err := export.NewPostgresSink(ctx, cfg.Postgres.URL, cfg.Postgres.Table)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()
	n, err := sink.Write(ctx, doc)
	if err != nil {
		return err
	}
	logger.Info("Records copied to PostgreSQL", "table", cfg.Postgres.Table, "records", n)
	return nil
}
