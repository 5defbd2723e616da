package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/MeKo-Tech/voterroll/internal/config"
	"github.com/MeKo-Tech/voterroll/internal/pdf"
	"github.com/MeKo-Tech/voterroll/internal/pipeline"
	"github.com/spf13/cobra"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract <roll.pdf | page-image...>",
	Short: "OCR a scanned roll and extract voter records",
	Long: `OCR every page of a scanned electoral roll and extract its voter records.

The input is either one PDF, whose embedded page scans are extracted, or a
list of page images in page order. Pages are recognized with the configured
OCR backend (Google Cloud Vision by default, or Tesseract in builds with the
tesseract tag).

Examples:
  voterroll extract roll.pdf
  voterroll extract roll.pdf --pages 3-10 --workers 4 --format csv -o voters.csv
  voterroll extract page1.jpg page2.jpg --template wardwise
  voterroll extract roll.pdf --save-ocr ./ocr --postgres-url postgres://localhost/rolls`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addRunFlags(extractCmd)

	extractCmd.Flags().String("ocr-backend", config.OCRBackendVision, "OCR backend (vision, tesseract)")
	extractCmd.Flags().String("save-ocr", "", "directory to save raw OCR results for later replay with parse")
}

// addRunFlags registers the flags shared by extract and parse.
func addRunFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	cmd.Flags().StringP("template", "t", defaults.Template.Name, "page layout template (see 'voterroll templates')")
	cmd.Flags().String("template-file", "", "YAML file with additional templates")
	cmd.Flags().String("pages", "", "page range to process (e.g., '1-5', '1,3,5')")
	cmd.Flags().IntP("workers", "w", defaults.Pipeline.Workers, "pages processed concurrently")
	cmd.Flags().Int("line-tolerance", defaults.Pipeline.LineTolerance, "vertical pixel tolerance for grouping words into lines")
	cmd.Flags().String("translit", defaults.Translit.Backend, "English name transliteration (gemini, local, none)")
	cmd.Flags().StringP("format", "f", defaults.Output.Format, "output format (json, csv)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("postgres-url", "", "also copy records into this PostgreSQL database")
	cmd.Flags().String("postgres-table", defaults.Postgres.Table, "PostgreSQL table for records")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	cmd.Flags().Bool("progress", false, "show a progress bar on stderr")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pages, err := loadPages(args, cfg)
	if err != nil {
		return err
	}
	logger.Info("Pages loaded", "pages", len(pages), "inputs", len(args))

	rec, release, err := newRecognizer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	saveDir, _ := cmd.Flags().GetString("save-ocr")
	hook, err := recordingHook(saveDir, logger)
	if err != nil {
		return err
	}
	progress, _ := cmd.Flags().GetBool("progress")

	return runPipeline(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, pages, runOptions{
		recognizer: rec,
		hook:       hook,
		progress:   progress,
	})
}

// loadPages reads the page scans of one PDF or of a list of images.
func loadPages(args []string, cfg *config.Config) ([]pipeline.Page, error) {
	if len(args) == 1 && pdf.IsPDF(args[0]) {
		images, err := pdf.ExtractPages(args[0], cfg.Pipeline.Pages)
		if err != nil {
			return nil, err
		}
		pages := make([]pipeline.Page, 0, len(images))
		for _, img := range images {
			pages = append(pages, pipeline.Page{Number: img.Number, Width: img.Width, Height: img.Height, Image: img.Data})
		}
		return pages, nil
	}

	selected, err := cfg.PageRange()
	if err != nil {
		return nil, err
	}
	var pages []pipeline.Page
	for i, path := range args {
		if pdf.IsPDF(path) {
			return nil, errors.New("pass a single PDF or a list of page images, not both")
		}
		number := i + 1
		if selected != nil && !slices.Contains(selected, number) {
			continue
		}
		img, err := pdf.LoadImage(path, number)
		if err != nil {
			return nil, err
		}
		pages = append(pages, pipeline.Page{Number: img.Number, Width: img.Width, Height: img.Height, Image: img.Data})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w in the selected range", pdf.ErrNoPages)
	}
	return pages, nil
}
