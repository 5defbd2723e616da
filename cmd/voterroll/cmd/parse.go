package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/MeKo-Tech/voterroll/internal/pipeline"
	"github.com/spf13/cobra"
)

// parseCmd represents the parse command.
var parseCmd = &cobra.Command{
	Use:   "parse <ocr-dir | page.json...>",
	Short: "Extract voter records from saved OCR results",
	Long: `Run extraction on OCR results saved by 'extract --save-ocr', without
calling any OCR service. Useful for trying other templates or tolerances on
a roll that was already recognized.

Examples:
  voterroll parse ./ocr
  voterroll parse ./ocr --template boothwise --format csv -o voters.csv
  voterroll parse ./ocr/page_003.json --translit local`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	addRunFlags(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pages, err := loadRecordings(args)
	if err != nil {
		return err
	}
	selected, err := cfg.PageRange()
	if err != nil {
		return err
	}
	pages = filterPages(pages, selected)
	if len(pages) == 0 {
		return fmt.Errorf("no OCR results in the selected range")
	}

	progress, _ := cmd.Flags().GetBool("progress")
	return runPipeline(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, pages, runOptions{progress: progress})
}

// loadRecordings reads saved results from files and directories. Each
// directory contributes its *.json files.
func loadRecordings(args []string) ([]pipeline.Page, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.json"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}

	seen := make(map[int]string)
	pages := make([]pipeline.Page, 0, len(files))
	for _, f := range files {
		rec, err := ocr.LoadRecording(f)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[rec.Page]; dup {
			return nil, fmt.Errorf("page %d recorded twice (%s and %s)", rec.Page, prev, f)
		}
		seen[rec.Page] = f
		res := rec.Result
		pages = append(pages, pipeline.Page{Number: rec.Page, Width: rec.Width, Height: rec.Height, OCR: &res})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}
