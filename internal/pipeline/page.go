package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/MeKo-Tech/voterroll/internal/extract"
	"github.com/MeKo-Tech/voterroll/internal/layout"
	"github.com/MeKo-Tech/voterroll/internal/metrics"
	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/MeKo-Tech/voterroll/internal/validate"
	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// Page is one rendered page of a document. Image is sent to the recognizer
// unless OCR already holds a recorded result.
type Page struct {
	Number int
	Width  int
	Height int
	Image  []byte
	OCR    *ocr.Result
}

// PageOutcome is the result of processing one page.
type PageOutcome struct {
	Number   int          `json:"page"`
	Status   PageStatus   `json:"status"`
	Reason   string       `json:"reason,omitempty"`
	Words    int          `json:"words"`
	Blocks   int          `json:"blocks"`
	Accepted int          `json:"accepted"`
	Flagged  int          `json:"flagged"`
	Rejected int          `json:"rejected"`
	Header   voter.Header `json:"header"`
	Error    string       `json:"error,omitempty"`

	Records  []voter.Record `json:"-"`
	Duration time.Duration  `json:"-"`
}

func skip(out PageOutcome, status PageStatus, format string, args ...any) PageOutcome {
	out.Status = status
	out.Reason = fmt.Sprintf(format, args...)
	out.Records = nil
	return out
}

// ExtractPage runs the page state machine on an OCR result. It returns an
// error only when the template leaves no grid on the page, which is fatal
// for the whole document.
func (p *Pipeline) ExtractPage(number, width, height int, res *ocr.Result) (PageOutcome, error) {
	tpl := p.cfg.Template
	out := PageOutcome{Number: number, Status: StatusUnprocessed}

	// Thresholds were calibrated against the raw annotation count.
	out.Words = res.AnnotationCount()
	if out.Words == 0 || out.Words < tpl.MinWordAnnotations {
		return skip(out, StatusSkippedLowText, "%d word annotations, need %d", out.Words, tpl.MinWordAnnotations), nil
	}

	grid, err := layout.MapGrid(res.Words(), width, height, tpl)
	if err != nil {
		return out, err
	}
	out.Blocks = grid.Populated()
	if out.Blocks == 0 {
		return skip(out, StatusSkippedNoBlocks, "no words inside the grid"), nil
	}

	heading := grid.HeadingText(p.cfg.LineTolerance)
	if extract.IsCover(heading) {
		return skip(out, StatusSkippedCover, "cover keywords in heading"), nil
	}
	out.Header = extract.ParseHeader(heading)

	for i := range grid.Cells {
		cell := &grid.Cells[i]
		if cell.Empty() {
			continue
		}
		text := cell.Text(p.cfg.LineTolerance)
		rec := extract.Block(text)
		extract.Correct(&rec)

		kept, verdict, ok := validate.Apply(rec, text)
		metrics.RecordsTotal.WithLabelValues(verdict.Decision.String()).Inc()
		if !ok {
			out.Rejected++
			continue
		}
		if kept.Flagged() {
			out.Flagged++
			p.logger.Debug("Block kept without EPIC",
				"page", number, "row", cell.Row, "col", cell.Col,
				"label_hits", verdict.LabelHits)
		}
		kept.Row, kept.Col, kept.CellIndex = cell.Row, cell.Col, cell.Index
		kept.PageNumber = number
		kept.Header = out.Header
		out.Records = append(out.Records, kept)
	}

	if len(out.Records) == 0 {
		return skip(out, StatusSkippedEmpty, "no valid voter blocks among %d", out.Blocks), nil
	}
	if number == 1 && len(out.Records) < tpl.MinValidBlocksForPage {
		return skip(out, StatusSkippedFirstPageLimit, "%d valid blocks on first page, need %d",
			len(out.Records), tpl.MinValidBlocksForPage), nil
	}

	out.Status = StatusAccepted
	out.Accepted = len(out.Records)
	return out, nil
}

// processPage runs OCR when needed and extracts the page. OCR failures end
// the page in StatusFailedOCR; only fatal errors are returned.
func (p *Pipeline) processPage(ctx context.Context, page Page) (PageOutcome, error) {
	start := time.Now()
	log := p.logger.With("page", page.Number)

	if drift := p.cfg.Template.Drift(page.Width, page.Height); drift > DriftThreshold {
		log.Warn("Page size differs from template calibration",
			"width", page.Width, "height", page.Height,
			"calibrated_width", p.cfg.Template.CalibratedWidth,
			"calibrated_height", p.cfg.Template.CalibratedHeight,
			"drift", fmt.Sprintf("%.1f%%", drift*100))
	}

	res := page.OCR
	if res == nil {
		if p.cfg.Recognizer == nil {
			return p.failed(page, &PageError{Page: page.Number, Err: ocr.ErrNoBackend}, start), nil
		}
		var err error
		res, err = p.cfg.Recognizer.Recognize(ctx, page.Image)
		if err != nil {
			if ctx.Err() != nil {
				return PageOutcome{}, ctx.Err()
			}
			return p.failed(page, &PageError{Page: page.Number, Err: err}, start), nil
		}
		if p.cfg.OnRecognized != nil {
			p.cfg.OnRecognized(page, res)
		}
	}

	out, err := p.ExtractPage(page.Number, page.Width, page.Height, res)
	if err != nil {
		return out, err
	}
	out.Duration = time.Since(start)
	metrics.PagesTotal.WithLabelValues(string(out.Status)).Inc()
	metrics.PageDuration.Observe(out.Duration.Seconds())

	if out.Status.Skipped() {
		log.Info("Page skipped", "status", out.Status, "reason", out.Reason)
	} else {
		log.Info("Page accepted", "records", out.Accepted, "flagged", out.Flagged, "rejected", out.Rejected)
	}
	return out, nil
}

func (p *Pipeline) failed(page Page, err *PageError, start time.Time) PageOutcome {
	p.logger.Error("Page OCR failed", "page", page.Number, "error", err.Err)
	metrics.PagesTotal.WithLabelValues(string(StatusFailedOCR)).Inc()
	p.cfg.Progress.OnError(page.Number, err)
	return PageOutcome{
		Number:   page.Number,
		Status:   StatusFailedOCR,
		Reason:   "OCR failed",
		Error:    err.Error(),
		Duration: time.Since(start),
	}
}
