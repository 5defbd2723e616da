package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// Summary reports page outcomes and record counts for a run.
type Summary struct {
	Pages    int                `json:"pages"`
	ByStatus map[PageStatus]int `json:"by_status"`
	Records  int                `json:"records"`
	Flagged  int                `json:"flagged_records"`
	Rejected int                `json:"rejected_blocks"`
	Elapsed  time.Duration      `json:"elapsed_ns"`
}

// DocumentResult is the output of a document run.
type DocumentResult struct {
	RunID    string         `json:"run_id"`
	Template string         `json:"template"`
	Pages    []PageOutcome  `json:"pages"`
	Records  []voter.Record `json:"records"`
	Summary  Summary        `json:"summary"`
}

// Run processes pages and returns the accepted records in document order.
// Pages are independent, so up to Workers pages run at once; the OCR
// recognizer is expected to enforce the shared rate limit.
//
// A bad page never aborts the run. Run fails only on an invalid template,
// on cancellation, or with ErrOCRUnavailable when OCR failed on every page;
// in the last case the partial result is returned alongside the error.
func (p *Pipeline) Run(ctx context.Context, pages []Page) (*DocumentResult, error) {
	start := time.Now()
	progress := p.cfg.Progress
	progress.OnStart(len(pages))

	outcomes := make([]PageOutcome, len(pages))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i := range pages {
		g.Go(func() error {
			out, err := p.processPage(gctx, pages[i])
			if err != nil {
				return fmt.Errorf("page %d: %w", pages[i].Number, err)
			}
			outcomes[i] = out
			progress.OnProgress(int(done.Add(1)), len(pages))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		progress.OnComplete()
		return nil, err
	}

	res := &DocumentResult{
		RunID:    uuid.NewString(),
		Template: p.cfg.Template.Name,
		Pages:    outcomes,
		Records:  collect(outcomes),
	}
	p.transliterate(ctx, res.Records)
	res.Summary = summarize(outcomes, res.Records, time.Since(start))
	progress.OnComplete()

	p.logger.Info("Document processed",
		"run_id", res.RunID,
		"pages", res.Summary.Pages,
		"records", res.Summary.Records,
		"flagged", res.Summary.Flagged,
		"elapsed", res.Summary.Elapsed.Round(time.Millisecond))

	if len(pages) > 0 && res.Summary.ByStatus[StatusFailedOCR] == len(pages) {
		return res, ErrOCRUnavailable
	}
	return res, nil
}

// collect merges the accepted records of all pages and assigns
// extraction_order by (page, cell index), independent of the order in
// which workers finished.
func collect(outcomes []PageOutcome) []voter.Record {
	var records []voter.Record
	for _, out := range outcomes {
		records = append(records, out.Records...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PageNumber != records[j].PageNumber {
			return records[i].PageNumber < records[j].PageNumber
		}
		return records[i].CellIndex < records[j].CellIndex
	})
	for i := range records {
		records[i].ExtractionOrder = i
	}
	return records
}

func (p *Pipeline) transliterate(ctx context.Context, records []voter.Record) {
	if p.cfg.Translit == nil || len(records) == 0 {
		return
	}
	names := make([]string, 0, 2*len(records))
	for _, r := range records {
		names = append(names, r.NameMarathi, r.RelationNameMarathi)
	}
	english := p.cfg.Translit.Transliterate(ctx, names)
	for i := range records {
		records[i].NameEnglish = english[2*i]
		records[i].RelationNameEnglish = english[2*i+1]
	}
}

func summarize(outcomes []PageOutcome, records []voter.Record, elapsed time.Duration) Summary {
	s := Summary{
		Pages:    len(outcomes),
		ByStatus: make(map[PageStatus]int),
		Records:  len(records),
		Elapsed:  elapsed,
	}
	for _, out := range outcomes {
		s.ByStatus[out.Status]++
		s.Rejected += out.Rejected
	}
	for _, r := range records {
		if r.Flagged() {
			s.Flagged++
		}
	}
	return s
}
