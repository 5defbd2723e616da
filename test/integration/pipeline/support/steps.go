package support

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/voterroll/internal/extract"
	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/MeKo-Tech/voterroll/internal/pipeline"
	"github.com/MeKo-Tech/voterroll/internal/template"
	"github.com/MeKo-Tech/voterroll/internal/testutil"
	"github.com/MeKo-Tech/voterroll/internal/translit"
	"github.com/MeKo-Tech/voterroll/internal/validate"
)

const photoNoise = "Photo Not Available\nPhoto Not Available\nPhoto Not Available"

// RegisterSteps binds every step of the suite.
func (testCtx *TestContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the "([^"]*)" template$`, testCtx.theTemplate)
	sc.Step(`^page (\d+) of the roll$`, testCtx.pageOfTheRoll)
	sc.Step(`^the page heading reads "([^"]*)"$`, testCtx.thePageHeadingReads)
	sc.Step(`^cell (\d+),(\d+) holds a voter block with EPIC "([^"]*)"$`, testCtx.cellHoldsVoterBlock)
	sc.Step(`^cell (\d+),(\d+) holds a voter block without EPIC$`, testCtx.cellHoldsVoterBlockWithoutEPIC)
	sc.Step(`^cell (\d+),(\d+) holds photo placeholder noise$`, testCtx.cellHoldsNoise)
	sc.Step(`^cell (\d+),(\d+) holds the block:$`, testCtx.cellHoldsBlock)
	sc.Step(`^the OCR service fails for page (\d+)$`, testCtx.ocrFailsForPage)

	sc.Step(`^the block is parsed:$`, testCtx.theBlockIsParsed)
	sc.Step(`^the record field "([^"]*)" is "([^"]*)"$`, testCtx.theRecordFieldIs)
	sc.Step(`^the block is (accepted|flagged|rejected)$`, testCtx.theBlockIs)

	sc.Step(`^the page is extracted$`, testCtx.thePageIsExtracted)
	sc.Step(`^the page status is "([^"]*)"$`, testCtx.thePageStatusIs)
	sc.Step(`^(\d+) records? (?:is|are) accepted$`, testCtx.recordsAreAccepted)
	sc.Step(`^(\d+) blocks? (?:is|are) rejected$`, testCtx.blocksAreRejected)

	sc.Step(`^the roll is extracted with (\d+) workers?$`, testCtx.theRollIsExtracted)
	sc.Step(`^page (\d+) ends as "([^"]*)"$`, testCtx.pageEndsAs)
	sc.Step(`^the roll has (\d+) records numbered in page order$`, testCtx.theRollHasRecordsInOrder)
	sc.Step(`^record (\d+) has field "([^"]*)" equal to "([^"]*)"$`, testCtx.recordHasField)
	sc.Step(`^the run reports that OCR is unavailable$`, testCtx.theRunReportsOCRUnavailable)
}

func (testCtx *TestContext) theTemplate(name string) error {
	t, ok := template.NewRegistry(testCtx.Logger).Get(name)
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	testCtx.Template = t
	return nil
}

func (testCtx *TestContext) pageOfTheRoll(number int) error {
	testCtx.Pages[number] = testutil.NewPage(testCtx.Template)
	testCtx.Current = number
	return nil
}

func (testCtx *TestContext) thePageHeadingReads(text string) error {
	b, err := testCtx.page()
	if err != nil {
		return err
	}
	b.Heading(text)
	return nil
}

func (testCtx *TestContext) setCell(row, col int, text string) error {
	b, err := testCtx.page()
	if err != nil {
		return err
	}
	b.Cell(row, col, text)
	return nil
}

func (testCtx *TestContext) cellHoldsVoterBlock(row, col int, epic string) error {
	return testCtx.setCell(row, col,
		testutil.VoterBlock(testCtx.nextSerial(), epic, "सुनील पाटील", "रमेश पाटील", "12", "40", "पुरुष"))
}

func (testCtx *TestContext) cellHoldsVoterBlockWithoutEPIC(row, col int) error {
	return testCtx.cellHoldsVoterBlock(row, col, "")
}

func (testCtx *TestContext) cellHoldsNoise(row, col int) error {
	return testCtx.setCell(row, col, photoNoise)
}

func (testCtx *TestContext) cellHoldsBlock(row, col int, doc *godog.DocString) error {
	return testCtx.setCell(row, col, doc.Content)
}

func (testCtx *TestContext) ocrFailsForPage(number int) error {
	testCtx.Failing[number] = true
	return nil
}

func (testCtx *TestContext) theBlockIsParsed(doc *godog.DocString) error {
	rec := extract.Block(doc.Content)
	extract.Correct(&rec)
	kept, verdict, _ := validate.Apply(rec, doc.Content)
	testCtx.Record = kept
	testCtx.Verdict = verdict
	return nil
}

func (testCtx *TestContext) theRecordFieldIs(key, want string) error {
	got, ok := testCtx.Record.Value(key)
	if !ok {
		return fmt.Errorf("unknown record field %q", key)
	}
	if got != want {
		return fmt.Errorf("field %s: expected %q, got %q", key, want, got)
	}
	return nil
}

var decisions = map[string]validate.Decision{
	"accepted": validate.Accept,
	"flagged":  validate.AcceptFlagged,
	"rejected": validate.Reject,
}

func (testCtx *TestContext) theBlockIs(decision string) error {
	if got := testCtx.Verdict.Decision; got != decisions[decision] {
		return fmt.Errorf("expected block to be %s, got %s", decision, got)
	}
	return nil
}

func (testCtx *TestContext) newPipeline(workers int, rec ocr.Recognizer) (*pipeline.Pipeline, error) {
	return pipeline.NewBuilder().
		WithTemplate(testCtx.Template).
		WithWorkers(workers).
		WithRecognizer(rec).
		WithTransliterator(translit.NewService(translit.Local{}, translit.NewMemoryCache(), testCtx.Logger)).
		WithLogger(testCtx.Logger).
		Build()
}

func (testCtx *TestContext) thePageIsExtracted() error {
	b, err := testCtx.page()
	if err != nil {
		return err
	}
	p, err := testCtx.newPipeline(1, nil)
	if err != nil {
		return err
	}
	w, h := b.Dimensions()
	testCtx.Outcome, err = p.ExtractPage(testCtx.Current, w, h, b.Result())
	return err
}

func (testCtx *TestContext) thePageStatusIs(status string) error {
	if string(testCtx.Outcome.Status) != status {
		return fmt.Errorf("expected page status %s, got %s (%s)", status, testCtx.Outcome.Status, testCtx.Outcome.Reason)
	}
	return nil
}

func (testCtx *TestContext) recordsAreAccepted(n int) error {
	if testCtx.Outcome.Accepted != n {
		return fmt.Errorf("expected %d accepted records, got %d", n, testCtx.Outcome.Accepted)
	}
	return nil
}

func (testCtx *TestContext) blocksAreRejected(n int) error {
	if testCtx.Outcome.Rejected != n {
		return fmt.Errorf("expected %d rejected blocks, got %d", n, testCtx.Outcome.Rejected)
	}
	return nil
}

// theRollIsExtracted serves every page through a scripted OCR service so
// the run exercises the recognizer path.
func (testCtx *TestContext) theRollIsExtracted(workers int) error {
	rec := testutil.NewRecognizer()
	var pages []pipeline.Page
	for _, n := range testCtx.pageNumbers() {
		image := []byte(fmt.Sprintf("page-%d", n))
		w, h := testutil.DefaultPageWidth, testutil.DefaultPageHeight
		if b, ok := testCtx.Pages[n]; ok {
			w, h = b.Dimensions()
			if !testCtx.Failing[n] {
				rec.On(image, b.Result())
			}
		}
		if testCtx.Failing[n] {
			rec.FailWith(image, &ocr.ServiceError{Code: 3, Message: "image could not be processed"})
		}
		pages = append(pages, pipeline.Page{Number: n, Width: w, Height: h, Image: image})
	}

	p, err := testCtx.newPipeline(workers, rec)
	if err != nil {
		return err
	}
	testCtx.Result, testCtx.RunErr = p.Run(context.Background(), pages)
	if testCtx.Result == nil {
		return fmt.Errorf("run returned no result: %w", testCtx.RunErr)
	}
	return nil
}

func (testCtx *TestContext) pageEndsAs(number int, status string) error {
	for _, o := range testCtx.Result.Pages {
		if o.Number == number {
			if string(o.Status) != status {
				return fmt.Errorf("page %d: expected %s, got %s (%s)", number, status, o.Status, o.Reason)
			}
			return nil
		}
	}
	return fmt.Errorf("page %d not in result", number)
}

func (testCtx *TestContext) theRollHasRecordsInOrder(n int) error {
	if testCtx.RunErr != nil {
		return testCtx.RunErr
	}
	recs := testCtx.Result.Records
	if len(recs) != n {
		return fmt.Errorf("expected %d records, got %d", n, len(recs))
	}
	for i, r := range recs {
		if r.ExtractionOrder != i {
			return fmt.Errorf("record %d has extraction_order %d", i, r.ExtractionOrder)
		}
		if i > 0 && r.PageNumber < recs[i-1].PageNumber {
			return fmt.Errorf("record %d on page %d follows page %d", i, r.PageNumber, recs[i-1].PageNumber)
		}
	}
	return nil
}

func (testCtx *TestContext) recordHasField(index int, key, want string) error {
	recs := testCtx.Result.Records
	if index >= len(recs) {
		return fmt.Errorf("no record %d among %d", index, len(recs))
	}
	got, ok := recs[index].Value(key)
	if !ok {
		return fmt.Errorf("unknown record field %q", key)
	}
	if got != want {
		return fmt.Errorf("record %d field %s: expected %q, got %q", index, key, want, got)
	}
	return nil
}

func (testCtx *TestContext) theRunReportsOCRUnavailable() error {
	if !errors.Is(testCtx.RunErr, pipeline.ErrOCRUnavailable) {
		return fmt.Errorf("expected ErrOCRUnavailable, got %v", testCtx.RunErr)
	}
	return nil
}
