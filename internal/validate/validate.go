// Package validate decides whether an extracted grid block is a real voter
// record, a voter record with an unrecoverable EPIC, or noise.
package validate

import (
	"regexp"

	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// Decision is the outcome for one block.
type Decision int

const (
	// Reject drops the block as probable OCR noise.
	Reject Decision = iota
	// Accept keeps the block as a normal record.
	Accept
	// AcceptFlagged keeps the block with the missing-EPIC sentinel and zero
	// confidence.
	AcceptFlagged
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case AcceptFlagged:
		return "flag"
	default:
		return "reject"
	}
}

// Labels counted as evidence that a block is a voter block.
var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`वय|Age`),
	regexp.MustCompile(`लिंग|Gender`),
	regexp.MustCompile(`घर\s*क्रमांक|House\s*No`),
	regexp.MustCompile(`नाव|Elector's\s*Name`),
}

// Signals are the evidence groups computed for a block.
type Signals struct {
	Identity    bool // EPIC or serial present
	Demographic bool // age present; gender always has a value
	Person      bool // name or relative's name present
	LabelHits   int  // 0..4
}

// Verdict is the validator's result.
type Verdict struct {
	Signals
	// Candidate is true when the block passes the acceptance rule, before
	// the EPIC check.
	Candidate bool
	Decision  Decision
}

// LabelHits counts the field labels literally present in the cell text.
func LabelHits(text string) int {
	n := 0
	for _, re := range labelPatterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// Evaluate computes the signals for a record and its raw cell text and
// decides its fate. It does not modify rec.
func Evaluate(rec voter.Record, text string) Verdict {
	s := Signals{
		Identity:    rec.EPIC != "" || rec.SerialNo != "",
		Demographic: rec.Age != "",
		Person:      rec.NameMarathi != "" || rec.RelationNameMarathi != "",
		LabelHits:   LabelHits(text),
	}
	v := Verdict{Signals: s}

	v.Candidate = s.LabelHits >= 2 || (s.Identity && s.Demographic) || (s.Person && s.Demographic)
	switch {
	case !v.Candidate:
		v.Decision = Reject
	case rec.EPIC != "" && rec.EPIC != voter.EpicMissing:
		v.Decision = Accept
	case (s.Person && s.Demographic) || s.LabelHits >= 3:
		v.Decision = AcceptFlagged
	default:
		v.Decision = Reject
	}
	return v
}

// Apply evaluates rec and returns the record to keep, if any. Flagged
// records get the EPIC sentinel and zero confidence.
func Apply(rec voter.Record, text string) (voter.Record, Verdict, bool) {
	v := Evaluate(rec, text)
	switch v.Decision {
	case Accept:
		return rec, v, true
	case AcceptFlagged:
		rec.EPIC = voter.EpicMissing
		rec.Confidence = 0
		return rec, v, true
	default:
		return rec, v, false
	}
}
