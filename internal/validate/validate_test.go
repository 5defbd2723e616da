package validate

import (
	"testing"

	"github.com/MeKo-Tech/voterroll/internal/extract"
	"github.com/MeKo-Tech/voterroll/internal/voter"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		candidate bool
		decision  Decision
		hits      int
	}{
		{
			name:      "complete block",
			text:      "211 SML9025685\nमतदाराचे पूर्ण नाव : दुर्खिलवाणी मणिशा\nपतीचे नाव : अनिल\nघर क्रमांक : ५५५\nवय : २३ लिंग : स्त्री",
			candidate: true,
			decision:  Accept,
			hits:      4,
		},
		{
			name:      "strong evidence without EPIC is flagged",
			text:      "मतदाराचे नाव : सुनील पाटील\nवडिलांचे नाव : रमेश\nवय : 40 लिंग : पु",
			candidate: true,
			decision:  AcceptFlagged,
			hits:      3,
		},
		{
			name:      "three labels without EPIC or name is flagged",
			text:      "घर क्रमांक :\nवय : लिंग :",
			candidate: true,
			decision:  AcceptFlagged,
			hits:      3,
		},
		{
			name:      "name and age without gender or EPIC is flagged",
			text:      "मतदाराचे नाव : राम पाटील\nवय : 45",
			candidate: true,
			decision:  AcceptFlagged,
			hits:      2,
		},
		{
			name:      "age and gender labels only",
			text:      "वय : 45 लिंग : पु",
			candidate: true,
			decision:  Reject,
			hits:      2,
		},
		{
			name:      "identity and demographic with EPIC",
			text:      "12 ABC1234567 Age: 30 Gender: Male",
			candidate: true,
			decision:  Accept,
			hits:      2,
		},
		{
			name:      "serial only",
			text:      "12",
			candidate: false,
			decision:  Reject,
			hits:      0,
		},
		{
			name:      "EPIC alone is noise",
			text:      "ABC1234567",
			candidate: false,
			decision:  Reject,
			hits:      0,
		},
		{
			name:      "empty",
			text:      "",
			candidate: false,
			decision:  Reject,
			hits:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := extract.Block(tt.text)
			v := Evaluate(rec, tt.text)
			assert.Equal(t, tt.candidate, v.Candidate)
			assert.Equal(t, tt.decision, v.Decision, v.Decision.String())
			assert.Equal(t, tt.hits, v.LabelHits)
		})
	}
}

func TestEvaluate_DemographicOnlyCandidate(t *testing.T) {
	rec := voter.New()
	rec.Age = "45"
	rec.GenderDetected = true

	v := Evaluate(rec, "वय : 45 लिंग : पु")

	assert.False(t, v.Identity)
	assert.False(t, v.Person)
	assert.True(t, v.Demographic)
	assert.Equal(t, 2, v.LabelHits)
	assert.True(t, v.Candidate)
	assert.Equal(t, Reject, v.Decision)
}

func TestEvaluate_DefaultGenderCountsAsDemographic(t *testing.T) {
	rec := voter.New()
	rec.Age = "45"
	rec.NameMarathi = "राम"

	v := Evaluate(rec, "राम 45")
	assert.False(t, rec.GenderDetected)
	assert.True(t, v.Demographic)
	assert.True(t, v.Candidate)
	assert.Equal(t, AcceptFlagged, v.Decision)
}

func TestApply(t *testing.T) {
	rec := voter.New()
	rec.NameMarathi = "सुनील"
	rec.Age = "40"
	rec.GenderDetected = true

	out, v, keep := Apply(rec, "नाव : सुनील वय : 40 लिंग : पु")
	assert.True(t, keep)
	assert.Equal(t, AcceptFlagged, v.Decision)
	assert.Equal(t, voter.EpicMissing, out.EPIC)
	assert.Zero(t, out.Confidence)
	assert.True(t, out.Flagged())
	// input untouched
	assert.Empty(t, rec.EPIC)

	rec.EPIC = "ABC1234567"
	out, v, keep = Apply(rec, "नाव : सुनील वय : 40 लिंग : पु")
	assert.True(t, keep)
	assert.Equal(t, Accept, v.Decision)
	assert.Equal(t, voter.DefaultConfidence, out.Confidence)

	_, _, keep = Apply(voter.New(), "")
	assert.False(t, keep)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "accept", Accept.String())
	assert.Equal(t, "flag", AcceptFlagged.String())
	assert.Equal(t, "reject", Reject.String())
}
