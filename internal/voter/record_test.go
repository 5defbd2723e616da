package voter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	r := New()
	assert.Equal(t, RelationFather, r.RelationType)
	assert.True(t, r.RelationDefaulted)
	assert.Equal(t, GenderMale, r.Gender)
	assert.False(t, r.GenderDetected)
	assert.Equal(t, DefaultConfidence, r.Confidence)
	assert.False(t, r.Flagged())
}

func TestValidEPIC(t *testing.T) {
	assert.True(t, ValidEPIC("SML9025685"))
	assert.False(t, ValidEPIC("sml9025685"))
	assert.False(t, ValidEPIC("SM19025685"))
	assert.False(t, ValidEPIC("SML902568"))
	assert.False(t, ValidEPIC(EpicMissing))
}

func TestRecord_ValueCoversFields(t *testing.T) {
	r := New()
	r.EPIC = "SRO8732299"
	r.SerialNo = "10"
	r.PageNumber = 3
	r.ExtractionOrder = 7
	r.District = "जिल्हा परिषद"

	for _, k := range Fields {
		_, ok := r.Value(k)
		assert.True(t, ok, k)
	}
	_, ok := r.Value("nope")
	assert.False(t, ok)

	vals := r.Values()
	require.Len(t, vals, len(Fields))
	assert.Equal(t, "7", vals[0])
	assert.Equal(t, "3", vals[1])
	assert.Equal(t, "SRO8732299", vals[3])
}

func TestRecord_JSONKeysMatchFields(t *testing.T) {
	data, err := json.Marshal(New())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Len(t, m, len(Fields))
	for _, k := range Fields {
		assert.Contains(t, m, k)
	}
}
