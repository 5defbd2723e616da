package extract

import (
	"testing"

	"github.com/MeKo-Tech/voterroll/internal/voter"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// confusables lists the OCR misreads of each digit.
var confusables = map[byte][]byte{
	'0': {'O'},
	'1': {'I', 'l', 'L'},
	'2': {'Z', 'z'},
	'5': {'S', 's'},
	'6': {'G', 'g'},
	'8': {'B', 'b'},
}

func genEPIC() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOfN(3, gen.RuneRange('A', 'Z')),
		gen.SliceOfN(7, gen.RuneRange('0', '9')),
	).Map(func(v []interface{}) string {
		return string(v[0].([]rune)) + string(v[1].([]rune))
	})
}

// TestNormalizeEPIC_Idempotent verifies a valid EPIC is returned unchanged.
func TestNormalizeEPIC_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid EPIC is a fixed point", prop.ForAll(
		func(epic string) bool {
			once := NormalizeEPIC(epic)
			return once == epic && NormalizeEPIC(once) == once
		},
		genEPIC(),
	))

	properties.TestingRun(t)
}

// TestNormalizeEPIC_RoundTrip verifies digit-zone misreads are undone.
func TestNormalizeEPIC_RoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("confused suffix recovers original", prop.ForAll(
		func(epic string, mask []bool, picks []int) bool {
			noisy := []byte(epic)
			for i := 3; i < 10; i++ {
				alts := confusables[noisy[i]]
				if len(alts) == 0 || !mask[i-3] {
					continue
				}
				noisy[i] = alts[picks[i-3]%len(alts)]
			}
			return NormalizeEPIC(string(noisy)) == epic
		},
		genEPIC(),
		gen.SliceOfN(7, gen.Bool()),
		gen.SliceOfN(7, gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}

// TestExtractEPIC_OnlyValidShapes verifies extraction output is either empty
// or a well-formed EPIC for arbitrary input.
func TestExtractEPIC_OnlyValidShapes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("result is empty or well formed", prop.ForAll(
		func(s string) bool {
			got := ExtractEPIC(s)
			return got == "" || voter.ValidEPIC(got)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
