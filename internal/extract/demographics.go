package extract

import (
	"regexp"
	"strings"

	"github.com/MeKo-Tech/voterroll/internal/voter"
)

var (
	houseStarts = compileAll(`घर\s*क्रमांक`, `(?i)House\s*No\.?`)
	houseEnds   = compileAll(`वय`, `लिंग`, `(?i)Photo`, `(?i)\bAge\b`, `(?i)Gender`)

	agePattern    = regexp.MustCompile(`(?:वय|(?i:\bAge\b))\s*[:\s-]+\s*(` + digitClass + `+)`)
	genderPattern = regexp.MustCompile(`(?:लिंग|(?i:Gender))\s*[:\s-]+\s*(स्त्री|पुरुष|पु|महिला|(?i:female|male))`)
)

// ExtractHouse returns the house number text as printed, or "".
func ExtractHouse(text string) string {
	raw, ok := Between(text, houseStarts, houseEnds)
	if !ok {
		return ""
	}
	return collapseSpaces(leadingSeparators.ReplaceAllString(raw, ""))
}

// ExtractAge returns the age with ASCII digits, or "".
func ExtractAge(text string) string {
	if m := agePattern.FindStringSubmatch(text); m != nil {
		return ASCIIDigits(m[1])
	}
	return ""
}

// ExtractGender returns the gender and whether a gender label with a known
// value was found. Without one the gender is Male.
func ExtractGender(text string) (voter.Gender, bool) {
	m := genderPattern.FindStringSubmatch(text)
	if m == nil {
		return voter.GenderMale, false
	}
	switch v := strings.ToLower(m[1]); v {
	case "स्त्री", "महिला", "female":
		return voter.GenderFemale, true
	default:
		return voter.GenderMale, true
	}
}
