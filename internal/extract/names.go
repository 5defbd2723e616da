package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// relationLabel matches the Marathi relation labels including OCR-smeared
// vowel signs such as "पतीचोेे".
const relationLabel = `(?:वड[िी]लांच|पतीच|आईच)\S*\s*नाव`

var (
	nameStarts = compileAll(
		`(?i)मतदाराचे\s*(?:पूर्ण)?\s*(?:नाव|नांव)?\s*[:\s-]`,
		`(?i)मतदाराचे\s+पूर्ण\s*[:\s-]`,
		`(?i)नाव\s*[:\s-]`,
		`(?i)Elector's\s*Name\s*[:\s-]`,
	)
	nameEnds = compileAll(
		`(?i)`+relationLabel,
		`(?i)Husband's\s*Name`,
		`(?i)Father's\s*Name`,
		`(?i)Mother's\s*Name`,
		`(?i)घर\s*क्रमांक`,
		`(?i)House\s*No`,
		`(?i)वय`,
		`(?i)लिंग`,
		`(?i)Photo`,
		`(?i)Available`,
	)
	// Markers used to locate an unlabelled name directly above the relation.
	relationMarkers = compileAll(
		relationLabel,
		`Husband's`,
		`Father's`,
		`Mother's`,
	)
	identifierLine = regexp.MustCompile(`^[A-Z]{2,4}[/0-9]`)

	// A bare "नाव" label directly after a relation word belongs to the relation.
	afterRelationWord = regexp.MustCompile(`(?:वड[िी]लांच|पतीच|आईच)\S*\s*$`)

	trailingNameLabel = regexp.MustCompile(`\s+(?:नाव|नांव)$`)
	leadingNameLabel  = regexp.MustCompile(`^(?:नाव|नांव)\s+`)
	strayNameLabel    = regexp.MustCompile(`(?i)(?:^|\s)(?:नाव|नांव|नव|nav|nanv)(?:\s|$)`)
	pipesAndColons    = regexp.MustCompile(`[|:]+`)
)

// relationKind pairs a relation label with the relation it denotes.
type relationKind struct {
	label    string
	relation voter.RelationType
}

// Checked in order; the first label present decides the relation.
var relationKinds = []relationKind{
	{`पतीच\S*`, voter.RelationHusband},
	{`(?i)Husband's`, voter.RelationHusband},
	{`आईच\S*`, voter.RelationMother},
	{`(?i)Mother's`, voter.RelationMother},
	{`वड[िी]लांच\S*`, voter.RelationFather},
	{`(?i)Father's`, voter.RelationFather},
}

// relationKindPatterns detects each kind; relationMarkerPatterns also eats
// the trailing name label so the relative's name starts right after it.
var relationKindPatterns, relationMarkerPatterns = func() ([]*regexp.Regexp, []*regexp.Regexp) {
	detect := make([]*regexp.Regexp, len(relationKinds))
	marker := make([]*regexp.Regexp, len(relationKinds))
	for i, k := range relationKinds {
		detect[i] = regexp.MustCompile(k.label)
		marker[i] = regexp.MustCompile(k.label + `\s*(?:नाव|(?i:Name))?`)
	}
	return detect, marker
}()

var relationEnds = compileAll(
	`(?i)घर`, `(?i)House`, `(?i)वय`, `(?i)Age`,
	`(?i)लिंग`, `(?i)Gender`, `(?i)Photo`, `(?i)Available`,
)

// ExtractName returns the voter's name in Marathi, or "".
func ExtractName(text string) string {
	raw, ok := BetweenUnless(text, nameStarts, afterRelationWord, nameEnds)
	if !ok || raw == "" {
		raw = nameAboveRelation(text)
	}
	if raw == "" {
		return ""
	}
	return cleanName(raw)
}

// nameAboveRelation takes the last plausible line before the first relation
// marker, for blocks that print the name without its label.
func nameAboveRelation(text string) string {
	for _, re := range relationMarkers {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		var candidates []string
		for _, ln := range strings.Split(text[:loc[0]], "\n") {
			ln = strings.TrimSpace(ln)
			if ln == "" || identifierLine.MatchString(ln) || serialBeforeEPIC.MatchString(ln) || !hasLetter(ln) {
				continue
			}
			candidates = append(candidates, ln)
		}
		if len(candidates) > 0 {
			return candidates[len(candidates)-1]
		}
		return ""
	}
	return ""
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func cleanName(s string) string {
	s = leadingSeparators.ReplaceAllString(s, "")
	s = trailingNameLabel.ReplaceAllString(s, "")
	s = leadingNameLabel.ReplaceAllString(s, "")
	s = strayNameLabel.ReplaceAllString(s, " ")
	s = pipesAndColons.ReplaceAllString(s, " ")
	s = asterisks.ReplaceAllString(s, "")
	return collapseSpaces(s)
}

// ExtractRelation returns the relation type, the relative's name, and whether
// a relation label was found. Without a label the type is Father.
func ExtractRelation(text string) (voter.RelationType, string, bool) {
	for i, re := range relationKindPatterns {
		if !re.MatchString(text) {
			continue
		}
		raw, _ := Between(text, relationMarkerPatterns[i:i+1], relationEnds)
		raw = leadingSeparators.ReplaceAllString(raw, "")
		raw = asterisks.ReplaceAllString(raw, "")
		return relationKinds[i].relation, collapseSpaces(raw), true
	}
	return voter.RelationFather, "", false
}
