package extract

import (
	"regexp"
	"strings"

	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// suffixFix maps letters OCR commonly produces in place of EPIC digits.
// Lowercase forms are covered by upper-casing before lookup.
var suffixFix = map[byte]byte{
	'O': '0',
	'I': '1',
	'L': '1',
	'S': '5',
	'Z': '2',
	'B': '8',
	'G': '6',
}

var embeddedEPIC = regexp.MustCompile(`[A-Z]{3}[0-9OILSZBG]{7}`)

// NormalizeEPIC repairs an OCR'd EPIC candidate. Separators are removed and
// the text upper-cased; confusable letters in the 7-character digit suffix are
// mapped back to digits. The 3-letter prefix is never altered. It returns ""
// when no well-formed EPIC can be recovered.
func NormalizeEPIC(raw string) string {
	s := strings.ToUpper(alnumOnly(raw))
	if len(s) < 10 {
		return ""
	}
	if isLetters(s[:3]) {
		if suffix, ok := fixSuffix(s[3:]); ok {
			return s[:3] + suffix
		}
	}
	// The EPIC may be glued to a serial number or other token.
	if m := embeddedEPIC.FindString(s); m != "" {
		if suffix, ok := fixSuffix(m[3:]); ok {
			return m[:3] + suffix
		}
	}
	return ""
}

func fixSuffix(s string) (string, bool) {
	digits := make([]byte, 0, 7)
	for i := 0; i < len(s) && len(digits) < 7; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case suffixFix[c] != 0:
			digits = append(digits, suffixFix[c])
		}
	}
	if len(digits) < 7 {
		return "", false
	}
	return string(digits), true
}

func alnumOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// EpicMatcher is one step of the EPIC fallback chain.
type EpicMatcher struct {
	Name      string
	Pattern   *regexp.Regexp
	Normalize func(string) string
}

// Match returns the first candidate of m in text that normalizes to a valid
// EPIC.
func (m EpicMatcher) Match(text string) (string, bool) {
	for _, cand := range m.Pattern.FindAllString(text, -1) {
		if epic := m.Normalize(cand); voter.ValidEPIC(epic) {
			return epic, true
		}
	}
	return "", false
}

// normalizeKnownSR handles the SRO family, whose O is routinely read as 0.
func normalizeKnownSR(raw string) string {
	s := strings.ToUpper(alnumOnly(raw))
	if strings.HasPrefix(s, "SR0") {
		s = "SRO" + s[3:]
	}
	return NormalizeEPIC(s)
}

// EpicMatchers is the EPIC chain, most specific first.
var EpicMatchers = []EpicMatcher{
	{"exact", regexp.MustCompile(`(?i)\b[A-Z]{3}[0-9]{7}\b`), NormalizeEPIC},
	{"separated", regexp.MustCompile(`(?i)\b[A-Z]{3}[ \t/-]?[0-9]{7}\b`), NormalizeEPIC},
	{"confused_suffix", regexp.MustCompile(`(?i)\b[A-Z]{3}[0-9OILSZBG]{7}\b`), NormalizeEPIC},
	{"family_sro", regexp.MustCompile(`(?i)\bSR[O0][0-9OILSZBG]{7}\b`), normalizeKnownSR},
	{"family_vw", regexp.MustCompile(`(?i)\b(?:SML|CPV|[JLMN]VW)[ \t]?[0-9OILSZBG]{7}\b`), NormalizeEPIC},
	{"relaxed_letters", regexp.MustCompile(`(?i)\b[A-Z]{2,4}[0-9]{6,8}\b`), NormalizeEPIC},
	{"relaxed_two_letter", regexp.MustCompile(`(?i)\b[A-Z]{2}[0-9]{8}\b`), NormalizeEPIC},
	{"relaxed_mixed", regexp.MustCompile(`(?i)\b[A-Z][A-Z0-9]{2}[0-9]{7}\b`), NormalizeEPIC},
}

var alnumToken = regexp.MustCompile(`[A-Za-z0-9]{8,15}`)

// ExtractEPIC returns the first valid EPIC found in text, or "".
func ExtractEPIC(text string) string {
	epic, _ := extractEPIC(text)
	return epic
}

// extractEPIC also reports which matcher produced the result.
func extractEPIC(text string) (string, string) {
	for _, m := range EpicMatchers {
		if epic, ok := m.Match(text); ok {
			return epic, m.Name
		}
	}
	for _, tok := range alnumToken.FindAllString(text, -1) {
		if epic := NormalizeEPIC(tok); epic != "" {
			return epic, "token_scan"
		}
	}
	return "", ""
}
