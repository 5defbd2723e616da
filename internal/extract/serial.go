package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// serialStep is one stage of the serial number chain. It returns the raw
// (possibly Devanagari) digits or "".
type serialStep struct {
	name string
	find func(text string) string
}

var (
	serialBeforeEPIC = regexp.MustCompile(`^\s*(` + digitClass + `{1,4})[ \t]+[A-Za-z]{2,4}`)
	serialAboveEPIC  = regexp.MustCompile(`^\s*(` + digitClass + `{1,4})[ \t]*[\r\n]+\s*[A-Z]{2,4}`)
	serialStandalone = regexp.MustCompile(`^\s*\[?(` + digitClass + `{1,4})\]?[ \t]*(?:\r?\n|$)`)
	serialLeading    = regexp.MustCompile(`^\s*(` + digitClass + `{1,4})(?:\s|$)`)
	serialLabel      = regexp.MustCompile(`(?i)(?:क्रमांक|Serial\s*No\.?|Sr\.?\s*No\.?)\s*[:\s-]*(` + digitClass + `+)`)
	serialOnlyDigits = regexp.MustCompile(`^\s*(` + digitClass + `{1,3})\s*$`)
	serialDigitRun   = regexp.MustCompile(digitClass + `+`)
)

const (
	houseLabelPrefix   = "घर"
	serialMaxLabelLen  = 4
	serialTopLineLimit = 3
)

func submatch(re *regexp.Regexp) func(string) string {
	return func(text string) string {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
		return ""
	}
}

// SerialSteps is the serial number chain in priority order.
var SerialSteps = []serialStep{
	{"before_epic", submatch(serialBeforeEPIC)},
	{"above_epic", submatch(serialAboveEPIC)},
	{"standalone_top", submatch(serialStandalone)},
	{"leading_number", submatch(serialLeading)},
	{"label", serialFromLabel},
	{"digits_only_line", serialFromTopLines},
	{"first_bare_number", serialFromFirstLine},
}

// ExtractSerial returns the block's serial number with ASCII digits, or "".
func ExtractSerial(text string) string {
	for _, step := range SerialSteps {
		if raw := step.find(text); raw != "" {
			return ASCIIDigits(raw)
		}
	}
	return ""
}

// serialFromLabel takes a labelled number, skipping the house number label
// which shares the "क्रमांक" suffix.
func serialFromLabel(text string) string {
	for _, loc := range serialLabel.FindAllStringSubmatchIndex(text, -1) {
		before := strings.TrimRight(text[:loc[0]], " \t")
		if strings.HasSuffix(before, houseLabelPrefix) {
			continue
		}
		num := text[loc[2]:loc[3]]
		if utf8.RuneCountInString(num) <= serialMaxLabelLen {
			return num
		}
	}
	return ""
}

func serialFromTopLines(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > serialTopLineLimit {
		lines = lines[:serialTopLineLimit]
	}
	for _, ln := range lines {
		if m := serialOnlyDigits.FindStringSubmatch(ln); m != nil {
			return m[1]
		}
	}
	return ""
}

// serialFromFirstLine returns the first run of at most three digits in the
// first line that does not directly follow a Latin letter, so digits inside
// an EPIC are skipped.
func serialFromFirstLine(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	for _, loc := range serialDigitRun.FindAllStringIndex(first, -1) {
		if loc[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(first[:loc[0]])
			if prev >= 'A' && prev <= 'Z' || prev >= 'a' && prev <= 'z' {
				continue
			}
		}
		run := first[loc[0]:loc[1]]
		if utf8.RuneCountInString(run) <= 3 {
			return run
		}
	}
	return ""
}
