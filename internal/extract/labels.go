package extract

import (
	"regexp"
	"strings"
)

// Between returns the text following the first start pattern that matches
// (patterns are tried in order) up to the nearest match of any end pattern.
// The result is trimmed with newlines folded to spaces. It reports false when
// no start pattern matches. With no end match the text runs to the end.
func Between(text string, starts, ends []*regexp.Regexp) (string, bool) {
	return BetweenUnless(text, starts, nil, ends)
}

// BetweenUnless is Between, except that a start match whose preceding text
// matches skip is ignored and the search continues.
func BetweenUnless(text string, starts []*regexp.Regexp, skip *regexp.Regexp, ends []*regexp.Regexp) (string, bool) {
	from := startAfter(text, starts, skip)
	if from < 0 {
		return "", false
	}

	rest := text[from:]
	to := len(rest)
	for _, re := range ends {
		if loc := re.FindStringIndex(rest); loc != nil && loc[0] < to {
			to = loc[0]
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(rest[:to]), "\n", " "), true
}

func startAfter(text string, starts []*regexp.Regexp, skip *regexp.Regexp) int {
	for _, re := range starts {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if skip != nil && skip.MatchString(text[:loc[0]]) {
				continue
			}
			return loc[1]
		}
	}
	return -1
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var (
	leadingSeparators = regexp.MustCompile(`^[:\s-]+`)
	asterisks         = regexp.MustCompile(`\*+`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
