package extract

import (
	"regexp"
	"strings"

	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// Keywords identifying each administrative header field. The first heading
// line containing any keyword of a field becomes that field.
var (
	districtKeywords     = []string{"जिल्हा", "जिला", "District", "परिषद", "Parishad", "जि.प"}
	talukaKeywords       = []string{"तालुका", "Taluka", "विभाग", "Vibhag"}
	boothKeywords        = []string{"मतदान", "केंद्र", "Booth", "Ward", "वार्ड", "गण"}
	officeKeywords       = []string{"कार्यालय", "Office", "पत्ता", "Address"}
	constituencyKeywords = []string{"निवडणूक", "निवार्चन", "Constituency", "विधानसभा", "Assembly"}
)

// coverKeywords mark index, summary and certificate pages. Matched
// case-insensitively anywhere in the heading.
var coverKeywords = []string{
	"alphabetical index", "index", "summary", "certificate", "instructions",
	"अक्षरानुक्रम", "अनुक्रमणिका", "सूची", "प्रमाणपत्र", "सूचना",
}

var (
	partNoPattern   = regexp.MustCompile(`(?i)(?:भाग\s*क्रमांक|यादी\s*भाग\s*क्र\.?|Part\s*No\.?)\s*[:\s-]*(` + digitClass + `+)`)
	assemblyPattern = regexp.MustCompile(`(?i)(?:विधानसभा\s*मतदारसंघाचे\s*(?:क्रमांक)?|विधानसभा\s*मतदारसंघ|निवडणूक\s*विभाग|Assembly\s*Constituency)\s*[:\s-]*([^\n]+)`)
	stationPattern  = regexp.MustCompile(`(?i)(?:मतदान\s*केंद्र(?:निहाय)?|Polling\s*Station)\s*[:\s-]*([^\n]+)`)
	addressPattern  = regexp.MustCompile(`(?i)(?:पत्ता|Address)\s*[:\s-]*([^\n]+)`)
)

// ParseHeader builds the page header from the reconstructed heading text.
func ParseHeader(heading string) voter.Header {
	h := voter.Header{RawText: heading}
	if strings.TrimSpace(heading) == "" {
		return h
	}

	for _, ln := range strings.Split(heading, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		firstMatch(&h.District, ln, districtKeywords)
		firstMatch(&h.Taluka, ln, talukaKeywords)
		firstMatch(&h.Booth, ln, boothKeywords)
		firstMatch(&h.Constituency, ln, constituencyKeywords)
		firstMatch(&h.Office, ln, officeKeywords)
	}

	if m := partNoPattern.FindStringSubmatch(heading); m != nil {
		h.PartNo = ASCIIDigits(m[1])
	}
	if m := assemblyPattern.FindStringSubmatch(heading); m != nil {
		h.AssemblyName = cutAt(m[1], "निर्वाचन")
	}
	if m := stationPattern.FindStringSubmatch(heading); m != nil {
		h.PollingStation = cutAt(m[1], "पत्ता", "Address")
	}
	if m := addressPattern.FindStringSubmatch(heading); m != nil {
		h.PollingAddress = strings.TrimSpace(m[1])
	}
	return h
}

func firstMatch(field *string, line string, keywords []string) {
	if *field != "" {
		return
	}
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			*field = line
			return
		}
	}
}

func cutAt(s string, seps ...string) string {
	for _, sep := range seps {
		if before, _, found := strings.Cut(s, sep); found {
			s = before
		}
	}
	return strings.TrimSpace(s)
}

// IsCover reports whether the heading marks an index, summary or
// certificate page rather than a voter list page.
func IsCover(heading string) bool {
	if strings.TrimSpace(heading) == "" {
		return false
	}
	lower := strings.ToLower(heading)
	for _, kw := range coverKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
