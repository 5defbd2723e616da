package extract

import "strings"

// marathiCorrections fixes OCR misreads seen repeatedly in Marathi names.
// Replacement is a single pass and corrected text is never corrected again.
// At one position the first listed match wins, so longer forms are listed
// before their prefixes.
var marathiCorrections = strings.NewReplacer(
	"आञाम", "आत्राम",
	"अञाम", "आत्राम",
	"आजम", "आत्राम",
	"अजम", "आत्राम",
	"प्रवीन", "प्रविन",
	"प्रवन", "प्रविन",
	"गोपल", "गोपाल",
	"सुनला", "सुनील",
	"सुनल", "सुनिल",
	"रमश", "रमेश",
	"महश", "महेश",
	"राजश", "राजेश",
	"दनश", "दिनेश",
)

// CorrectMarathi applies the known OCR corrections to a Marathi name.
func CorrectMarathi(s string) string {
	if s == "" {
		return s
	}
	return marathiCorrections.Replace(s)
}
