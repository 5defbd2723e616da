package extract

import "strings"

var devanagariDigits = strings.NewReplacer(
	"०", "0", "१", "1", "२", "2", "३", "3", "४", "4",
	"५", "5", "६", "6", "७", "7", "८", "8", "९", "9",
)

// ASCIIDigits replaces Devanagari digits with their ASCII equivalents.
func ASCIIDigits(s string) string {
	return devanagariDigits.Replace(s)
}

// digitClass matches one ASCII or Devanagari digit. Go's \d is ASCII only.
const digitClass = `[0-9०-९]`
