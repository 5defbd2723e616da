// Package extract pulls voter fields out of a grid cell's reconstructed text
// and page context out of the heading above the grid. Every extractor
// degrades to an empty or default value; none of them fail.
package extract

import (
	"github.com/MeKo-Tech/voterroll/internal/voter"
)

// Block extracts every voter field from one cell's text. The returned record
// carries defaults for anything not found.
func Block(text string) voter.Record {
	rec := voter.New()
	rec.EPIC = ExtractEPIC(text)
	rec.SerialNo = ExtractSerial(text)
	rec.NameMarathi = ExtractName(text)

	rel, relName, found := ExtractRelation(text)
	rec.RelationType = rel
	rec.RelationNameMarathi = relName
	rec.RelationDefaulted = !found

	rec.HouseNo = ExtractHouse(text)
	rec.Age = ExtractAge(text)
	rec.Gender, rec.GenderDetected = ExtractGender(text)
	return rec
}

// Correct applies the Marathi OCR corrections to the record's names.
func Correct(rec *voter.Record) {
	rec.NameMarathi = CorrectMarathi(rec.NameMarathi)
	rec.RelationNameMarathi = CorrectMarathi(rec.RelationNameMarathi)
}
