// Package voter defines the voter record produced for every accepted grid
// block and the stable field keys used by exporters.
package voter

import (
	"regexp"
	"strconv"
)

// EpicMissing marks a record that is very likely a real voter whose EPIC could
// not be recovered. It never collides with a real EPIC.
const EpicMissing = "ERROR_MISSING_EPIC"

// DefaultConfidence is assigned to every extracted record before validation.
const DefaultConfidence = 85

var epicShape = regexp.MustCompile(`^[A-Z]{3}[0-9]{7}$`)

// ValidEPIC reports whether s is a well-formed EPIC number.
func ValidEPIC(s string) bool {
	return epicShape.MatchString(s)
}

// RelationType is the relation printed next to the relative's name.
type RelationType string

const (
	RelationFather  RelationType = "Father"
	RelationMother  RelationType = "Mother"
	RelationHusband RelationType = "Husband"
)

// Gender of the voter.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Header is the page-level context printed above the voter grid. One Header
// is shared by every record of a page.
type Header struct {
	District     string `json:"header_district"`
	Taluka       string `json:"header_taluka"`
	Booth        string `json:"header_booth"`
	Constituency string `json:"header_constituency"`
	Office       string `json:"header_office"`
	RawText      string `json:"header_raw_text"`

	PartNo         string `json:"part_no"`
	AssemblyName   string `json:"assembly_name"`
	PollingStation string `json:"polling_station"`
	PollingAddress string `json:"polling_address"`
}

// Record is one voter extracted from a grid block.
type Record struct {
	EPIC                string       `json:"epic"`
	SerialNo            string       `json:"serial_no"`
	NameMarathi         string       `json:"name_marathi"`
	NameEnglish         string       `json:"name_english"`
	RelationType        RelationType `json:"relation_type"`
	RelationNameMarathi string       `json:"relation_name_marathi"`
	RelationNameEnglish string       `json:"relation_name_english"`
	HouseNo             string       `json:"house_no"`
	Age                 string       `json:"age"`
	Gender              Gender       `json:"gender"`
	Confidence          int          `json:"confidence"`
	PageNumber          int          `json:"page_number"`
	ExtractionOrder     int          `json:"extraction_order"`

	Header

	// Review flags. RelationDefaulted is set when no relation label was found
	// and RelationType holds the Father default. GenderDetected is false when
	// Gender holds the Male default; it does not affect validation.
	RelationDefaulted bool `json:"relation_defaulted"`
	GenderDetected    bool `json:"-"`

	// Cell position on the page, used for deterministic ordering.
	Row       int `json:"-"`
	Col       int `json:"-"`
	CellIndex int `json:"-"`
}

// New returns a record with every field at its default.
func New() Record {
	return Record{
		RelationType:      RelationFather,
		RelationDefaulted: true,
		Gender:            GenderMale,
		Confidence:        DefaultConfidence,
	}
}

// Flagged reports whether the record carries the missing-EPIC sentinel.
func (r Record) Flagged() bool {
	return r.EPIC == EpicMissing
}

// Export field keys, in column order.
var Fields = []string{
	"extraction_order",
	"page_number",
	"serial_no",
	"epic",
	"name_marathi",
	"name_english",
	"relation_type",
	"relation_name_marathi",
	"relation_name_english",
	"house_no",
	"age",
	"gender",
	"confidence",
	"relation_defaulted",
	"header_district",
	"header_taluka",
	"header_booth",
	"header_constituency",
	"header_office",
	"header_raw_text",
	"part_no",
	"assembly_name",
	"polling_station",
	"polling_address",
}

// Value returns the string form of the field named by key, and false for
// unknown keys.
func (r Record) Value(key string) (string, bool) {
	switch key {
	case "epic":
		return r.EPIC, true
	case "serial_no":
		return r.SerialNo, true
	case "name_marathi":
		return r.NameMarathi, true
	case "name_english":
		return r.NameEnglish, true
	case "relation_type":
		return string(r.RelationType), true
	case "relation_name_marathi":
		return r.RelationNameMarathi, true
	case "relation_name_english":
		return r.RelationNameEnglish, true
	case "house_no":
		return r.HouseNo, true
	case "age":
		return r.Age, true
	case "gender":
		return string(r.Gender), true
	case "confidence":
		return strconv.Itoa(r.Confidence), true
	case "page_number":
		return strconv.Itoa(r.PageNumber), true
	case "extraction_order":
		return strconv.Itoa(r.ExtractionOrder), true
	case "relation_defaulted":
		return strconv.FormatBool(r.RelationDefaulted), true
	case "header_district":
		return r.District, true
	case "header_taluka":
		return r.Taluka, true
	case "header_booth":
		return r.Booth, true
	case "header_constituency":
		return r.Constituency, true
	case "header_office":
		return r.Office, true
	case "header_raw_text":
		return r.RawText, true
	case "part_no":
		return r.PartNo, true
	case "assembly_name":
		return r.AssemblyName, true
	case "polling_station":
		return r.PollingStation, true
	case "polling_address":
		return r.PollingAddress, true
	}
	return "", false
}

// Values returns the record's values in Fields order.
func (r Record) Values() []string {
	out := make([]string, len(Fields))
	for i, k := range Fields {
		out[i], _ = r.Value(k)
	}
	return out
}
