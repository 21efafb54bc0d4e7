// Package resource turns loosely structured spreadsheet rows into validated
// map-resource records and classifies their free-text categories.
package resource

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is a row identifier. Source-supplied values are kept verbatim; when the
// value looks like an integer it marshals unquoted so numeric IDs survive as
// numbers in the marker JSON.
type ID string

// MarshalJSON emits the raw digits for integer-looking IDs and a JSON string
// otherwise. Only canonical integers qualify ("007" stays a string).
func (id ID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return []byte(strconv.Quote(s)), nil
}

// Flag is a tri-state boolean: filled-in spreadsheets say yes or no, but most
// cells are simply blank.
type Flag int

const (
	FlagUnknown Flag = iota
	FlagTrue
	FlagFalse
)

// ParseFlag maps the usual spreadsheet yes/no tokens onto a Flag. Anything
// unrecognized, including the empty string, is FlagUnknown; there is no error
// case.
func ParseFlag(s string) Flag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return FlagTrue
	case "no", "n", "false", "0":
		return FlagFalse
	default:
		return FlagUnknown
	}
}

// MarshalJSON renders true/false, or null for unknown.
func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagTrue:
		return []byte("true"), nil
	case FlagFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "unknown"
	}
}

// Record is one validated resource listing. Records are built transiently
// during a load and never mutated afterwards.
type Record struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Category     string  `json:"category"`
	PhoneNumber  string  `json:"phone_number"`
	Address      string  `json:"address"`
	Email        string  `json:"email"`
	Description  string  `json:"description"`
	Restrictions string  `json:"restrictions"`
	Days         string  `json:"days"`
	Link         string  `json:"link"`
	Legit        Flag    `json:"legit"`
	Confirmed    Flag    `json:"confirmed"`
	Reliability  string  `json:"reliability"`
	CallNotes    string  `json:"call_notes"`
}

// Diagnostics accumulates the outcome of one load pass. It is returned to the
// caller rather than kept in any global state.
type Diagnostics struct {
	Path            string
	Exists          bool
	SheetTitle      string
	Headers         []string
	ParsedRows      int
	SkippedNoCoords int
	BadLatLng       int
	Errors          []string
	SampleRow       *Record
}

// String renders the plain-text dump served by the debug endpoint.
func (d *Diagnostics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path: %s\n", d.Path)
	fmt.Fprintf(&b, "Exists: %v\n", d.Exists)
	fmt.Fprintf(&b, "Sheet: %s\n", d.SheetTitle)
	fmt.Fprintf(&b, "Headers: %v\n", d.Headers)
	fmt.Fprintf(&b, "Parsed rows (with coords): %d\n", d.ParsedRows)
	fmt.Fprintf(&b, "Skipped (no coords): %d\n", d.SkippedNoCoords)
	fmt.Fprintf(&b, "Bad lat/lng: %d\n", d.BadLatLng)
	fmt.Fprintf(&b, "Errors: %v\n", d.Errors)
	if d.SampleRow != nil {
		fmt.Fprintf(&b, "Sample row: %+v\n", *d.SampleRow)
	} else {
		b.WriteString("Sample row: none\n")
	}
	return b.String()
}
