package resource

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Logical field names resolved against the header row.
const (
	fieldID           = "id"
	fieldName         = "name"
	fieldAddress      = "address"
	fieldPhone        = "phone"
	fieldEmail        = "email"
	fieldCategory     = "category"
	fieldDescription  = "description"
	fieldRestrictions = "restrictions"
	fieldDays         = "days"
	fieldLink         = "link"
	fieldLegit        = "legit"
	fieldConfirmed    = "confirmed"
	fieldReliability  = "reliability"
	fieldCallExp      = "call_experience"
	fieldExtra        = "extra"
	fieldLat          = "lat"
	fieldLng          = "lng"
)

// fieldAliases maps each logical field to the header spellings seen in the
// curated spreadsheet, in preference order. The misspelled "Cateogry of Help"
// is the header that actually ships in the dataset.
var fieldAliases = map[string][]string{
	fieldID:           {"ID", "id"},
	fieldName:         {"Name of Service", "Name"},
	fieldAddress:      {"Address"},
	fieldPhone:        {"Phone Number", "Phone"},
	fieldEmail:        {"Email"},
	fieldCategory:     {"Cateogry of Help", "Category of Help", "Category"},
	fieldDescription:  {"Description"},
	fieldRestrictions: {"Restrictions of Service"},
	fieldDays:         {"Days of Service"},
	fieldLink:         {"link to site", "Website", "Link"},
	fieldLegit:        {"Legitimate place?", "Legitimate place ?"},
	fieldConfirmed:    {"called + confirmed?", "called + confirmed ?"},
	fieldReliability:  {"Reliability Rate 1-10", "Reliability Rate 1–10", "Reliability"},
	fieldCallExp:      {"Call experience"},
	fieldExtra:        {"Unnamed: 18"},
	fieldLat:          {"Latitude", "Lat"},
	fieldLng:          {"Longitude", "Lng", "Long"},
}

// NormalizeHeader collapses runs of whitespace to single spaces and lowercases,
// so header matching tolerates stray spacing and casing.
func NormalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// columnMap is the per-load resolution of logical fields to column indexes.
// Fields with no matching header are absent from the map.
type columnMap map[string]int

// resolveColumns matches each logical field's aliases against the header row,
// case-insensitively and whitespace-collapsed. The first alias present wins.
func resolveColumns(headers []string) columnMap {
	byHeader := make(map[string]int, len(headers))
	for idx, h := range headers {
		key := NormalizeHeader(h)
		if _, seen := byHeader[key]; !seen {
			byHeader[key] = idx
		}
	}
	cols := make(columnMap, len(fieldAliases))
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			if idx, ok := byHeader[NormalizeHeader(alias)]; ok {
				cols[field] = idx
				break
			}
		}
	}
	return cols
}

// get returns the trimmed cell for a logical field, or "" when the column is
// missing or the row is too short.
func (c columnMap) get(row []string, field string) string {
	idx, ok := c[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseCoord attempts numeric conversion of a coordinate cell. Non-numeric,
// NaN and empty values all count as absent.
func parseCoord(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Normalize coerces data rows into Records, dropping rows without usable
// coordinates and recording counters and errors into the returned
// Diagnostics. A malformed row never aborts the pass.
func Normalize(headers []string, rows [][]string) ([]Record, *Diagnostics) {
	diag := &Diagnostics{Headers: headers}
	cols := resolveColumns(headers)

	var records []Record
	for _, row := range rows {
		rec, keep := normalizeRow(cols, row, len(records), diag)
		if keep {
			records = append(records, rec)
		}
	}

	diag.ParsedRows = len(records)
	if len(records) > 0 {
		sample := records[0]
		diag.SampleRow = &sample
	}
	return records, diag
}

// normalizeRow builds one Record. kept is the number of records accepted so
// far and seeds the auto-assigned identifier.
func normalizeRow(cols columnMap, row []string, kept int, diag *Diagnostics) (rec Record, keep bool) {
	defer func() {
		if r := recover(); r != nil {
			diag.Errors = append(diag.Errors, fmt.Sprintf("row error: %v", r))
			keep = false
		}
	}()

	lat, latOK := parseCoord(cols.get(row, fieldLat))
	lng, lngOK := parseCoord(cols.get(row, fieldLng))

	// Rows without usable coordinates cannot be placed on the map.
	if !latOK || !lngOK {
		diag.SkippedNoCoords++
		return Record{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		diag.BadLatLng++
		return Record{}, false
	}

	name := cols.get(row, fieldName)
	if name == "" {
		name = "Unnamed resource"
	}
	category := cols.get(row, fieldCategory)
	if category == "" {
		category = "Uncategorized"
	}

	id := cols.get(row, fieldID)
	if id == "" {
		id = strconv.Itoa(kept + 1)
	}

	reliability := cols.get(row, fieldReliability)
	switch strings.ToLower(reliability) {
	case "", "nan", "none":
		reliability = "na"
	}

	callNotes := joinNonEmpty(" | ", cols.get(row, fieldCallExp), cols.get(row, fieldExtra))

	return Record{
		ID:           ID(id),
		Name:         name,
		Lat:          lat,
		Lng:          lng,
		Category:     category,
		PhoneNumber:  cols.get(row, fieldPhone),
		Address:      cols.get(row, fieldAddress),
		Email:        cols.get(row, fieldEmail),
		Description:  cols.get(row, fieldDescription),
		Restrictions: cols.get(row, fieldRestrictions),
		Days:         cols.get(row, fieldDays),
		Link:         cols.get(row, fieldLink),
		Legit:        ParseFlag(cols.get(row, fieldLegit)),
		Confirmed:    ParseFlag(cols.get(row, fieldConfirmed)),
		Reliability:  reliability,
		CallNotes:    callNotes,
	}, true
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
