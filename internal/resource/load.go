package resource

import (
	"fmt"
	"os"

	"resourcemap/internal/sheet"
)

// Load reads the workbook at path and normalizes it into records. It never
// returns an error: a missing or unreadable file yields an empty record list
// with the reason recorded in the diagnostics, so the map view can still
// render with zero markers.
func Load(path, sheetName string) ([]Record, *Diagnostics) {
	if _, err := os.Stat(path); err != nil {
		diag := &Diagnostics{Path: path}
		diag.Errors = append(diag.Errors, "File not found")
		return nil, diag
	}

	t, err := sheet.Read(path, sheetName)
	if err != nil {
		diag := &Diagnostics{Path: path, Exists: true}
		diag.Errors = append(diag.Errors, fmt.Sprintf("read failed: %v", err))
		return nil, diag
	}

	records, diag := Normalize(t.Headers, t.Rows)
	diag.Path = path
	diag.Exists = true
	diag.SheetTitle = t.SheetName
	return records, diag
}
