// Package sheet reads and writes the curated workbook as a plain table of
// header and data rows, hiding the xlsx plumbing from the pipelines.
package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is one worksheet: row 1 as Headers, rows 2+ as Rows. Rows may be
// ragged; accessors tolerate short rows.
type Table struct {
	SheetName string
	Headers   []string
	Rows      [][]string
}

// Read loads a worksheet into a Table. An empty sheetName selects the first
// worksheet in the workbook.
func Read(path, sheetName string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	t := &Table{SheetName: sheetName}
	if len(rows) > 0 {
		t.Headers = rows[0]
		t.Rows = rows[1:]
	}
	return t, nil
}

// Write saves the table as a single-sheet workbook at path.
func (t *Table) Write(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	name := t.SheetName
	if name == "" {
		name = "Sheet1"
	}
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	}

	all := make([][]string, 0, len(t.Rows)+1)
	all = append(all, t.Headers)
	all = append(all, t.Rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// ColumnIndex finds a header by name, ignoring case and collapsing internal
// whitespace. Returns -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	want := normalize(name)
	for idx, h := range t.Headers {
		if normalize(h) == want {
			return idx
		}
	}
	return -1
}

// EnsureColumn returns the index of the named column, appending it when
// missing.
func (t *Table) EnsureColumn(name string) int {
	if idx := t.ColumnIndex(name); idx >= 0 {
		return idx
	}
	t.Headers = append(t.Headers, name)
	return len(t.Headers) - 1
}

// Get returns the cell at (row, col), or "" when the row is too short.
func (t *Table) Get(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set writes the cell at (row, col), padding the row when needed.
func (t *Table) Set(row, col int, value string) {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return
	}
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
