// Package workbook reads and writes bulk-file workbooks (.xlsx) as model documents.
package workbook

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/xuri/excelize/v2"
)

// Read opens a workbook from disk.
func Read(path string) (*model.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return fromFile(f)
}

// ReadFrom reads a workbook from a stream.
func ReadFrom(r io.Reader) (*model.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	return fromFile(f)
}

// fromFile converts every worksheet. The first row is the header row; each
// later non-blank row becomes a record carrying every header, with missing
// trailing cells read as empty. Text cells stay text even when they look
// numeric, so identifiers keep every digit and leading zero.
func fromFile(f *excelize.File) (*model.Document, error) {
	doc := &model.Document{}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read worksheet %q: %w", name, err)
		}

		ws := &model.Worksheet{Name: name}
		if len(rows) > 0 {
			ws.Headers = headerNames(rows[0])
			for r := 1; r < len(rows); r++ {
				if blank(rows[r]) {
					continue
				}
				row, err := record(f, name, r+1, ws.Headers, rows[r])
				if err != nil {
					return nil, err
				}
				ws.Rows = append(ws.Rows, row)
			}
		}

		slog.Debug("Read worksheet", "sheet", name, "headers", len(ws.Headers), "rows", len(ws.Rows))
		doc.Sheets = append(doc.Sheets, ws)
	}

	return doc, nil
}

// headerNames trims header cells and disambiguates repeats with a numeric
// suffix ("Spend", "Spend_1"). Empty header cells stay empty and their
// column is dropped from records.
func headerNames(cells []string) []string {
	headers := make([]string, len(cells))
	counts := make(map[string]int)
	for i, c := range cells {
		h := strings.TrimSpace(c)
		if h == "" {
			continue
		}
		if n := counts[h]; n > 0 {
			headers[i] = fmt.Sprintf("%s_%d", h, n)
		} else {
			headers[i] = h
		}
		counts[h]++
	}
	return headers
}

func record(f *excelize.File, sheet string, rowNum int, headers, cells []string) (*model.Row, error) {
	row := model.NewRow()
	for i, h := range headers {
		var raw string
		if i < len(cells) {
			raw = cells[i]
		}
		v, err := readCell(f, sheet, i+1, rowNum, raw)
		if err != nil {
			return nil, err
		}
		row.Set(h, v)
	}
	return row, nil
}

// readCell types a raw cell using the cell type stored in the workbook.
func readCell(f *excelize.File, sheet string, col, rowNum int, raw string) (model.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return model.Empty(), nil
	}
	cell, err := excelize.CoordinatesToCellName(col, rowNum)
	if err != nil {
		return model.Value{}, fmt.Errorf("failed to address row %d of %q: %w", rowNum, sheet, err)
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return model.Value{}, fmt.Errorf("failed to read cell %s of %q: %w", cell, sheet, err)
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return model.Text(raw), nil
	default:
		return model.ParseValue(raw), nil
	}
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
