package workbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/xuri/excelize/v2"
)

// Write saves a document as an .xlsx file. The workbook is written to a
// temporary file next to path and renamed into place, so a failed write
// leaves no partial output.
func Write(doc *model.Document, path string) error {
	f, err := build(doc)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".portfolio-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary workbook: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// WriteTo streams a document as .xlsx.
func WriteTo(doc *model.Document, w io.Writer) error {
	f, err := build(doc)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func build(doc *model.Document) (*excelize.File, error) {
	if doc == nil || len(doc.Sheets) == 0 {
		return nil, common.ErrNothingToWrite
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	for i, ws := range doc.Sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, ws.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("failed to name worksheet %q: %w", ws.Name, err)
			}
		} else if _, err := f.NewSheet(ws.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to add worksheet %q: %w", ws.Name, err)
		}

		if err := writeSheet(f, ws); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeSheet(f *excelize.File, ws *model.Worksheet) error {
	headers := ws.Headers
	if len(headers) == 0 {
		headers = model.UnionFields(ws.Rows)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(ws.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", ws.Name, err)
	}

	for r, row := range ws.Rows {
		values := make([]any, len(headers))
		for i, h := range headers {
			values[i] = cellValue(row.Get(h))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d of %q: %w", r+2, ws.Name, err)
		}
		if err := f.SetSheetRow(ws.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", r+2, ws.Name, err)
		}
	}
	return nil
}

// cellValue maps a value to what excelize stores. Numbers whose spelling a
// float64 cannot hold are written as text.
func cellValue(v model.Value) any {
	switch v.Kind() {
	case model.KindNumber:
		if s := v.String(); !fitsFloat(s) {
			return s
		}
		n, _ := v.Float()
		return n
	case model.KindString:
		return v.String()
	default:
		return nil
	}
}

// fitsFloat reports whether a numeric spelling survives a float64 round trip.
// Digit strings longer than 15 digits or with a leading zero do not.
func fitsFloat(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return true
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return true
		}
	}
	if len(digits) > 15 {
		return false
	}
	return len(digits) == 1 || digits[0] != '0'
}
