package model

import "strings"

// Worksheet is a named, ordered sequence of row records.
type Worksheet struct {
	Name    string
	Headers []string
	Rows    []*Row
}

// Document is an ordered collection of worksheets.
type Document struct {
	Sheets []*Worksheet
}

// SheetNames returns worksheet names in document order.
func (d *Document) SheetNames() []string {
	names := make([]string, 0, len(d.Sheets))
	for _, s := range d.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Sheet returns the worksheet with the exact name, or nil.
func (d *Document) Sheet(name string) *Worksheet {
	for _, s := range d.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddSheet appends a worksheet. Headers default to the union of row fields.
func (d *Document) AddSheet(name string, rows []*Row) *Worksheet {
	ws := &Worksheet{
		Name:    name,
		Headers: UnionFields(rows),
		Rows:    rows,
	}
	d.Sheets = append(d.Sheets, ws)
	return ws
}

// UnionFields collects field names across rows in first-appearance order.
func UnionFields(rows []*Row) []string {
	seen := make(map[string]bool)
	var fields []string
	for _, r := range rows {
		for _, f := range r.Fields() {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// IsGroupingSheetName reports whether a worksheet holds the portfolio groupings.
func IsGroupingSheetName(name string) bool {
	return strings.Contains(strings.ToLower(name), "portfolio")
}

// IsCampaignSheetName reports whether a worksheet holds campaign rows.
func IsCampaignSheetName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "sponsored") && strings.Contains(lower, "campaign")
}
