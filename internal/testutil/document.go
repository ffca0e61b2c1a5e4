// Package testutil provides test utilities for assembling bulk-file documents.
// It offers a fluent API so tests can describe groupings and campaign rows
// without spelling out full header sets.
//
// Example:
//
//	doc := testutil.NewDocument(t).
//		WithGroupings(testutil.WidgetGroupings()...).
//		WithCampaignSheet(testutil.SponsoredProducts,
//			testutil.Campaign{ID: "C1", GroupingName: "Widget Good Performing", GroupingID: "G1", Ratio: "30"},
//		).
//		Build()
package testutil

import (
	"testing"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// Common worksheet names used across tests.
const (
	GroupingsSheet    = "Portfolios"
	SponsoredProducts = "Sponsored Products Campaigns"
	SponsoredBrands   = "Sponsored Brands Campaigns"
)

// Standard bulk-file headers.
const (
	HeaderEntity       = "Entity"
	HeaderOperation    = "Operation"
	HeaderCampaignID   = "Campaign ID"
	HeaderCampaignName = "Campaign Name"
	HeaderGroupingID   = "Portfolio ID"
	HeaderGroupingName = "Portfolio Name (Informational only)"
	HeaderSpend        = "Spend"
	HeaderSales        = "Sales"
	HeaderUnits        = "Units"
	HeaderRatio        = "ACOS"
)

// CampaignHeaders is the default campaign worksheet header order.
var CampaignHeaders = []string{
	"Product", HeaderEntity, HeaderOperation, HeaderCampaignID, HeaderCampaignName,
	HeaderGroupingID, HeaderGroupingName, HeaderSpend, HeaderSales, HeaderUnits, HeaderRatio,
}

// Grouping describes one row of the groupings worksheet.
type Grouping struct {
	ID   string
	Name string
}

// WidgetGroupings returns the good and bad groupings of the "Widget" product.
func WidgetGroupings() []Grouping {
	return []Grouping{
		{ID: "G1", Name: "Widget Good Performing"},
		{ID: "B1", Name: "Widget Bad Performing"},
	}
}

// Campaign describes one campaign worksheet row. Numeric fields are raw cell
// text; an empty string leaves the cell empty.
type Campaign struct {
	Entity       string
	ID           string
	Name         string
	GroupingID   string
	GroupingName string
	Spend        string
	Sales        string
	Units        string
	Ratio        string
	Operation    string
}

// Row renders the campaign under the given headers.
func (c Campaign) Row(headers []string) *model.Row {
	entity := c.Entity
	if entity == "" {
		entity = "Campaign"
	}
	values := map[string]string{
		"Product":          "Sponsored Products",
		HeaderEntity:       entity,
		HeaderOperation:    c.Operation,
		HeaderCampaignID:   c.ID,
		HeaderCampaignName: c.Name,
		HeaderGroupingID:   c.GroupingID,
		HeaderGroupingName: c.GroupingName,
		HeaderSpend:        c.Spend,
		HeaderSales:        c.Sales,
		HeaderUnits:        c.Units,
		HeaderRatio:        c.Ratio,
	}
	row := model.NewRow()
	for _, h := range headers {
		row.Set(h, model.ParseValue(values[h]))
	}
	return row
}

// DocumentBuilder assembles a model.Document for tests.
type DocumentBuilder struct {
	t       *testing.T
	doc     *model.Document
	headers []string
}

// NewDocument starts a new document builder.
func NewDocument(t *testing.T) *DocumentBuilder {
	t.Helper()
	return &DocumentBuilder{
		t:       t,
		doc:     &model.Document{},
		headers: CampaignHeaders,
	}
}

// WithGroupings adds the groupings worksheet.
func (b *DocumentBuilder) WithGroupings(groupings ...Grouping) *DocumentBuilder {
	headers := []string{"Product", "Entity", "Operation", "Portfolio ID", "Portfolio Name"}
	ws := &model.Worksheet{Name: GroupingsSheet, Headers: headers}
	for _, g := range groupings {
		ws.Rows = append(ws.Rows, model.RowOf(
			"Product", "Portfolios",
			"Entity", "Portfolio",
			"Operation", "",
			"Portfolio ID", model.ParseValue(g.ID),
			"Portfolio Name", g.Name,
		))
	}
	b.doc.Sheets = append(b.doc.Sheets, ws)
	return b
}

// WithHeaders overrides the campaign header set for subsequently added sheets.
func (b *DocumentBuilder) WithHeaders(headers ...string) *DocumentBuilder {
	b.headers = headers
	return b
}

// WithoutColumns removes headers from the campaign header set for subsequently added sheets.
func (b *DocumentBuilder) WithoutColumns(drop ...string) *DocumentBuilder {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var kept []string
	for _, h := range b.headers {
		if !skip[h] {
			kept = append(kept, h)
		}
	}
	b.headers = kept
	return b
}

// WithCampaignSheet adds a campaign worksheet.
func (b *DocumentBuilder) WithCampaignSheet(name string, campaigns ...Campaign) *DocumentBuilder {
	headers := make([]string, len(b.headers))
	copy(headers, b.headers)
	ws := &model.Worksheet{Name: name, Headers: headers}
	for _, c := range campaigns {
		ws.Rows = append(ws.Rows, c.Row(headers))
	}
	b.doc.Sheets = append(b.doc.Sheets, ws)
	return b
}

// WithSheet adds an arbitrary worksheet.
func (b *DocumentBuilder) WithSheet(ws *model.Worksheet) *DocumentBuilder {
	b.doc.Sheets = append(b.doc.Sheets, ws)
	return b
}

// Build returns the assembled document.
func (b *DocumentBuilder) Build() *model.Document {
	b.t.Helper()
	return b.doc
}

// CampaignSheets returns the campaign worksheets of a document in order.
func CampaignSheets(doc *model.Document) []*model.Worksheet {
	var out []*model.Worksheet
	for _, ws := range doc.Sheets {
		if model.IsCampaignSheetName(ws.Name) {
			out = append(out, ws)
		}
	}
	return out
}
