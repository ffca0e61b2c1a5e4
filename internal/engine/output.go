package engine

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// Output worksheet names.
const (
	SponsoredProductsSheet = "Sponsored Products Campaigns"
	SponsoredBrandsSheet   = "Sponsored Brands Campaigns"
)

// Changed returns every changed row copy: moved to good, moved to bad, then
// manually assigned.
func (rc *RunContext) Changed() []model.CampaignRow {
	out := make([]model.CampaignRow, 0, len(rc.movedGood)+len(rc.movedBad)+len(rc.unassigned))
	out = append(out, rc.movedGood...)
	out = append(out, rc.movedBad...)
	for _, u := range rc.unassigned {
		if u.Assigned {
			out = append(out, u.CampaignRow)
		}
	}
	return out
}

// Output partitions the changed rows into a new document with one worksheet
// per campaign type. Rows from sheets that are not recognizably "sponsored
// brands" land in the sponsored products sheet. Empty partitions are omitted.
func (rc *RunContext) Output() (*model.Document, error) {
	changed := rc.Changed()
	if len(changed) == 0 {
		return nil, common.ErrNothingToWrite
	}

	var products, brands []*model.Row
	for _, cr := range changed {
		if strings.Contains(strings.ToLower(cr.Sheet), "sponsored brands") {
			brands = append(brands, cr.Row)
		} else {
			products = append(products, cr.Row)
		}
	}

	doc := &model.Document{}
	if len(products) > 0 {
		doc.AddSheet(SponsoredProductsSheet, products)
	}
	if len(brands) > 0 {
		doc.AddSheet(SponsoredBrandsSheet, brands)
	}

	slog.Info("Built output document",
		"sponsored_products", len(products),
		"sponsored_brands", len(brands))

	return doc, nil
}
