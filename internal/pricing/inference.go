// Package pricing derives implied unit prices for products that lack a
// direct profitability ratio.
package pricing

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/columns"
	"github.com/Veraticus/portfolio-optimizer/internal/grouping"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/shopspring/decimal"
)

// segmentSeparator ends the product segment of a campaign display name.
const segmentSeparator = "|"

// NeedingPrice lists registered products with at least one campaign row that
// has spend but no usable ratio. Order follows first detection.
func NeedingPrice(sheets []*model.Worksheet, reg *grouping.Registry) []string {
	seen := make(map[string]bool)
	var needing []string

	for _, ws := range sheets {
		if len(ws.Rows) == 0 {
			continue
		}
		cols := columns.ResolveRow(ws.Rows[0])
		if cols.Entity == "" {
			continue
		}

		for _, row := range ws.Rows {
			if !columns.IsCampaign(row, cols) {
				continue
			}
			if ratio, ok := columns.Float(row, cols.Ratio); ok && ratio > 0 {
				continue
			}
			if columns.PositiveFloat(row, cols.Spend) == 0 {
				continue
			}
			product, _, ok := reg.Lookup(columns.Text(row, cols.GroupingName))
			if !ok || seen[product.Name] {
				continue
			}
			seen[product.Name] = true
			needing = append(needing, product.Name)
		}
	}

	return needing
}

// Infer derives price = revenue / units for each listed product from the first
// campaign row whose display name segment matches the product.
func Infer(sheets []*model.Worksheet, products []string) map[string]float64 {
	prices := make(map[string]float64)
	if len(products) == 0 {
		return prices
	}

	for _, ws := range sheets {
		if len(ws.Rows) == 0 {
			continue
		}
		cols := columns.ResolveRow(ws.Rows[0])
		if cols.Entity == "" || cols.Revenue == "" || cols.Units == "" || cols.CampaignName == "" {
			continue
		}

		for _, row := range ws.Rows {
			if !columns.IsCampaign(row, cols) {
				continue
			}
			revenue := columns.PositiveFloat(row, cols.Revenue)
			units := columns.PositiveFloat(row, cols.Units)
			if revenue == 0 || units == 0 {
				continue
			}
			segment := CampaignSegment(columns.Text(row, cols.CampaignName))
			if segment == "" {
				continue
			}

			for _, product := range products {
				if _, done := prices[product]; done {
					continue
				}
				if Matches(product, segment) {
					prices[product] = Round(revenue / units)
					slog.Debug("Derived product price",
						"product", product,
						"campaign_segment", segment,
						"price", prices[product])
				}
			}
		}
	}

	return prices
}

// CampaignSegment returns the product segment of a campaign display name: the
// text before the first separator, with trailing dashes trimmed.
func CampaignSegment(campaignName string) string {
	segment := campaignName
	if idx := strings.Index(campaignName, segmentSeparator); idx > 0 {
		segment = campaignName[:idx]
	}
	segment = strings.TrimSpace(segment)
	segment = strings.TrimRight(segment, "-")
	return strings.TrimSpace(segment)
}

// Matches reports whether a campaign segment refers to a product: containment
// in either direction, or the segment starting with the product's first word.
func Matches(product, segment string) bool {
	p := strings.ToLower(strings.TrimSpace(product))
	s := strings.ToLower(strings.TrimSpace(segment))
	if p == "" || s == "" {
		return false
	}
	if strings.Contains(s, p) || strings.Contains(p, s) {
		return true
	}
	words := strings.Fields(p)
	return len(words) > 0 && strings.HasPrefix(s, words[0])
}

// Round rounds a price to cents.
func Round(price float64) float64 {
	return decimal.NewFromFloat(price).Round(2).InexactFloat64()
}

// FormatMoney renders an amount as dollars and cents.
func FormatMoney(amount float64) string {
	return "$" + decimal.NewFromFloat(amount).StringFixed(2)
}
