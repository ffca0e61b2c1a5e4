package engine

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/portfolio-optimizer/internal/columns"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// NoAction reasons.
const (
	ReasonGroupingNotRecognized = "grouping not recognized"
	ReasonNoThreshold           = "no threshold for product"
	ReasonPriceSkipped          = "price skipped for product"
	ReasonNoData                = "no ratio or spend data"
	ReasonAlreadyCorrect        = "already correct"
	ReasonNoGroupingIDColumn    = "no grouping id column"
	ReasonNoUnassignedGrouping  = "campaign has no grouping"
)

// reasonRatioEqual and reasonSpendEqual carry the compared value.
const (
	reasonRatioEqual = "ratio equals threshold (%.2f%%)"
	reasonSpendEqual = "spend equals max allowed ($%.2f)"
	reasonNoTarget   = "no %s grouping for product"
)

// verdict is the outcome of the profitability comparison.
type verdict int

const (
	verdictNone verdict = iota
	verdictGood
	verdictBad
	verdictEqual
)

func compare(value, limit float64) verdict {
	switch {
	case value < limit:
		return verdictGood
	case value > limit:
		return verdictBad
	default:
		return verdictEqual
	}
}

// signal is the profitability reading of one campaign row.
type signal struct {
	ratio    float64
	spend    float64
	hasRatio bool
}

// readSignal reads ratio and spend. Ratios strictly between 0 and 1 are
// fractions and get scaled to percent.
func readSignal(row *model.Row, cols model.ColumnMap) signal {
	var s signal
	if r, ok := columns.Float(row, cols.Ratio); ok {
		if r > 0 && r < 1 {
			r *= 100
		}
		s.ratio = r
		s.hasRatio = r > 0
	}
	if sp, ok := columns.Float(row, cols.Spend); ok {
		s.spend = sp
	}
	return s
}

// display renders the signal the way reports show it.
func (s signal) display() string {
	switch {
	case s.hasRatio:
		return fmt.Sprintf("%.2f%%", s.ratio)
	case s.spend > 0:
		return fmt.Sprintf("$%.2f Spend", s.spend)
	default:
		return "N/A"
	}
}

// campaignID derives the row identity: id field, then display name, then a
// synthesized spreadsheet row label (header is row 1).
func campaignID(row *model.Row, cols model.ColumnMap, index int) string {
	if id := columns.Text(row, cols.CampaignID); id != "" {
		return id
	}
	if name := columns.Text(row, cols.CampaignName); name != "" {
		return name
	}
	return fmt.Sprintf("Row-%d", index+2)
}

// ProcessSheet runs the decision state machine over one campaign worksheet.
// A worksheet without an entity column is not a campaign sheet and is skipped.
func (rc *RunContext) ProcessSheet(ws *model.Worksheet, progress Progress) {
	if progress == nil {
		progress = noProgress{}
	}
	if ws == nil || len(ws.Rows) == 0 {
		return
	}

	cols := columns.ResolveRow(ws.Rows[0])
	if cols.Entity == "" {
		slog.Debug("Skipping worksheet without entity column", "sheet", ws.Name)
		return
	}

	progress.SheetStarted(ws.Name, len(ws.Rows))
	defer progress.SheetFinished()

	for i, row := range ws.Rows {
		if columns.IsCampaign(row, cols) {
			rc.decide(model.CampaignRow{Row: row, Sheet: ws.Name, Columns: cols, Index: i})
		}
		progress.RowProcessed()
	}
}

// decide assigns exactly one outcome to a campaign row not seen before.
func (rc *RunContext) decide(cr model.CampaignRow) {
	cols := cr.Columns
	id := campaignID(cr.Row, cols, cr.Index)
	if rc.seen[id] {
		slog.Debug("Dropping duplicate campaign", "campaign_id", id, "sheet", cr.Sheet)
		return
	}
	rc.seen[id] = true

	sig := readSignal(cr.Row, cols)
	groupingID := columns.Text(cr.Row, cols.GroupingID)
	groupingName := columns.Text(cr.Row, cols.GroupingName)

	rec := model.DecisionRecord{
		CampaignID:    id,
		Sheet:         cr.Sheet,
		RowIndex:      cr.Index,
		FromGrouping:  groupingName,
		Profitability: sig.display(),
	}

	if (groupingID == "" || groupingName == "") && sig.spend > 0 {
		rc.markUnassigned(cr, id, sig, rec)
		return
	}

	product, parsed, ok := rc.Registry.Lookup(groupingName)
	if !ok {
		rc.noAction(rec, ReasonGroupingNotRecognized)
		return
	}
	rec.Product = product.Name
	rec.CurrentTier = parsed.Tier

	threshold, ok := rc.Thresholds[product.Name]
	if !ok {
		rc.noAction(rec, ReasonNoThreshold)
		return
	}
	rec.Threshold = fmt.Sprintf("%.2f%%", threshold)

	skipped := rc.Prices.Skipped(product.Name)
	if skipped && rc.SkipPolicy == SkipExclude {
		rc.noAction(rec, ReasonPriceSkipped)
		return
	}

	var v verdict
	switch price, hasPrice := rc.Prices.Price(product.Name); {
	case sig.hasRatio:
		v = compare(sig.ratio, threshold)
		if v == verdictEqual {
			rc.noAction(rec, fmt.Sprintf(reasonRatioEqual, threshold))
			return
		}
	case sig.spend > 0 && hasPrice && !skipped:
		maxSpend := price * threshold / 100
		v = compare(sig.spend, maxSpend)
		if v == verdictEqual {
			rc.noAction(rec, fmt.Sprintf(reasonSpendEqual, maxSpend))
			return
		}
	default:
		rc.noAction(rec, ReasonNoData)
		return
	}

	target := model.TierGood
	if v == verdictBad {
		target = model.TierBad
	}
	if parsed.Tier == target {
		rc.noAction(rec, ReasonAlreadyCorrect)
		return
	}

	g := product.GroupingFor(target)
	if g == nil {
		rc.noAction(rec, fmt.Sprintf(reasonNoTarget, lowerTier(target)))
		return
	}
	if cols.GroupingID == "" {
		rc.noAction(rec, ReasonNoGroupingIDColumn)
		return
	}

	owned := model.CampaignRow{Row: cr.Row.Clone(), Sheet: cr.Sheet, Columns: cols, Index: cr.Index}
	rc.moveTo(owned, id, g)

	rec.ToGrouping = g.DisplayName
	if target == model.TierGood {
		rec.Outcome = model.OutcomeMovedToGood
		rc.movedGood = append(rc.movedGood, owned)
	} else {
		rec.Outcome = model.OutcomeMovedToBad
		rc.movedBad = append(rc.movedBad, owned)
	}
	rc.record(rec)

	slog.Debug("Moved campaign",
		"campaign_id", id,
		"product", product.Name,
		"from", groupingName,
		"to", g.DisplayName,
		"profitability", rec.Profitability)
}

func (rc *RunContext) noAction(rec model.DecisionRecord, reason string) {
	rec.Outcome = model.OutcomeNoAction
	rec.Reason = reason
	rc.record(rec)
	slog.Debug("No action for campaign", "campaign_id", rec.CampaignID, "reason", reason)
}

func (rc *RunContext) markUnassigned(cr model.CampaignRow, id string, sig signal, rec model.DecisionRecord) {
	name := columns.Text(cr.Row, cr.Columns.CampaignName)
	if name == "" {
		name = "Unknown"
	}

	rec.Outcome = model.OutcomeUnassigned
	rec.Reason = ReasonNoUnassignedGrouping
	rc.record(rec)

	rc.unassigned = append(rc.unassigned, &model.UnassignedCampaign{
		CampaignRow:   model.CampaignRow{Row: cr.Row.Clone(), Sheet: cr.Sheet, Columns: cr.Columns, Index: cr.Index},
		CampaignID:    id,
		CampaignName:  name,
		Profitability: sig.display(),
		Ratio:         sig.ratio,
		HasRatio:      sig.hasRatio,
		Spend:         sig.spend,
	})
	slog.Debug("Campaign has no grouping", "campaign_id", id, "spend", sig.spend)
}

func lowerTier(t model.Tier) string {
	switch t {
	case model.TierGood:
		return "good"
	case model.TierBad:
		return "bad"
	default:
		return "other"
	}
}
