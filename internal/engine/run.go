// Package engine implements the portfolio reclassification engine: the
// per-campaign decision state machine, cross-sheet deduplication, manual
// assignment and output partitioning.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/grouping"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/Veraticus/portfolio-optimizer/internal/pricing"
	"github.com/google/uuid"
)

// UpdateMarker is written to the operation column of every changed row.
const UpdateMarker = "Update"

// SkipPolicy controls how campaigns of products with a skipped price are treated.
type SkipPolicy string

// Skip policies.
const (
	// SkipExclude keeps every campaign of a skipped product out of comparisons.
	SkipExclude SkipPolicy = "exclude"
	// SkipPriceOnly only disables the spend comparison for the product.
	SkipPriceOnly SkipPolicy = "price-only"
)

// ParseSkipPolicy validates a policy name. Empty selects SkipExclude.
func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch p := SkipPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SkipExclude, nil
	case SkipExclude, SkipPriceOnly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: skip policy %q (want exclude or price-only)", common.ErrInvalidConfig, s)
	}
}

// RunContext holds all state of one processing run. A fresh context is built
// for every run; nothing carries over between runs.
type RunContext struct {
	StartedAt  time.Time
	Registry   *grouping.Registry
	Thresholds map[string]float64
	Prices     *pricing.Book
	seen       map[string]bool
	ID         string
	SkipPolicy SkipPolicy
	decisions  []model.DecisionRecord
	movedGood  []model.CampaignRow
	movedBad   []model.CampaignRow
	unassigned []*model.UnassignedCampaign
	edits      []model.Edit
}

// NewRunContext creates the state for one run.
func NewRunContext(reg *grouping.Registry, thresholds map[string]float64, prices *pricing.Book, policy SkipPolicy) *RunContext {
	if thresholds == nil {
		thresholds = make(map[string]float64)
	}
	if prices == nil {
		prices = pricing.NewBook(nil)
	}
	if policy == "" {
		policy = SkipExclude
	}
	return &RunContext{
		ID:         uuid.NewString(),
		StartedAt:  time.Now(),
		Registry:   reg,
		Thresholds: thresholds,
		Prices:     prices,
		SkipPolicy: policy,
		seen:       make(map[string]bool),
	}
}

// Decisions returns the decision records in processing order.
func (rc *RunContext) Decisions() []model.DecisionRecord {
	out := make([]model.DecisionRecord, len(rc.decisions))
	copy(out, rc.decisions)
	return out
}

// Unassigned returns the campaigns waiting for manual assignment.
func (rc *RunContext) Unassigned() []*model.UnassignedCampaign {
	return rc.unassigned
}

// Moved returns the row copies moved into a tier.
func (rc *RunContext) Moved(tier model.Tier) []model.CampaignRow {
	switch tier {
	case model.TierGood:
		return rc.movedGood
	case model.TierBad:
		return rc.movedBad
	default:
		return nil
	}
}

// Edits returns every field change applied in this run.
func (rc *RunContext) Edits() []model.Edit {
	out := make([]model.Edit, len(rc.edits))
	copy(out, rc.edits)
	return out
}

// Seen reports whether a campaign id already has a decision in this run.
func (rc *RunContext) Seen(campaignID string) bool {
	return rc.seen[campaignID]
}

func (rc *RunContext) record(d model.DecisionRecord) {
	rc.decisions = append(rc.decisions, d)
}

// setField changes one field of an owned row copy and records the edit.
func (rc *RunContext) setField(cr model.CampaignRow, campaignID, field string, v model.Value) {
	if field == "" {
		return
	}
	rc.edits = append(rc.edits, model.Edit{
		Sheet:      cr.Sheet,
		CampaignID: campaignID,
		RowIndex:   cr.Index,
		Field:      field,
		Old:        cr.Row.Get(field),
		New:        v,
	})
	cr.Row.Set(field, v)
}

// moveTo points a row copy at a grouping and flags it for update.
func (rc *RunContext) moveTo(cr model.CampaignRow, campaignID string, g *model.Grouping) {
	rc.setField(cr, campaignID, cr.Columns.GroupingID, groupingIDValue(cr.Row.Get(cr.Columns.GroupingID), g.ID))
	rc.setField(cr, campaignID, cr.Columns.Operation, model.Text(UpdateMarker))
}

// groupingIDValue keeps the new grouping id in the same cell kind as the id it
// replaces. Ids are text unless the row held a number and the id is spelled
// exactly as that number.
func groupingIDValue(old model.Value, id string) model.Value {
	if old.Kind() == model.KindNumber {
		if n, err := strconv.ParseFloat(id, 64); err == nil && strconv.FormatFloat(n, 'f', -1, 64) == id {
			return model.Number(n)
		}
	}
	return model.Text(id)
}
