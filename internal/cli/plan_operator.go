package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/config"
	"github.com/Veraticus/portfolio-optimizer/internal/engine"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// PlanOperator implements engine.Operator from a prepared plan, for
// unattended runs.
type PlanOperator struct {
	plan *config.Plan
}

var _ engine.Operator = (*PlanOperator)(nil)

// NewPlanOperator creates an operator that answers from plan.
func NewPlanOperator(plan *config.Plan) *PlanOperator {
	if plan == nil {
		plan = &config.Plan{}
	}
	return &PlanOperator{plan: plan}
}

// Thresholds returns the plan's threshold for each product. Products the plan
// does not cover get none, so their campaigns end as no action.
func (o *PlanOperator) Thresholds(_ context.Context, products []string) (map[string]float64, error) {
	out := make(map[string]float64, len(products))
	for _, product := range products {
		t, ok := o.plan.Threshold(product)
		if !ok {
			slog.Warn("Plan has no threshold for product", "product", product)
			continue
		}
		out[product] = t
	}
	return out, nil
}

// Prices applies plan prices, skips and, when allowed, the auto estimates.
// A product with none of those is skipped.
func (o *PlanOperator) Prices(_ context.Context, requests []model.PriceRequest) ([]model.PriceEstimate, error) {
	estimates := make([]model.PriceEstimate, 0, len(requests))
	for _, req := range requests {
		price, manual := o.plan.Prices[req.Product]
		switch {
		case o.plan.Skipped(req.Product):
			estimates = append(estimates, model.PriceEstimate{Product: req.Product, Source: model.PriceSkipped})
		case manual:
			estimates = append(estimates, model.PriceEstimate{Product: req.Product, Source: model.PriceManual, Price: price})
		case req.HasAuto && o.plan.AcceptAutoPrices:
			estimates = append(estimates, model.PriceEstimate{Product: req.Product, Source: model.PriceAuto, Price: req.Suggested})
		default:
			slog.Warn("Plan has no price for product; skipping", "product", req.Product, "has_auto", req.HasAuto)
			estimates = append(estimates, model.PriceEstimate{Product: req.Product, Source: model.PriceSkipped})
		}
	}
	return estimates, nil
}

// ResolveUnassigned replays the plan's assignments in order. An assignment
// without campaigns takes every campaign still unassigned at that point.
func (o *PlanOperator) ResolveUnassigned(ctx context.Context, session engine.AssignmentSession) error {
	for i, a := range o.plan.Assignments {
		if err := ctx.Err(); err != nil {
			return err
		}

		indices := selectCampaigns(session.Pending(), a.Campaigns)
		if len(indices) == 0 {
			slog.Warn("Plan assignment matched no unassigned campaigns", "assignment", i+1, "product", a.Product)
			continue
		}

		result, err := session.Assign(a.Product, indices)
		if err != nil {
			if errors.Is(err, common.ErrUnknownProduct) || errors.Is(err, common.ErrMissingConfig) {
				return fmt.Errorf("%w: plan assignment %d: %v", common.ErrInvalidConfig, i+1, err)
			}
			return err
		}

		slog.Info("Applied plan assignment",
			"assignment", i+1,
			"product", a.Product,
			"assigned", result.Assigned,
			"not_assigned", result.NotAssigned)
	}
	return nil
}

func selectCampaigns(pending []*model.UnassignedCampaign, ids []string) []int {
	var out []int
	if len(ids) == 0 {
		for i, u := range pending {
			if !u.Assigned {
				out = append(out, i)
			}
		}
		return out
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	found := make(map[string]bool, len(ids))
	for i, u := range pending {
		if want[u.CampaignID] && !found[u.CampaignID] {
			found[u.CampaignID] = true
			out = append(out, i)
		}
	}
	for _, id := range ids {
		if !found[id] {
			slog.Warn("Plan names a campaign that is not unassigned", "campaign_id", id)
		}
	}
	return out
}
