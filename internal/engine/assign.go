package engine

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// AssignResult counts the outcome of one manual assignment.
type AssignResult struct {
	Assigned    int
	NotAssigned int
}

// Assign places previously unassigned campaigns (by index into Unassigned)
// into the good or bad grouping of product. The same ratio and spend rule as
// the decision pass applies, except that a row with no usable signal goes to
// the good tier. A row whose target grouping is missing is left unassigned.
// Assigning an already assigned row again replaces its earlier assignment.
func (rc *RunContext) Assign(product string, threshold, price float64, indices []int) (AssignResult, error) {
	var result AssignResult

	p, ok := rc.Registry.Product(product)
	if !ok {
		return result, fmt.Errorf("%w: %q", common.ErrUnknownProduct, product)
	}
	if len(indices) == 0 {
		return result, common.ErrNoSelection
	}

	for _, idx := range indices {
		if idx < 0 || idx >= len(rc.unassigned) {
			return result, fmt.Errorf("%w: index %d out of range", common.ErrNoSelection, idx)
		}
	}

	for _, idx := range indices {
		u := rc.unassigned[idx]

		shouldBeGood := true
		switch {
		case u.HasRatio:
			shouldBeGood = u.Ratio < threshold
		case u.Spend > 0 && price > 0:
			shouldBeGood = u.Spend < price*threshold/100
		}

		tier := model.TierBad
		if shouldBeGood {
			tier = model.TierGood
		}

		g := p.GroupingFor(tier)
		if g == nil || u.Columns.GroupingID == "" {
			result.NotAssigned++
			continue
		}

		rc.moveTo(u.CampaignRow, u.CampaignID, g)
		u.Assigned = true
		u.AssignedGrouping = g.DisplayName
		result.Assigned++
	}

	slog.Info("Assigned campaigns",
		"product", product,
		"assigned", result.Assigned,
		"not_assigned", result.NotAssigned)

	return result, nil
}

// AssignedCount returns how many unassigned campaigns now carry a grouping.
func (rc *RunContext) AssignedCount() int {
	n := 0
	for _, u := range rc.unassigned {
		if u.Assigned {
			n++
		}
	}
	return n
}

// session adapts a RunContext to the AssignmentSession handed to operators,
// supplying the run's threshold and price for the chosen product.
type session struct {
	rc *RunContext
}

// Session returns the manual assignment surface for this run.
func (rc *RunContext) Session() AssignmentSession {
	return session{rc: rc}
}

func (s session) Pending() []*model.UnassignedCampaign {
	return s.rc.unassigned
}

func (s session) Products() []string {
	return s.rc.Registry.Names()
}

func (s session) Assign(product string, indices []int) (AssignResult, error) {
	if _, ok := s.rc.Registry.Product(product); !ok {
		return AssignResult{}, fmt.Errorf("%w: %q", common.ErrUnknownProduct, product)
	}
	threshold, ok := s.rc.Thresholds[product]
	if !ok {
		return AssignResult{}, fmt.Errorf("%w: no threshold for product %q", common.ErrMissingConfig, product)
	}
	price, _ := s.rc.Prices.Price(product)
	return s.rc.Assign(product, threshold, price, indices)
}
