package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/grouping"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/Veraticus/portfolio-optimizer/internal/pricing"
)

// Config holds configuration options for the optimizer.
type Config struct {
	DuplicatePolicy grouping.DuplicatePolicy
	SkipPolicy      SkipPolicy
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DuplicatePolicy: grouping.DuplicateFirstWins,
		SkipPolicy:      SkipExclude,
	}
}

// Optimizer orchestrates one document-in, document-out reclassification run.
type Optimizer struct {
	progress Progress
	config   Config
}

// New creates an optimizer with the default configuration.
func New() *Optimizer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an optimizer with custom configuration.
func NewWithConfig(config Config) *Optimizer {
	if config.DuplicatePolicy == "" {
		config.DuplicatePolicy = grouping.DuplicateFirstWins
	}
	if config.SkipPolicy == "" {
		config.SkipPolicy = SkipExclude
	}
	return &Optimizer{config: config, progress: noProgress{}}
}

// WithProgress sets the observer of the decision pass.
func (o *Optimizer) WithProgress(p Progress) *Optimizer {
	if p == nil {
		p = noProgress{}
	}
	o.progress = p
	return o
}

// Plan is everything known about a document before the operator is asked anything.
type Plan struct {
	Registry       *grouping.Registry
	GroupingSheet  *model.Worksheet
	AutoPrices     map[string]float64
	CampaignSheets []*model.Worksheet
	NeedingPrice   []string
}

// PriceRequests builds one request per product needing a price.
func (p *Plan) PriceRequests() []model.PriceRequest {
	requests := make([]model.PriceRequest, 0, len(p.NeedingPrice))
	for _, product := range p.NeedingPrice {
		price, ok := p.AutoPrices[product]
		requests = append(requests, model.PriceRequest{Product: product, Suggested: price, HasAuto: ok})
	}
	return requests
}

// Prepare locates the worksheets, builds the product registry and works out
// which products need a price. Structural problems are reported here, before
// any row is touched.
func (o *Optimizer) Prepare(doc *model.Document) (*Plan, error) {
	if doc == nil {
		return nil, common.NewStructuralError("", "empty document", common.ErrMissingWorksheet)
	}

	plan := &Plan{}
	for _, ws := range doc.Sheets {
		switch {
		case plan.GroupingSheet == nil && model.IsGroupingSheetName(ws.Name):
			plan.GroupingSheet = ws
		case model.IsCampaignSheetName(ws.Name):
			plan.CampaignSheets = append(plan.CampaignSheets, ws)
		}
	}

	if plan.GroupingSheet == nil {
		return nil, common.NewStructuralError("", "could not find portfolios worksheet", common.ErrMissingWorksheet)
	}
	if len(plan.CampaignSheets) == 0 {
		return nil, common.NewStructuralError("", "could not find any sponsored campaigns worksheet", common.ErrMissingWorksheet)
	}

	reg, err := grouping.Build(plan.GroupingSheet, o.config.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	plan.Registry = reg

	plan.NeedingPrice = pricing.NeedingPrice(plan.CampaignSheets, reg)
	plan.AutoPrices = pricing.Infer(plan.CampaignSheets, plan.NeedingPrice)

	slog.Info("Prepared document",
		"grouping_sheet", plan.GroupingSheet.Name,
		"campaign_sheets", len(plan.CampaignSheets),
		"products", reg.Len(),
		"needing_price", len(plan.NeedingPrice),
		"auto_prices", len(plan.AutoPrices))

	return plan, nil
}

// RunResult is the outcome of one run.
type RunResult struct {
	Context  *RunContext
	Plan     *Plan
	Output   *model.Document
	Summary  Summary
	Duration time.Duration
}

// Run performs a complete reclassification: prepare, collect thresholds and
// prices, decide every campaign, let the operator place unassigned campaigns
// and build the output document. Output is nil when nothing changed.
func (o *Optimizer) Run(ctx context.Context, doc *model.Document, op Operator) (*RunResult, error) {
	start := time.Now()

	plan, err := o.Prepare(doc)
	if err != nil {
		return nil, err
	}

	thresholds, err := op.Thresholds(ctx, plan.Registry.Names())
	if err != nil {
		return nil, fmt.Errorf("failed to collect thresholds: %w", err)
	}
	if err := validateThresholds(thresholds); err != nil {
		return nil, err
	}

	var estimates []model.PriceEstimate
	if requests := plan.PriceRequests(); len(requests) > 0 {
		estimates, err = op.Prices(ctx, requests)
		if err != nil {
			return nil, fmt.Errorf("failed to collect prices: %w", err)
		}
		if err := validatePrices(estimates); err != nil {
			return nil, err
		}
	}

	rc := NewRunContext(plan.Registry, thresholds, pricing.NewBook(estimates), o.config.SkipPolicy)
	slog.Info("Starting run", "run_id", rc.ID, "sheets", len(plan.CampaignSheets))

	for _, ws := range plan.CampaignSheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc.ProcessSheet(ws, o.progress)
	}

	if len(rc.Unassigned()) > 0 {
		if err := op.ResolveUnassigned(ctx, rc.Session()); err != nil {
			return nil, fmt.Errorf("failed to assign campaigns: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &RunResult{
		Context: rc,
		Plan:    plan,
		Summary: rc.Summarize(),
	}

	out, err := rc.Output()
	switch {
	case errors.Is(err, common.ErrNothingToWrite):
		slog.Info("No campaigns were changed", "run_id", rc.ID)
	case err != nil:
		return nil, err
	default:
		result.Output = out
	}
	result.Duration = time.Since(start)

	slog.Info("Run complete",
		"run_id", rc.ID,
		"moved_to_good", result.Summary.Counts[model.OutcomeMovedToGood],
		"moved_to_bad", result.Summary.Counts[model.OutcomeMovedToBad],
		"no_action", result.Summary.Counts[model.OutcomeNoAction],
		"unassigned", result.Summary.Counts[model.OutcomeUnassigned],
		"assigned", result.Summary.Assigned,
		"duration", result.Duration)

	return result, nil
}

func validateThresholds(thresholds map[string]float64) error {
	for product, t := range thresholds {
		if t < 0 || t > 100 {
			return fmt.Errorf("%w: threshold %.2f for %q must be between 0 and 100", common.ErrInvalidConfig, t, product)
		}
	}
	return nil
}

func validatePrices(estimates []model.PriceEstimate) error {
	for _, e := range estimates {
		if e.Source != model.PriceSkipped && e.Price <= 0 {
			return fmt.Errorf("%w: price for %q must be positive", common.ErrInvalidConfig, e.Product)
		}
	}
	return nil
}
