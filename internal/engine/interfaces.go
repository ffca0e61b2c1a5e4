package engine

import (
	"context"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// Operator supplies the per-run configuration that only a human can decide.
type Operator interface {
	// Thresholds returns the break-even ratio (percent) for each product.
	// Products left out of the map get no threshold.
	Thresholds(ctx context.Context, products []string) (map[string]float64, error)
	// Prices settles a price for every product that lacks a direct ratio signal.
	Prices(ctx context.Context, requests []model.PriceRequest) ([]model.PriceEstimate, error)
	// ResolveUnassigned lets the operator place unassigned campaigns. It may
	// call session.Assign any number of times and returns when finished.
	ResolveUnassigned(ctx context.Context, session AssignmentSession) error
}

// AssignmentSession is the manual assignment surface handed to an Operator.
type AssignmentSession interface {
	Pending() []*model.UnassignedCampaign
	Products() []string
	Assign(product string, indices []int) (AssignResult, error)
}

// Progress observes the decision pass.
type Progress interface {
	SheetStarted(name string, rows int)
	RowProcessed()
	SheetFinished()
}

type noProgress struct{}

func (noProgress) SheetStarted(string, int) {}
func (noProgress) RowProcessed()            {}
func (noProgress) SheetFinished()           {}
