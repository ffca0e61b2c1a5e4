package model

// PriceSource records where a product price came from.
type PriceSource string

// Price sources.
const (
	PriceAuto    PriceSource = "AUTO"
	PriceManual  PriceSource = "MANUAL"
	PriceSkipped PriceSource = "SKIPPED"
)

// PriceEstimate is the per-run price decision for one product.
type PriceEstimate struct {
	Product string
	Source  PriceSource
	Price   float64
}

// Usable reports whether the estimate carries a price that can drive comparisons.
func (p PriceEstimate) Usable() bool {
	return p.Source != PriceSkipped && p.Price > 0
}

// PriceRequest asks the operator for a product price, with an optional
// auto-derived suggestion.
type PriceRequest struct {
	Product   string
	Suggested float64
	HasAuto   bool
}
