package pricing

import "github.com/Veraticus/portfolio-optimizer/internal/model"

// Book holds the price decisions for one run.
type Book struct {
	estimates map[string]model.PriceEstimate
	order     []string
}

// NewBook indexes estimates by product. A later estimate for the same product replaces an earlier one.
func NewBook(estimates []model.PriceEstimate) *Book {
	b := &Book{estimates: make(map[string]model.PriceEstimate)}
	for _, e := range estimates {
		b.Put(e)
	}
	return b
}

// Put records an estimate.
func (b *Book) Put(e model.PriceEstimate) {
	if _, ok := b.estimates[e.Product]; !ok {
		b.order = append(b.order, e.Product)
	}
	if e.Source != model.PriceSkipped {
		e.Price = Round(e.Price)
	}
	b.estimates[e.Product] = e
}

// Price returns a usable price for the product.
func (b *Book) Price(product string) (float64, bool) {
	e, ok := b.estimates[product]
	if !ok || !e.Usable() {
		return 0, false
	}
	return e.Price, true
}

// Skipped reports whether the operator skipped the product's price.
func (b *Book) Skipped(product string) bool {
	e, ok := b.estimates[product]
	return ok && e.Source == model.PriceSkipped
}

// Estimate returns the recorded estimate for a product.
func (b *Book) Estimate(product string) (model.PriceEstimate, bool) {
	e, ok := b.estimates[product]
	return e, ok
}

// Estimates returns all estimates in first-recorded order.
func (b *Book) Estimates() []model.PriceEstimate {
	out := make([]model.PriceEstimate, 0, len(b.order))
	for _, p := range b.order {
		out = append(out, b.estimates[p])
	}
	return out
}
