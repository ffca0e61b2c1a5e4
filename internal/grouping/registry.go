package grouping

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/columns"
	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// DuplicatePolicy decides what happens when a product gets a second grouping of the same tier.
type DuplicatePolicy string

// Duplicate policies.
const (
	DuplicateFirstWins DuplicatePolicy = "first"
	DuplicateLastWins  DuplicatePolicy = "last"
	DuplicateError     DuplicatePolicy = "error"
)

// ParseDuplicatePolicy validates a policy name. Empty selects first-wins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateFirstWins, nil
	case DuplicateFirstWins, DuplicateLastWins, DuplicateError:
		return p, nil
	default:
		return "", fmt.Errorf("%w: duplicate policy %q (want first, last or error)", common.ErrInvalidConfig, s)
	}
}

// Registry maps product names to their good and bad groupings.
type Registry struct {
	products map[string]*model.Product
	entryIdx map[*model.Grouping]int
	order    []string
	Skipped  []model.SkippedGrouping
	Entries  []model.RegistryEntry
	policy   DuplicatePolicy
}

// NewRegistry creates an empty registry.
func NewRegistry(policy DuplicatePolicy) *Registry {
	if policy == "" {
		policy = DuplicateFirstWins
	}
	return &Registry{
		products: make(map[string]*model.Product),
		entryIdx: make(map[*model.Grouping]int),
		policy:   policy,
	}
}

// Build reads the groupings worksheet into a registry.
func Build(ws *model.Worksheet, policy DuplicatePolicy) (*Registry, error) {
	if ws == nil {
		return nil, common.NewStructuralError("", "could not find portfolios worksheet", common.ErrMissingWorksheet)
	}

	fields := ws.Headers
	if len(ws.Rows) > 0 {
		fields = ws.Rows[0].Fields()
	}

	cols := columns.ResolveGroupings(fields)
	if cols.Name == "" || cols.ID == "" {
		return nil, common.NewStructuralError(ws.Name, "could not find portfolio name or portfolio id columns", common.ErrMissingColumns)
	}

	reg := NewRegistry(policy)
	for _, row := range ws.Rows {
		name := strings.TrimSpace(row.Get(cols.Name).String())
		id := strings.TrimSpace(row.Get(cols.ID).String())
		if name == "" || id == "" {
			continue
		}
		if err := reg.Add(model.Grouping{DisplayName: name, ID: id}); err != nil {
			return nil, common.NewStructuralError(ws.Name, "", err)
		}
	}

	slog.Info("Built product registry",
		"sheet", ws.Name,
		"products", reg.Len(),
		"skipped_groupings", len(reg.Skipped))

	return reg, nil
}

// Add registers one grouping. Unrecognized names are recorded as skipped.
func (r *Registry) Add(g model.Grouping) error {
	parsed := Parse(g.DisplayName)
	if !parsed.OK() {
		r.Skipped = append(r.Skipped, model.SkippedGrouping(g))
		return nil
	}

	product, ok := r.products[parsed.Product]
	if !ok {
		product = &model.Product{Name: parsed.Product}
		r.products[parsed.Product] = product
		r.order = append(r.order, parsed.Product)
	}

	entry := model.RegistryEntry{Grouping: g, Product: parsed.Product, Tier: parsed.Tier}
	grouping := &g

	existing := product.GroupingFor(parsed.Tier)
	if existing != nil {
		switch r.policy {
		case DuplicateError:
			return fmt.Errorf("%w: %q and %q both map to %s tier of %q",
				common.ErrDuplicateGrouping, existing.DisplayName, g.DisplayName, parsed.Tier, parsed.Product)
		case DuplicateLastWins:
			r.Entries[r.entryIdx[existing]].Ignored = true
		default:
			entry.Ignored = true
			r.Entries = append(r.Entries, entry)
			slog.Warn("Ignoring duplicate grouping",
				"product", parsed.Product,
				"tier", parsed.Tier.String(),
				"kept", existing.DisplayName,
				"ignored", g.DisplayName)
			return nil
		}
	}

	switch parsed.Tier {
	case model.TierGood:
		product.Good = grouping
	case model.TierBad:
		product.Bad = grouping
	}
	r.entryIdx[grouping] = len(r.Entries)
	r.Entries = append(r.Entries, entry)
	return nil
}

// Product returns a registered product.
func (r *Registry) Product(name string) (*model.Product, bool) {
	p, ok := r.products[name]
	return p, ok
}

// Lookup resolves a grouping display name to its registered product.
func (r *Registry) Lookup(displayName string) (*model.Product, Parsed, bool) {
	parsed := Parse(displayName)
	if !parsed.OK() {
		return nil, parsed, false
	}
	p, ok := r.products[parsed.Product]
	return p, parsed, ok
}

// Names returns product names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered products.
func (r *Registry) Len() int {
	return len(r.order)
}
