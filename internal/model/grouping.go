package model

// Tier is the performance classification implied by a grouping name.
type Tier int

// Tier values.
const (
	TierUnknown Tier = iota
	TierGood
	TierBad
)

// String returns a human readable tier label.
func (t Tier) String() string {
	switch t {
	case TierGood:
		return "Good"
	case TierBad:
		return "Bad"
	default:
		return "Other"
	}
}

// Grouping is a performance-tier bucket (a portfolio) read from the document.
type Grouping struct {
	DisplayName string
	ID          string
}

// Product owns at most one good-tier and one bad-tier grouping.
type Product struct {
	Good *Grouping
	Bad  *Grouping
	Name string
}

// GroupingFor returns the product's grouping for a tier, or nil.
func (p *Product) GroupingFor(t Tier) *Grouping {
	switch t {
	case TierGood:
		return p.Good
	case TierBad:
		return p.Bad
	default:
		return nil
	}
}

// SkippedGrouping is a grouping whose name matched no tier phrase.
type SkippedGrouping struct {
	DisplayName string
	ID          string
}

// RegistryEntry records how one grouping was attributed to a product.
type RegistryEntry struct {
	Grouping Grouping
	Product  string
	Tier     Tier
	// Ignored is set when a duplicate same-tier grouping lost to an earlier
	// or later one under the configured duplicate policy.
	Ignored bool
}
