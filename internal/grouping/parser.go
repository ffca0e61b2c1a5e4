// Package grouping parses portfolio naming conventions and builds the product registry.
package grouping

import (
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// Phrase is one tier phrase of the naming convention.
type Phrase struct {
	Text string
	Tier model.Tier
}

// Phrases are tested in order; good phrases come before bad ones.
var Phrases = []Phrase{
	{Text: "good performing", Tier: model.TierGood},
	{Text: "good performance", Tier: model.TierGood},
	{Text: "bad performing", Tier: model.TierBad},
	{Text: "bad performance", Tier: model.TierBad},
	{Text: "poor performing", Tier: model.TierBad},
	{Text: "poor performance", Tier: model.TierBad},
}

// separators are stripped from the end of the product name.
const separators = "-|_: \t"

// Parsed is the result of parsing a grouping display name.
type Parsed struct {
	Product string
	Tier    model.Tier
}

// OK reports whether the name yielded a product and a tier.
func (p Parsed) OK() bool {
	return p.Tier != model.TierUnknown && p.Product != ""
}

// Parse extracts product identity and tier from a grouping display name.
// The product is the text before the first matching tier phrase with trailing
// separators and whitespace removed. A name that matches no phrase, or leaves
// an empty product, parses as unknown.
func Parse(displayName string) Parsed {
	for _, phrase := range Phrases {
		idx := indexFold(displayName, phrase.Text)
		if idx < 0 {
			continue
		}
		product := strings.TrimSpace(strings.TrimRight(displayName[:idx], separators))
		if product == "" {
			// "Good Performing - Widget" style names: try the next phrase,
			// then give up.
			continue
		}
		return Parsed{Product: product, Tier: phrase.Tier}
	}
	return Parsed{}
}

// indexFold is a case-insensitive strings.Index for an ASCII needle.
func indexFold(s, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], needle) {
			return i
		}
	}
	return -1
}
