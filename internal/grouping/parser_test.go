package grouping

import (
	"fmt"
	"testing"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		wantProduct string
		wantTier    model.Tier
	}{
		{name: "good performing", displayName: "Widget Good Performing", wantProduct: "Widget", wantTier: model.TierGood},
		{name: "good performance", displayName: "Widget Good Performance", wantProduct: "Widget", wantTier: model.TierGood},
		{name: "bad performing", displayName: "Widget Bad Performing", wantProduct: "Widget", wantTier: model.TierBad},
		{name: "poor performing synonym", displayName: "Widget Poor Performing", wantProduct: "Widget", wantTier: model.TierBad},
		{name: "poor performance synonym", displayName: "Widget Poor Performance", wantProduct: "Widget", wantTier: model.TierBad},
		{name: "case insensitive", displayName: "TU - Silver GOOD PERFORMING", wantProduct: "TU - Silver", wantTier: model.TierGood},
		{name: "dash separator stripped", displayName: "Widget - Good Performing", wantProduct: "Widget", wantTier: model.TierGood},
		{name: "pipe separator stripped", displayName: "Widget | Bad Performing", wantProduct: "Widget", wantTier: model.TierBad},
		{name: "mixed separators stripped", displayName: "Widget_: - Bad Performance", wantProduct: "Widget", wantTier: model.TierBad},
		{name: "trailing text ignored", displayName: "Gadget Good Performing (Q3)", wantProduct: "Gadget", wantTier: model.TierGood},
		{name: "no tier phrase", displayName: "Brand Defense", wantTier: model.TierUnknown},
		{name: "empty product", displayName: "Good Performing", wantTier: model.TierUnknown},
		{name: "only separators before phrase", displayName: " - Bad Performing", wantTier: model.TierUnknown},
		{name: "empty", displayName: "", wantTier: model.TierUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.displayName)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.wantProduct, got.Product)
			assert.Equal(t, tt.wantTier != model.TierUnknown, got.OK())
		})
	}
}

func TestParse_GoodTestedBeforeBad(t *testing.T) {
	got := Parse("Widget Good Performing was Bad Performing")
	assert.Equal(t, model.TierGood, got.Tier)
	assert.Equal(t, "Widget", got.Product)
}

func TestParse_EmptyGoodFallsThroughToBad(t *testing.T) {
	got := Parse("Good Performing Widget Bad Performing")
	assert.Equal(t, model.TierBad, got.Tier)
	assert.Equal(t, "Good Performing Widget", got.Product)
}

func TestParse_RoundTrip(t *testing.T) {
	products := []string{"Widget", "Blue Mug 12oz", "TU - Silver", "X"}
	for _, product := range products {
		for _, phrase := range []string{"Good Performing", "Good Performance"} {
			got := Parse(fmt.Sprintf("%s %s", product, phrase))
			assert.Equal(t, Parsed{Product: product, Tier: model.TierGood}, got)
		}
		for _, phrase := range []string{"Bad Performing", "Bad Performance", "Poor Performing", "Poor Performance"} {
			got := Parse(fmt.Sprintf("%s %s", product, phrase))
			assert.Equal(t, Parsed{Product: product, Tier: model.TierBad}, got)
		}
	}
}
