package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/grouping"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/Veraticus/portfolio-optimizer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizer_Prepare(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", Name: "Widget | SP", GroupingID: "G1", GroupingName: widgetGood, Spend: "10", Sales: "60", Units: "3"},
			testutil.Campaign{ID: "C2", Name: "Lamp | SP", GroupingID: "G4", GroupingName: "Lamp - Good Performance", Spend: "10"},
			testutil.Campaign{ID: "C3", GroupingID: "G2", GroupingName: "Gadget Good Performing", Ratio: "12", Spend: "10"},
		).
		WithSheet(&model.Worksheet{Name: "Sponsored Display Report"}).
		Build()

	plan, err := New().Prepare(doc)
	require.NoError(t, err)

	assert.Equal(t, testutil.GroupingsSheet, plan.GroupingSheet.Name)
	require.Len(t, plan.CampaignSheets, 1)
	assert.Equal(t, []string{"Widget", "Gadget", "Gizmo", "Lamp"}, plan.Registry.Names())
	assert.Equal(t, []string{"Widget", "Lamp"}, plan.NeedingPrice)
	assert.Equal(t, map[string]float64{"Widget": 20}, plan.AutoPrices)
	assert.Equal(t, []model.PriceRequest{
		{Product: "Widget", Suggested: 20, HasAuto: true},
		{Product: "Lamp"},
	}, plan.PriceRequests())
}

func TestOptimizer_PrepareStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    func(t *testing.T) *model.Document
		target error
	}{
		{
			name: "missing groupings sheet",
			doc: func(t *testing.T) *model.Document {
				return testutil.NewDocument(t).
					WithCampaignSheet(testutil.SponsoredProducts, testutil.Campaign{ID: "C1"}).
					Build()
			},
			target: common.ErrMissingWorksheet,
		},
		{
			name: "missing campaign sheets",
			doc: func(t *testing.T) *model.Document {
				return testutil.NewDocument(t).WithGroupings(testGroupings()...).Build()
			},
			target: common.ErrMissingWorksheet,
		},
		{
			name: "missing grouping columns",
			doc: func(t *testing.T) *model.Document {
				return testutil.NewDocument(t).
					WithSheet(&model.Worksheet{
						Name:    "Portfolios",
						Headers: []string{"Entity", "Portfolio Name"},
						Rows:    []*model.Row{model.RowOf("Entity", "Portfolio", "Portfolio Name", widgetGood)},
					}).
					WithCampaignSheet(testutil.SponsoredProducts, testutil.Campaign{ID: "C1"}).
					Build()
			},
			target: common.ErrMissingColumns,
		},
		{
			name: "nil document",
			doc: func(_ *testing.T) *model.Document {
				return nil
			},
			target: common.ErrMissingWorksheet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Prepare(tt.doc(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrStructural)
			assert.ErrorIs(t, err, tt.target)

			var se *common.StructuralError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestOptimizer_PrepareDuplicatePolicy(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(
			testutil.Grouping{ID: "G1", Name: widgetGood},
			testutil.Grouping{ID: "G9", Name: "Widget - Good Performance"},
		).
		WithCampaignSheet(testutil.SponsoredProducts, testutil.Campaign{ID: "C1"}).
		Build()

	_, err := NewWithConfig(Config{DuplicatePolicy: grouping.DuplicateError}).Prepare(doc)
	assert.ErrorIs(t, err, common.ErrDuplicateGrouping)

	plan, err := NewWithConfig(Config{DuplicatePolicy: grouping.DuplicateLastWins}).Prepare(doc)
	require.NoError(t, err)
	p, ok := plan.Registry.Product("Widget")
	require.True(t, ok)
	assert.Equal(t, "G9", p.Good.ID)
}

// Groupings G1/B1, threshold 25, ratio 30 in the good grouping: moved to bad.
func TestRun_MovesAboveThresholdToBad(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", Name: "Widget | SP", GroupingID: "G1", GroupingName: widgetGood, Ratio: "30", Spend: "15"},
		).
		Build()

	result, err := New().Run(context.Background(), doc, NewMockOperator(25))
	require.NoError(t, err)

	decisions := result.Context.Decisions()
	require.Len(t, decisions, 1)
	assert.Equal(t, model.OutcomeMovedToBad, decisions[0].Outcome)
	assert.Equal(t, widgetGood, decisions[0].FromGrouping)
	assert.Equal(t, widgetBad, decisions[0].ToGrouping)

	require.NotNil(t, result.Output)
	ws := result.Output.Sheet(SponsoredProductsSheet)
	require.NotNil(t, ws)
	require.Len(t, ws.Rows, 1)
	assert.Equal(t, "B1", ws.Rows[0].Get(testutil.HeaderGroupingID).String())
	assert.Equal(t, UpdateMarker, ws.Rows[0].Get(testutil.HeaderOperation).String())
	assert.Nil(t, result.Output.Sheet(SponsoredBrandsSheet))
	assert.Equal(t, 1, result.Summary.Counts[model.OutcomeMovedToBad])
}

// No grouping, spend 50: unassigned, then manual assignment to Widget with no
// ratio or price defaults to the good grouping.
func TestRun_ManualAssignmentDefaultsToGood(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C7", Name: "Mystery | SP", Spend: "50"},
		).
		Build()

	op := NewMockOperator(25).WithAssignment("Widget")
	result, err := New().Run(context.Background(), doc, op)
	require.NoError(t, err)

	decisions := result.Context.Decisions()
	require.Len(t, decisions, 1)
	assert.Equal(t, model.OutcomeUnassigned, decisions[0].Outcome)

	unassigned := result.Context.Unassigned()
	require.Len(t, unassigned, 1)
	assert.True(t, unassigned[0].Assigned)
	assert.Equal(t, widgetGood, unassigned[0].AssignedGrouping)
	assert.Equal(t, "Mystery | SP", unassigned[0].CampaignName)
	assert.Equal(t, []AssignResult{{Assigned: 1}}, op.AssignResults())

	require.NotNil(t, result.Output)
	row := result.Output.Sheet(SponsoredProductsSheet).Rows[0]
	assert.Equal(t, "G1", row.Get(testutil.HeaderGroupingID).String())
	assert.Equal(t, UpdateMarker, row.Get(testutil.HeaderOperation).String())
	assert.Equal(t, 1, result.Summary.Assigned)

	// Spend-only rows never ask for a price when no grouping names a product.
	assert.Empty(t, op.PriceCalls())
}

// C100 in two campaign sheets: only the first produces a decision.
func TestRun_DeduplicatesCampaigns(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C100", GroupingID: "G1", GroupingName: widgetGood, Ratio: "40"},
		).
		WithCampaignSheet(testutil.SponsoredBrands,
			testutil.Campaign{ID: "C100", GroupingID: "B1", GroupingName: widgetBad, Ratio: "10"},
		).
		Build()

	result, err := New().Run(context.Background(), doc, NewMockOperator(25))
	require.NoError(t, err)

	decisions := result.Context.Decisions()
	require.Len(t, decisions, 1)
	assert.Equal(t, testutil.SponsoredProducts, decisions[0].Sheet)
	assert.Equal(t, model.OutcomeMovedToBad, decisions[0].Outcome)

	assert.Nil(t, result.Output.Sheet(SponsoredBrandsSheet))
	assert.Equal(t, "B1", doc.Sheet(testutil.SponsoredBrands).Rows[0].Get(testutil.HeaderGroupingID).String())
	assert.Equal(t, "", doc.Sheet(testutil.SponsoredBrands).Rows[0].Get(testutil.HeaderOperation).String())
}

func TestRun_Idempotent(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", GroupingID: "G1", GroupingName: widgetGood, Ratio: "0.31"},
			testutil.Campaign{ID: "C2", Name: "Widget | SP", GroupingID: "B1", GroupingName: widgetBad, Spend: "3", Sales: "40", Units: "2"},
			testutil.Campaign{ID: "C3", Spend: "9"},
		).
		WithCampaignSheet(testutil.SponsoredBrands,
			testutil.Campaign{ID: "C4", GroupingID: "B4", GroupingName: "Lamp - Bad Performance", Ratio: "11"},
			testutil.Campaign{ID: "C1", GroupingID: "B1", GroupingName: widgetBad, Ratio: "5"},
		).
		Build()

	run := func() *RunResult {
		result, err := New().Run(context.Background(), doc, NewMockOperator(25).WithAssignment("Lamp"))
		require.NoError(t, err)
		return result
	}

	first, second := run(), run()
	assert.Equal(t, first.Context.Decisions(), second.Context.Decisions())
	assert.Equal(t, first.Output, second.Output)
	assert.NotEqual(t, first.Context.ID, second.Context.ID)

	require.NotNil(t, first.Output)
	assert.Len(t, first.Output.Sheet(SponsoredProductsSheet).Rows, 3)
	assert.Len(t, first.Output.Sheet(SponsoredBrandsSheet).Rows, 1)
}

func TestRun_OutputOrderAndHeaders(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "BAD", GroupingID: "G1", GroupingName: widgetGood, Ratio: "40"},
			testutil.Campaign{ID: "NEW", Spend: "5"},
			testutil.Campaign{ID: "GOOD", GroupingID: "B1", GroupingName: widgetBad, Ratio: "10"},
		).
		Build()

	result, err := New().Run(context.Background(), doc, NewMockOperator(25).WithAssignment("Widget", 0))
	require.NoError(t, err)

	ws := result.Output.Sheet(SponsoredProductsSheet)
	require.NotNil(t, ws)
	var ids []string
	for _, r := range ws.Rows {
		ids = append(ids, r.Get(testutil.HeaderCampaignID).String())
	}
	assert.Equal(t, []string{"GOOD", "BAD", "NEW"}, ids)
	assert.Equal(t, testutil.CampaignHeaders, ws.Headers)
}

func TestRun_NothingChanged(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", GroupingID: "G1", GroupingName: widgetGood, Ratio: "10"},
		).
		Build()

	result, err := New().Run(context.Background(), doc, NewMockOperator(25))
	require.NoError(t, err)
	assert.Nil(t, result.Output)

	_, err = result.Context.Output()
	assert.ErrorIs(t, err, common.ErrNothingToWrite)
}

func TestRun_PriceCollection(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", Name: "Widget | SP", GroupingID: "G1", GroupingName: widgetGood, Spend: "6", Sales: "40", Units: "2"},
			testutil.Campaign{ID: "C2", Name: "Lamp | SP", GroupingID: "B4", GroupingName: "Lamp - Bad Performance", Spend: "2"},
		).
		Build()

	op := NewMockOperator(25).WithPrice("Lamp", 10)
	result, err := New().Run(context.Background(), doc, op)
	require.NoError(t, err)

	require.Len(t, op.PriceCalls(), 1)
	assert.Equal(t, []model.PriceRequest{
		{Product: "Widget", Suggested: 20, HasAuto: true},
		{Product: "Lamp"},
	}, op.PriceCalls()[0])

	// Widget: max spend 20*25% = 5, spend 6 -> bad.
	assert.Equal(t, model.OutcomeMovedToBad, findDecision(t, result.Context, "C1").Outcome)
	// Lamp: max spend 10*25% = 2.5, spend 2 -> good.
	assert.Equal(t, model.OutcomeMovedToGood, findDecision(t, result.Context, "C2").Outcome)

	est, ok := result.Context.Prices.Estimate("Widget")
	require.True(t, ok)
	assert.Equal(t, model.PriceAuto, est.Source)
}

func TestRun_OperatorErrors(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", Name: "Widget | SP", GroupingID: "G1", GroupingName: widgetGood, Spend: "6"},
			testutil.Campaign{ID: "C2", Spend: "6"},
		).
		Build()

	boom := errors.New("boom")
	tests := []struct {
		name   string
		op     *MockOperator
		target error
	}{
		{name: "threshold failure", op: &MockOperator{ThresholdErr: boom}, target: boom},
		{name: "price failure", op: &MockOperator{PriceErr: boom}, target: boom},
		{name: "assignment failure", op: &MockOperator{AssignErr: boom}, target: boom},
		{name: "threshold out of range", op: NewMockOperator(120), target: common.ErrInvalidConfig},
		{name: "non-positive manual price", op: NewMockOperator(25).WithPrice("Widget", -1), target: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Run(context.Background(), doc, tt.op)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", GroupingID: "G1", GroupingName: widgetGood, Ratio: "30"},
		).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Run(ctx, doc, NewMockOperator(25))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRun_ReportsProgress(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts, testutil.Campaign{ID: "C1"}).
		WithCampaignSheet(testutil.SponsoredBrands, testutil.Campaign{ID: "C2"}, testutil.Campaign{ID: "C3"}).
		Build()

	progress := &recordingProgress{}
	_, err := New().WithProgress(progress).Run(context.Background(), doc, NewMockOperator(25))
	require.NoError(t, err)

	assert.Equal(t, []string{testutil.SponsoredProducts, testutil.SponsoredBrands}, progress.sheets)
	assert.Equal(t, 3, progress.rows)
}

func TestSummarize(t *testing.T) {
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", GroupingID: "G1", GroupingName: widgetGood, Ratio: "30"},
			testutil.Campaign{ID: "C2", GroupingID: "G1", GroupingName: widgetGood, Ratio: "10"},
			testutil.Campaign{ID: "C3", GroupingID: "G1", GroupingName: widgetGood, Ratio: "11"},
			testutil.Campaign{ID: "C4", GroupingID: "X", GroupingName: "House Ads"},
			testutil.Campaign{ID: "C5", Spend: "3"},
		).
		Build()

	rc := newTestRun(t, doc, nil, "")
	rc.ProcessSheet(doc.Sheet(testutil.SponsoredProducts), nil)

	s := rc.Summarize()
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.Counts[model.OutcomeMovedToBad])
	assert.Equal(t, 3, s.Counts[model.OutcomeNoAction])
	assert.Equal(t, 1, s.Counts[model.OutcomeUnassigned])
	assert.Equal(t, []ReasonCount{
		{Reason: ReasonAlreadyCorrect, Count: 2},
		{Reason: ReasonGroupingNotRecognized, Count: 1},
	}, s.Reasons)
}
