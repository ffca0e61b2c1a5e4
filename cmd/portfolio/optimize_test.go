package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/portfolio-optimizer/internal/cli"
	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/config"
	"github.com/Veraticus/portfolio-optimizer/internal/engine"
	"github.com/Veraticus/portfolio-optimizer/internal/grouping"
	"github.com/Veraticus/portfolio-optimizer/internal/testutil"
	"github.com/Veraticus/portfolio-optimizer/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(t *testing.T, input string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetContext(context.Background())
	return cmd, &out
}

func writeBulkFile(t *testing.T, dir string) string {
	t.Helper()
	doc := testutil.NewDocument(t).
		WithGroupings(testutil.WidgetGroupings()...).
		WithCampaignSheet(testutil.SponsoredProducts,
			testutil.Campaign{ID: "C1", Name: "Widget | SP", GroupingID: "G1", GroupingName: "Widget Good Performing", Ratio: "30", Spend: "12"},
			testutil.Campaign{ID: "C2", Name: "Widget | Exact", GroupingID: "B1", GroupingName: "Widget Bad Performing", Ratio: "20", Spend: "3"},
		).
		Build()

	path := filepath.Join(dir, "bulk.xlsx")
	require.NoError(t, workbook.Write(doc, path))
	return path
}

func TestRunOptimize_NonInteractive(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	input := writeBulkFile(t, dir)
	output := filepath.Join(dir, "out.xlsx")
	audit := filepath.Join(dir, "audit.db")

	viper.Set("optimize.output", output)
	viper.Set("optimize.threshold_all", 25.0)
	viper.Set("optimize.non_interactive", true)
	viper.Set("audit.path", audit)

	cmd, out := testCommand(t, "")
	require.NoError(t, runOptimize(cmd, []string{input}))

	assert.Contains(t, out.String(), "Wrote 2 changed campaign(s)")
	assert.Contains(t, out.String(), "Recorded run")

	written, err := workbook.Read(output)
	require.NoError(t, err)
	require.Equal(t, []string{engine.SponsoredProductsSheet}, written.SheetNames())

	rows := written.Sheets[0].Rows
	require.Len(t, rows, 2)
	// Moved-to-good rows come first.
	assert.Equal(t, "C2", rows[0].Get(testutil.HeaderCampaignID).String())
	assert.Equal(t, "G1", rows[0].Get(testutil.HeaderGroupingID).String())
	assert.Equal(t, "C1", rows[1].Get(testutil.HeaderCampaignID).String())
	assert.Equal(t, "B1", rows[1].Get(testutil.HeaderGroupingID).String())
	assert.Equal(t, engine.UpdateMarker, rows[1].Get(testutil.HeaderOperation).String())

	store, err := openAudit(context.Background(), audit)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runs, err := store.GetRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, input, runs[0].Source)
	assert.Equal(t, output, runs[0].Output)
	assert.Equal(t, 1, runs[0].MovedToGood)
	assert.Equal(t, 1, runs[0].MovedToBad)

	var listing bytes.Buffer
	require.NoError(t, renderRuns(&listing, runs))
	assert.Contains(t, listing.String(), runs[0].ID)
}

func TestRunOptimize_Interactive(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	input := writeBulkFile(t, dir)
	output := filepath.Join(dir, "out.xlsx")
	viper.Set("optimize.output", output)

	cmd, out := testCommand(t, "n\n25\n")
	require.NoError(t, runOptimize(cmd, []string{input}))

	assert.Contains(t, out.String(), "Threshold for Widget")
	assert.Contains(t, out.String(), "Wrote 2 changed campaign(s)")
	assert.FileExists(t, output)
}

func TestRunOptimize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		input    func(t *testing.T, dir string) string
		target   error
	}{
		{
			name:     "non-interactive without answers",
			settings: map[string]any{"optimize.non_interactive": true},
			input:    writeBulkFile,
			target:   common.ErrMissingConfig,
		},
		{
			name:     "bad duplicate policy",
			settings: map[string]any{"groupings.duplicate_policy": "newest", "optimize.threshold_all": 25.0},
			input:    writeBulkFile,
			target:   common.ErrInvalidConfig,
		},
		{
			name:     "missing input",
			settings: map[string]any{"optimize.threshold_all": 25.0},
			input:    func(_ *testing.T, dir string) string { return filepath.Join(dir, "missing.xlsx") },
		},
		{
			name:     "input without campaign sheets",
			settings: map[string]any{"optimize.threshold_all": 25.0},
			input: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "groupings.xlsx")
				doc := testutil.NewDocument(t).WithGroupings(testutil.WidgetGroupings()...).Build()
				require.NoError(t, workbook.Write(doc, path))
				return path
			},
			target: common.ErrStructural,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			for k, v := range tt.settings {
				viper.Set(k, v)
			}

			dir := t.TempDir()
			cmd, _ := testCommand(t, "")
			err := runOptimize(cmd, []string{tt.input(t, dir)})
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestBuildOperator(t *testing.T) {
	threshold := 25.0
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte("thresholds:\n  Widget: 20\n"), 0600))

	tests := []struct {
		name     string
		settings *config.Settings
		check    func(t *testing.T, op engine.Operator)
	}{
		{
			name:     "interactive",
			settings: &config.Settings{},
			check: func(t *testing.T, op engine.Operator) {
				assert.IsType(t, &cli.Prompter{}, op)
			},
		},
		{
			name:     "non-interactive threshold",
			settings: &config.Settings{NonInteractive: true, ThresholdAll: &threshold},
			check: func(t *testing.T, op engine.Operator) {
				require.IsType(t, &cli.PlanOperator{}, op)
				got, err := op.Thresholds(context.Background(), []string{"Widget"})
				require.NoError(t, err)
				assert.Equal(t, map[string]float64{"Widget": 25}, got)
			},
		},
		{
			name:     "plan with threshold fallback",
			settings: &config.Settings{PlanPath: planPath, ThresholdAll: &threshold},
			check: func(t *testing.T, op engine.Operator) {
				got, err := op.Thresholds(context.Background(), []string{"Widget", "Lamp"})
				require.NoError(t, err)
				assert.Equal(t, map[string]float64{"Widget": 20, "Lamp": 25}, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := buildOperator(tt.settings, strings.NewReader(""), &bytes.Buffer{})
			require.NoError(t, err)
			tt.check(t, op)
		})
	}

	_, err := buildOperator(&config.Settings{PlanPath: filepath.Join(dir, "missing.yaml")}, nil, nil)
	assert.Error(t, err)
}

func TestEngineConfig(t *testing.T) {
	cfg, err := engineConfig(&config.Settings{DuplicatePolicy: "last", SkipPolicy: "price-only"})
	require.NoError(t, err)
	assert.Equal(t, grouping.DuplicateLastWins, cfg.DuplicatePolicy)
	assert.Equal(t, engine.SkipPriceOnly, cfg.SkipPolicy)

	_, err = engineConfig(&config.Settings{SkipPolicy: "never"})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
