package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/portfolio-optimizer/internal/cli"
	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/config"
	"github.com/Veraticus/portfolio-optimizer/internal/engine"
	"github.com/Veraticus/portfolio-optimizer/internal/grouping"
	"github.com/Veraticus/portfolio-optimizer/internal/storage"
	"github.com/Veraticus/portfolio-optimizer/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize <bulk-file.xlsx>",
		Short: "Move campaigns between good and bad portfolios",
		Long: `Read an Amazon Ads bulk file, ask for a break-even threshold per product
(and a price where no ACOS is available), decide for every campaign whether it
belongs in its product's good or bad performing portfolio, and write only the
changed campaigns to a new bulk file.

Campaigns with spend but no portfolio can be placed by hand at the end.

Examples:
  portfolio optimize bulk.xlsx                      # Interactive run
  portfolio optimize bulk.xlsx -t 25                # Same threshold for every product
  portfolio optimize bulk.xlsx --plan plan.yaml     # Answers from a plan file
  portfolio optimize bulk.xlsx -t 25 --non-interactive --audit ~/.local/share/portfolio/audit.db`,
		Args: cobra.ExactArgs(1),
		RunE: runOptimize,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: Portfolio_Optimized_<date>.xlsx)")
	cmd.Flags().StringP("plan", "p", "", "Plan file with thresholds, prices and assignments")
	cmd.Flags().Float64P("threshold-all", "t", 0, "Use one threshold (percent) for every product")
	cmd.Flags().Bool("non-interactive", false, "Never prompt; requires --plan or --threshold-all")
	cmd.Flags().String("duplicate-policy", "first", "Same-tier duplicate portfolios: first, last or error")
	cmd.Flags().String("skip-policy", "exclude", "Skipped prices: exclude (no decisions) or price-only (ACOS still used)")
	cmd.Flags().String("audit", "", "SQLite file to record the run in")

	_ = viper.BindPFlag("optimize.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("optimize.plan", cmd.Flags().Lookup("plan"))
	_ = viper.BindPFlag("optimize.threshold_all", cmd.Flags().Lookup("threshold-all"))
	_ = viper.BindPFlag("optimize.non_interactive", cmd.Flags().Lookup("non-interactive"))
	_ = viper.BindPFlag("groupings.duplicate_policy", cmd.Flags().Lookup("duplicate-policy"))
	_ = viper.BindPFlag("pricing.skip_policy", cmd.Flags().Lookup("skip-policy"))
	_ = viper.BindPFlag("audit.path", cmd.Flags().Lookup("audit"))

	return cmd
}

func runOptimize(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	settings, err := config.LoadSettings(time.Now())
	if err != nil {
		return err
	}

	cfg, err := engineConfig(settings)
	if err != nil {
		return err
	}

	op, err := buildOperator(settings, cmd.InOrStdin(), out)
	if err != nil {
		return err
	}

	input := config.ExpandPath(args[0])
	doc, err := workbook.Read(input)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Could not read %s", input), err)
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), true)
	defer handler.Stop()

	fmt.Fprintln(out, cli.FormatTitle("Optimizing "+input))

	result, err := engine.NewWithConfig(cfg).
		WithProgress(cli.NewProgress(cmd.ErrOrStderr())).
		Run(ctx, doc, op)
	if err != nil {
		if handler.WasInterrupted() || errors.Is(err, context.Canceled) || errors.Is(err, cli.ErrInputCancelled) {
			return common.NewUserError("Optimization canceled; nothing was written", err)
		}
		if errors.Is(err, common.ErrStructural) {
			return common.NewUserError(fmt.Sprintf("%s is not a usable bulk file: %v", input, err), err)
		}
		return err
	}

	if err := cli.RenderSummary(out, result); err != nil {
		return err
	}

	written := ""
	if result.Output == nil {
		fmt.Fprintln(out, cli.FormatInfo("No campaigns changed; no output file was written."))
	} else {
		if err := workbook.Write(result.Output, settings.Output); err != nil {
			return common.NewUserError(fmt.Sprintf("Could not write %s", settings.Output), err)
		}
		written = settings.Output
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Wrote %d changed campaign(s) to %s",
			len(result.Context.Changed()), settings.Output)))
	}

	if settings.AuditPath != "" {
		if err := saveAudit(ctx, settings.AuditPath, result, storage.RunInfo{Source: input, Output: written}); err != nil {
			common.LogError(err, "Failed to record run audit", common.Fields{"path": settings.AuditPath})
			fmt.Fprintln(out, cli.FormatWarning("The run was not recorded in the audit database."))
			return nil
		}
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Recorded run %s in %s", result.Context.ID, settings.AuditPath)))
	}

	return nil
}

func engineConfig(settings *config.Settings) (engine.Config, error) {
	dup, err := grouping.ParseDuplicatePolicy(settings.DuplicatePolicy)
	if err != nil {
		return engine.Config{}, err
	}
	skip, err := engine.ParseSkipPolicy(settings.SkipPolicy)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{DuplicatePolicy: dup, SkipPolicy: skip}, nil
}

// buildOperator picks who answers the run's questions: a plan file, an
// implicit plan from --threshold-all in non-interactive mode, or the terminal.
func buildOperator(settings *config.Settings, in io.Reader, out io.Writer) (engine.Operator, error) {
	switch {
	case settings.PlanPath != "":
		plan, err := config.LoadPlan(settings.PlanPath)
		if err != nil {
			return nil, err
		}
		if plan.DefaultThreshold == nil && settings.ThresholdAll != nil {
			plan.DefaultThreshold = settings.ThresholdAll
		}
		return cli.NewPlanOperator(plan), nil
	case settings.NonInteractive:
		return cli.NewPlanOperator(&config.Plan{
			DefaultThreshold: settings.ThresholdAll,
			AcceptAutoPrices: true,
		}), nil
	default:
		p := cli.NewCLIPrompter(in, out)
		if settings.ThresholdAll != nil {
			p.WithThresholdAll(*settings.ThresholdAll)
		}
		return p, nil
	}
}

func saveAudit(ctx context.Context, path string, result *engine.RunResult, info storage.RunInfo) error {
	audit, err := openAudit(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := audit.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close audit database", nil)
		}
	}()

	return audit.SaveRun(ctx, result, info)
}

func openAudit(ctx context.Context, path string) (*storage.SQLiteAudit, error) {
	audit, err := storage.NewSQLiteAudit(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := audit.Migrate(ctx); err != nil {
		_ = audit.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return audit, nil
}
