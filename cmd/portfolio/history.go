package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Veraticus/portfolio-optimizer/internal/cli"
	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/config"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/Veraticus/portfolio-optimizer/internal/pricing"
	"github.com/Veraticus/portfolio-optimizer/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or the decisions of one run",
		Long: `Read the audit database written by 'portfolio optimize --audit'.

Without arguments the most recent runs are listed. With a run id every
decision of that run is shown, together with the prices that were used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("audit")
			if path == "" {
				path = viper.GetString("audit.path")
			}
			if path == "" {
				return common.NewUserError("No audit database configured; pass --audit or set audit.path", common.ErrMissingConfig)
			}
			path = config.ExpandPath(path)

			audit, err := openAudit(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := audit.Close(); closeErr != nil {
					common.LogError(closeErr, "Failed to close audit database", nil)
				}
			}()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				limit, _ := cmd.Flags().GetInt("limit")
				runs, err := audit.GetRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return renderRuns(out, runs)
			}

			decisions, err := audit.GetDecisions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			prices, err := audit.GetPriceEstimates(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderDecisions(out, decisions, prices)
		},
	}

	cmd.Flags().String("audit", "", "SQLite audit file (default: audit.path)")
	cmd.Flags().IntP("limit", "n", 20, "Number of runs to list")

	return cmd
}

func renderRuns(w io.Writer, runs []storage.RunRecord) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, cli.InfoStyle.Render("No runs recorded yet."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, cli.TableHeader("Run", "Started", "Source", "Good", "Bad", "No action", "Unassigned"))
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d/%d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Source,
			r.MovedToGood, r.MovedToBad, r.NoAction, r.Unassigned-r.Assigned, r.Unassigned)
	}
	return tw.Flush()
}

func renderDecisions(w io.Writer, decisions []model.DecisionRecord, prices []model.PriceEstimate) error {
	if len(decisions) == 0 {
		fmt.Fprintln(w, cli.InfoStyle.Render("No decisions recorded for that run."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, cli.TableHeader("Campaign", "Outcome", "From", "To", "Profitability", "Reason"))
	for _, d := range decisions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.CampaignID, d.Outcome, d.FromGrouping, d.ToGrouping, d.Profitability, d.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(prices) > 0 {
		fmt.Fprintln(w, "\n"+cli.StyleTitle("Prices"))
		for _, p := range prices {
			price := "-"
			if p.Usable() {
				price = pricing.FormatMoney(p.Price)
			}
			fmt.Fprintf(w, "  %s: %s (%s)\n", p.Product, price, p.Source)
		}
	}
	return nil
}
