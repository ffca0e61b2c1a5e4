package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/portfolio-optimizer/internal/engine"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/Veraticus/portfolio-optimizer/internal/pricing"
	"github.com/charmbracelet/lipgloss"
)

// summaryLabel pads labels by display width, which ignores color codes.
var summaryLabel = lipgloss.NewStyle().Width(18)

// RenderSummary writes the outcome counts, the per-product configuration and
// the no-action breakdown of a finished run.
func RenderSummary(w io.Writer, result *engine.RunResult) error {
	if result == nil || result.Context == nil {
		return nil
	}
	rc := result.Context
	s := result.Summary

	var b strings.Builder
	for _, o := range model.Outcomes {
		fmt.Fprintf(&b, "%s %d\n", summaryLabel.Render(OutcomeLabel(o)), s.Counts[o])
	}
	fmt.Fprintf(&b, "%s %d\n", summaryLabel.Render("  Assigned"), s.Assigned)
	fmt.Fprintf(&b, "%s %d\n", summaryLabel.Render("Campaigns"), s.Total)
	fmt.Fprintf(&b, "%s %s", summaryLabel.Render("Time taken"), result.Duration.Round(time.Millisecond))

	if _, err := fmt.Fprintln(w, RenderBox(ChartIcon+" Run Summary", b.String())); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if err := renderProducts(w, rc); err != nil {
		return err
	}

	if len(s.Reasons) > 0 {
		if _, err := fmt.Fprintln(w, StyleTitle("No action reasons")); err != nil {
			return fmt.Errorf("failed to write reasons title: %w", err)
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range s.Reasons {
			fmt.Fprintf(tw, "  %d\t%s\n", r.Count, r.Reason)
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write reasons: %w", err)
		}
	}

	if left := s.Counts[model.OutcomeUnassigned] - s.Assigned; left > 0 {
		if _, err := fmt.Fprintln(w, "\n"+FormatWarning(fmt.Sprintf("%d campaign(s) with spend still have no grouping", left))); err != nil {
			return fmt.Errorf("failed to write unassigned warning: %w", err)
		}
	}
	return nil
}

func renderProducts(w io.Writer, rc *engine.RunContext) error {
	products := rc.Registry.Names()
	if len(products) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, StyleTitle("Products")); err != nil {
		return fmt.Errorf("failed to write products title: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "  "+TableHeader("Product", "Threshold", "Price", "Source"))

	for _, product := range products {
		threshold := SubtleStyle.Render("none")
		if t, ok := rc.Thresholds[product]; ok {
			threshold = fmt.Sprintf("%.2f%%", t)
		}
		price, source := "-", "-"
		if e, ok := rc.Prices.Estimate(product); ok {
			source = string(e.Source)
			if e.Usable() {
				price = pricing.FormatMoney(e.Price)
			}
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", product, threshold, price, source)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write products: %w", err)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// RenderPlan writes what was found in a document before any question is
// asked: worksheets, registered groupings, skipped groupings and the
// products that need a price.
func RenderPlan(w io.Writer, plan *engine.Plan) error {
	if plan == nil {
		return nil
	}

	sheets := make([]string, 0, len(plan.CampaignSheets))
	for _, ws := range plan.CampaignSheets {
		sheets = append(sheets, fmt.Sprintf("%s (%d rows)", ws.Name, len(ws.Rows)))
	}
	content := fmt.Sprintf("Groupings:  %s\nCampaigns:  %s\nProducts:   %d",
		plan.GroupingSheet.Name, strings.Join(sheets, ", "), plan.Registry.Len())
	if _, err := fmt.Fprintln(w, RenderBox(BoxIcon+" Workbook", content)); err != nil {
		return fmt.Errorf("failed to write workbook box: %w", err)
	}

	if _, err := fmt.Fprintln(w, StyleTitle("Registered groupings")); err != nil {
		return fmt.Errorf("failed to write registry title: %w", err)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "  "+TableHeader("Grouping", "ID", "Product", "Tier"))
	for _, e := range plan.Registry.Entries {
		tier := FormatTier(e.Tier)
		if e.Ignored {
			tier += SubtleStyle.Render(" (duplicate, ignored)")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", e.Grouping.DisplayName, e.Grouping.ID, e.Product, tier)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}

	if len(plan.Registry.Skipped) > 0 {
		if _, err := fmt.Fprintln(w, "\n"+StyleTitle("Skipped groupings (no tier in name)")); err != nil {
			return fmt.Errorf("failed to write skipped title: %w", err)
		}
		for _, g := range plan.Registry.Skipped {
			if _, err := fmt.Fprintf(w, "  • %s %s\n", g.DisplayName, SubtleStyle.Render("("+g.ID+")")); err != nil {
				return fmt.Errorf("failed to write skipped grouping: %w", err)
			}
		}
	}

	if len(plan.NeedingPrice) > 0 {
		if _, err := fmt.Fprintln(w, "\n"+StyleTitle("Products needing a price")); err != nil {
			return fmt.Errorf("failed to write pricing title: %w", err)
		}
		for _, req := range plan.PriceRequests() {
			estimate := WarningStyle.Render("no estimate")
			if req.HasAuto {
				estimate = SuccessStyle.Render(pricing.FormatMoney(req.Suggested) + " estimated")
			}
			if _, err := fmt.Fprintf(w, "  • %s: %s\n", req.Product, estimate); err != nil {
				return fmt.Errorf("failed to write price request: %w", err)
			}
		}
	}
	return nil
}
