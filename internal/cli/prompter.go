package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"github.com/Veraticus/portfolio-optimizer/internal/engine"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/Veraticus/portfolio-optimizer/internal/pricing"
)

// Prompter implements engine.Operator by asking the operator on a terminal.
type Prompter struct {
	writer       io.Writer
	reader       *LineReader
	thresholdAll *float64
}

var _ engine.Operator = (*Prompter)(nil)

// NewCLIPrompter creates a new CLI prompter with the given reader and writer.
func NewCLIPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// WithThresholdAll answers the threshold question for every product without asking.
func (p *Prompter) WithThresholdAll(threshold float64) *Prompter {
	p.thresholdAll = &threshold
	return p
}

// Thresholds asks for one threshold per product, or one for all of them.
func (p *Prompter) Thresholds(ctx context.Context, products []string) (map[string]float64, error) {
	out := make(map[string]float64, len(products))
	if len(products) == 0 {
		return out, nil
	}

	if p.thresholdAll != nil {
		for _, product := range products {
			out[product] = *p.thresholdAll
		}
		p.println(FormatInfo(fmt.Sprintf("Using threshold %.2f%% for all %d products", *p.thresholdAll, len(products))))
		return out, nil
	}

	var b strings.Builder
	for _, product := range products {
		fmt.Fprintf(&b, "  • %s\n", product)
	}
	b.WriteString("\nCampaigns with a ratio below a product's threshold belong in its good grouping.")
	if _, err := fmt.Fprintln(p.writer, RenderBox(fmt.Sprintf("%s Profitability Thresholds (%d products)", ChartIcon, len(products)), b.String())); err != nil {
		return nil, fmt.Errorf("failed to write threshold box: %w", err)
	}

	choice, err := p.promptChoice(ctx, "Use one threshold for all products? [y/n]", []string{"y", "n"})
	if err != nil {
		return nil, err
	}

	if choice == "y" {
		t, err := p.promptFloat(ctx, "Threshold for all products (%)", validThreshold)
		if err != nil {
			return nil, err
		}
		for _, product := range products {
			out[product] = t
		}
		return out, nil
	}

	for _, product := range products {
		t, err := p.promptFloat(ctx, fmt.Sprintf("Threshold for %s (%%)", product), validThreshold)
		if err != nil {
			return nil, err
		}
		out[product] = t
	}
	return out, nil
}

// Prices confirms or collects a price for each product without a ratio signal.
func (p *Prompter) Prices(ctx context.Context, requests []model.PriceRequest) ([]model.PriceEstimate, error) {
	estimates := make([]model.PriceEstimate, 0, len(requests))

	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var content string
		valid := []string{"e", "s"}
		if req.HasAuto {
			content = fmt.Sprintf("Estimated price: %s (sales / units from a matching campaign)\n\n", SuccessStyle.Render(pricing.FormatMoney(req.Suggested))) +
				"  [A] Accept estimate\n"
			valid = append(valid, "a")
		} else {
			content = WarningStyle.Render("No campaign had sales and units to estimate a price from.") + "\n\n"
		}
		content += "  [E] Enter a price\n" +
			"  [S] Skip (spend is not compared for this product)"

		title := fmt.Sprintf("Price for %s [%d/%d]", req.Product, i+1, len(requests))
		if _, err := fmt.Fprintln(p.writer, RenderBox(title, content)); err != nil {
			return nil, fmt.Errorf("failed to write price box: %w", err)
		}

		choice, err := p.promptChoice(ctx, "Choice", valid)
		if err != nil {
			return nil, err
		}

		switch choice {
		case "a":
			estimates = append(estimates, model.PriceEstimate{Product: req.Product, Source: model.PriceAuto, Price: req.Suggested})
		case "e":
			price, err := p.promptFloat(ctx, fmt.Sprintf("Price for %s ($)", req.Product), validPrice)
			if err != nil {
				return nil, err
			}
			estimates = append(estimates, model.PriceEstimate{Product: req.Product, Source: model.PriceManual, Price: pricing.Round(price)})
		default:
			estimates = append(estimates, model.PriceEstimate{Product: req.Product, Source: model.PriceSkipped})
		}
	}

	return estimates, nil
}

// ResolveUnassigned lists the campaigns that have spend but no grouping and
// lets the operator move selections of them into a product, until the
// operator is done or nothing is left.
func (p *Prompter) ResolveUnassigned(ctx context.Context, session engine.AssignmentSession) error {
	products := session.Products()
	if len(products) == 0 {
		p.println(FormatWarning("No products are registered; unassigned campaigns stay as they are."))
		return nil
	}

	for {
		pending := session.Pending()
		if remaining(pending) == 0 {
			p.println(FormatSuccess("Every unassigned campaign has a grouping."))
			return nil
		}

		if _, err := fmt.Fprintln(p.writer, RenderBox(
			fmt.Sprintf("Unassigned Campaigns (%d left)", remaining(pending)),
			formatPending(pending))); err != nil {
			return fmt.Errorf("failed to write unassigned box: %w", err)
		}

		line, err := p.promptLine(ctx, "Select campaigns (numbers, ranges, ids, #n, id:X or 'all'; empty to finish)")
		if err != nil {
			return err
		}
		if line == "" || strings.EqualFold(line, "done") {
			return nil
		}

		indices, err := parseSelection(line, pending)
		if err != nil {
			p.println(FormatError(err.Error()))
			continue
		}

		product, err := p.promptProduct(ctx, products)
		if err != nil {
			return err
		}

		result, err := session.Assign(product, indices)
		switch {
		case errors.Is(err, common.ErrUnknownProduct), errors.Is(err, common.ErrMissingConfig), errors.Is(err, common.ErrNoSelection):
			p.println(FormatError(err.Error()))
			continue
		case err != nil:
			return err
		}

		p.println(FormatSuccess(fmt.Sprintf("Assigned %d campaign(s) to %s", result.Assigned, product)))
		if result.NotAssigned > 0 {
			p.println(FormatWarning(fmt.Sprintf("%d campaign(s) could not be assigned: %s has no grouping for their tier", result.NotAssigned, product)))
		}
	}
}

func (p *Prompter) promptProduct(ctx context.Context, products []string) (string, error) {
	var b strings.Builder
	for i, product := range products {
		fmt.Fprintf(&b, "  [%d] %s\n", i+1, product)
	}
	if _, err := fmt.Fprint(p.writer, b.String()); err != nil {
		return "", fmt.Errorf("failed to write product list: %w", err)
	}

	for {
		line, err := p.promptLine(ctx, "Product (number or name)")
		if err != nil {
			return "", err
		}
		if product, ok := matchProduct(line, products); ok {
			return product, nil
		}
		p.println(FormatError("Unknown product. Please try again."))
	}
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		line, err := p.promptLine(ctx, prompt)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(line)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		p.println(FormatError("Invalid choice. Please try again."))
	}
}

func (p *Prompter) promptFloat(ctx context.Context, prompt string, validate func(float64) error) (float64, error) {
	for {
		line, err := p.promptLine(ctx, prompt)
		if err != nil {
			return 0, err
		}

		v, ok := model.Text(line).Float()
		if !ok {
			p.println(FormatError("Please enter a number."))
			continue
		}
		if err := validate(v); err != nil {
			p.println(FormatError(err.Error()))
			continue
		}
		return v, nil
	}
}

func (p *Prompter) promptLine(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return p.reader.ReadLine(ctx)
}

func (p *Prompter) println(msg string) {
	if _, err := fmt.Fprintln(p.writer, msg); err != nil {
		slog.Warn("Failed to write message", "error", err)
	}
}

func validThreshold(v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("threshold must be between 0 and 100")
	}
	return nil
}

func validPrice(v float64) error {
	if v <= 0 {
		return fmt.Errorf("price must be greater than zero")
	}
	return nil
}

func remaining(pending []*model.UnassignedCampaign) int {
	n := 0
	for _, u := range pending {
		if !u.Assigned {
			n++
		}
	}
	return n
}

func formatPending(pending []*model.UnassignedCampaign) string {
	var b strings.Builder
	for i, u := range pending {
		line := fmt.Sprintf("[%d] %s  %s  %s", i+1, u.CampaignID, u.CampaignName, SubtleStyle.Render(u.Profitability))
		if u.Assigned {
			line = SubtleStyle.Render(fmt.Sprintf("[%d] %s  %s  → %s", i+1, u.CampaignID, u.CampaignName, u.AssignedGrouping))
		}
		b.WriteString(line)
		if i < len(pending)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// parseSelection turns "1, 3-4, C100" or "all" into indices into pending.
// Bare numbers and ranges are 1-based list positions and any other token is a
// campaign id. "#n" forces a list position and "id:X" forces a campaign id; a
// bare token that names one row by id and another by position is rejected.
// "all" selects every campaign that is still unassigned.
func parseSelection(input string, pending []*model.UnassignedCampaign) ([]int, error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "all") {
		var out []int
		for i, u := range pending {
			if !u.Assigned {
				out = append(out, i)
			}
		}
		if len(out) == 0 {
			return nil, common.ErrNoSelection
		}
		return out, nil
	}

	byID := make(map[string]int, len(pending))
	for i, u := range pending {
		if _, ok := byID[u.CampaignID]; !ok {
			byID[u.CampaignID] = i
		}
	}

	seen := make(map[int]bool)
	var out []int
	add := func(indices ...int) {
		for _, i := range indices {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}

	tokens := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "#"):
			indices, err := listPositions(strings.TrimPrefix(tok, "#"), len(pending))
			if err != nil {
				return nil, err
			}
			add(indices...)
		case len(tok) > 3 && strings.EqualFold(tok[:3], "id:"):
			i, ok := byID[tok[3:]]
			if !ok {
				return nil, fmt.Errorf("%w: no campaign with id %q", common.ErrNoSelection, tok[3:])
			}
			add(i)
		default:
			i, isID := byID[tok]
			indices, posErr := listPositions(tok, len(pending))
			switch {
			case isID && posErr == nil && (len(indices) != 1 || indices[0] != i):
				return nil, fmt.Errorf("%w: %q is both a campaign id and a list number; use #%s or id:%s",
					common.ErrNoSelection, tok, tok, tok)
			case isID:
				add(i)
			case posErr != nil:
				return nil, posErr
			default:
				add(indices...)
			}
		}
	}

	if len(out) == 0 {
		return nil, common.ErrNoSelection
	}
	return out, nil
}

// listPositions reads a 1-based list number or range into 0-based indices.
func listPositions(tok string, size int) ([]int, error) {
	if lo, hi, ok := parseRange(tok); ok {
		if lo < 1 || hi > size || lo > hi {
			return nil, fmt.Errorf("%w: range %s is outside 1-%d", common.ErrNoSelection, tok, size)
		}
		indices := make([]int, 0, hi-lo+1)
		for n := lo; n <= hi; n++ {
			indices = append(indices, n-1)
		}
		return indices, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a list number or campaign id", common.ErrNoSelection, tok)
	}
	if n < 1 || n > size {
		return nil, fmt.Errorf("%w: %d is outside 1-%d", common.ErrNoSelection, n, size)
	}
	return []int{n - 1}, nil
}

func parseRange(tok string) (int, int, bool) {
	lo, hi, found := strings.Cut(tok, "-")
	if !found {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(lo)
	b, errB := strconv.Atoi(hi)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}

// matchProduct resolves a 1-based list number or a case-insensitive product name.
func matchProduct(input string, products []string) (string, bool) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(products) {
			return products[n-1], true
		}
		return "", false
	}
	for _, product := range products {
		if strings.EqualFold(product, input) {
			return product, true
		}
	}
	return "", false
}
