package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/portfolio-optimizer/internal/engine"
	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// RunInfo describes where a run read from and wrote to.
type RunInfo struct {
	Source string
	Output string
}

// RunRecord is one stored run.
type RunRecord struct {
	StartedAt   time.Time
	ID          string
	Source      string
	Output      string
	Duration    time.Duration
	MovedToGood int
	MovedToBad  int
	NoAction    int
	Unassigned  int
	Assigned    int
}

// SaveRun stores a finished run with its decisions, thresholds, prices and
// manual assignments in one transaction.
func (s *SQLiteAudit) SaveRun(ctx context.Context, result *engine.RunResult, info RunInfo) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateResult(result); err != nil {
		return err
	}

	rc := result.Context
	counts := result.Summary.Counts

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, output, started_at, duration_ms,
			moved_to_good, moved_to_bad, no_action, unassigned, assigned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.ID, info.Source, info.Output, rc.StartedAt.UTC(), result.Duration.Milliseconds(),
		counts[model.OutcomeMovedToGood], counts[model.OutcomeMovedToBad],
		counts[model.OutcomeNoAction], counts[model.OutcomeUnassigned],
		result.Summary.Assigned,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if err := saveDecisions(ctx, tx, rc.ID, rc.Decisions()); err != nil {
		return err
	}
	if err := saveThresholds(ctx, tx, rc.ID, rc.Thresholds); err != nil {
		return err
	}
	if err := savePrices(ctx, tx, rc.ID, rc.Prices.Estimates()); err != nil {
		return err
	}
	if err := saveAssignments(ctx, tx, rc.ID, rc.Unassigned()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	slog.Info("Saved run audit", "run_id", rc.ID, "decisions", len(rc.Decisions()))
	return nil
}

func saveDecisions(ctx context.Context, tx *sql.Tx, runID string, decisions []model.DecisionRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions (run_id, campaign_id, sheet, row_index, outcome, product,
			from_grouping, to_grouping, profitability, threshold, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range decisions {
		if _, err := stmt.ExecContext(ctx, runID, d.CampaignID, d.Sheet, d.RowIndex, string(d.Outcome),
			d.Product, d.FromGrouping, d.ToGrouping, d.Profitability, d.Threshold, d.Reason); err != nil {
			return fmt.Errorf("failed to save decision for %s: %w", d.CampaignID, err)
		}
	}
	return nil
}

func saveThresholds(ctx context.Context, tx *sql.Tx, runID string, thresholds map[string]float64) error {
	products := make([]string, 0, len(thresholds))
	for p := range thresholds {
		products = append(products, p)
	}
	sort.Strings(products)

	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO thresholds (run_id, product, threshold) VALUES (?, ?, ?)`,
			runID, p, thresholds[p]); err != nil {
			return fmt.Errorf("failed to save threshold for %s: %w", p, err)
		}
	}
	return nil
}

func savePrices(ctx context.Context, tx *sql.Tx, runID string, estimates []model.PriceEstimate) error {
	for _, e := range estimates {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO price_estimates (run_id, product, source, price) VALUES (?, ?, ?, ?)`,
			runID, e.Product, string(e.Source), e.Price); err != nil {
			return fmt.Errorf("failed to save price for %s: %w", e.Product, err)
		}
	}
	return nil
}

func saveAssignments(ctx context.Context, tx *sql.Tx, runID string, unassigned []*model.UnassignedCampaign) error {
	for _, u := range unassigned {
		if !u.Assigned {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (run_id, campaign_id, campaign_name, grouping_name) VALUES (?, ?, ?, ?)`,
			runID, u.CampaignID, u.CampaignName, u.AssignedGrouping); err != nil {
			return fmt.Errorf("failed to save assignment for %s: %w", u.CampaignID, err)
		}
	}
	return nil
}

// GetRuns returns stored runs, newest first.
func (s *SQLiteAudit) GetRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(source, ''), COALESCE(output, ''), started_at, duration_ms,
			moved_to_good, moved_to_bad, no_action, unassigned, assigned
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Source, &r.Output, &r.StartedAt, &durationMS,
			&r.MovedToGood, &r.MovedToBad, &r.NoAction, &r.Unassigned, &r.Assigned); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetDecisions returns the decisions of one run in processing order.
func (s *SQLiteAudit) GetDecisions(ctx context.Context, runID string) ([]model.DecisionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT campaign_id, sheet, row_index, outcome, COALESCE(product, ''),
			COALESCE(from_grouping, ''), COALESCE(to_grouping, ''),
			COALESCE(profitability, ''), COALESCE(threshold, ''), COALESCE(reason, '')
		FROM decisions
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decisions []model.DecisionRecord
	for rows.Next() {
		var d model.DecisionRecord
		var outcome string
		if err := rows.Scan(&d.CampaignID, &d.Sheet, &d.RowIndex, &outcome, &d.Product,
			&d.FromGrouping, &d.ToGrouping, &d.Profitability, &d.Threshold, &d.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.Outcome = model.Outcome(outcome)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// GetPriceEstimates returns the price decisions of one run.
func (s *SQLiteAudit) GetPriceEstimates(ctx context.Context, runID string) ([]model.PriceEstimate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product, source, price FROM price_estimates WHERE run_id = ? ORDER BY product`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price estimates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PriceEstimate
	for rows.Next() {
		var e model.PriceEstimate
		var source string
		if err := rows.Scan(&e.Product, &source, &e.Price); err != nil {
			return nil, fmt.Errorf("failed to scan price estimate: %w", err)
		}
		e.Source = model.PriceSource(source)
		out = append(out, e)
	}
	return out, rows.Err()
}
