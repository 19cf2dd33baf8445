package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Run is the persisted summary of one recalculation.
type Run struct {
	ID           string          `json:"id"`
	TenderID     int64           `json:"tender_id"`
	ItemCount    int             `json:"item_count"`
	WarningCount int             `json:"warning_count"`
	Report       json.RawMessage `json:"report"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return invalid("run id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	report := run.Report
	if len(report) == 0 {
		report = json.RawMessage("{}")
	}

	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO recalculation_runs (id, tender_id, item_count, warning_count, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.TenderID, run.ItemCount, run.WarningCount, string(report), run.CreatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("insert recalculation run: %w", err)
	}
	return nil
}

func (s *Store) LatestRun(ctx context.Context, tenderID int64) (Run, error) {
	var (
		run     Run
		report  string
		created int64
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, tender_id, item_count, warning_count, report_json, created_at
		FROM recalculation_runs
		WHERE tender_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, tenderID).Scan(&run.ID, &run.TenderID, &run.ItemCount, &run.WarningCount, &report, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("recalculation run for tender %d: %w", tenderID, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query latest run: %w", err)
	}
	run.Report = json.RawMessage(report)
	run.CreatedAt = time.UnixMilli(created).UTC()
	return run, nil
}
