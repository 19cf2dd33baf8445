package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/tenderhub/internal/markup"
)

type Tender struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	TacticID  int64     `json:"tactic_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) CreateTender(ctx context.Context, title string) (Tender, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Tender{}, invalid("tender title is required")
	}

	now := s.now()
	res, err := s.q.ExecContext(ctx, `INSERT INTO tenders (title, created_at) VALUES (?, ?)`, title, now.UnixMilli())
	if err != nil {
		return Tender{}, fmt.Errorf("insert tender: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Tender{}, fmt.Errorf("tender id: %w", err)
	}
	return Tender{ID: id, Title: title, CreatedAt: time.UnixMilli(now.UnixMilli()).UTC()}, nil
}

func (s *Store) GetTender(ctx context.Context, id int64) (Tender, error) {
	var (
		t        Tender
		tacticID sql.NullInt64
		created  int64
	)
	err := s.q.QueryRowContext(ctx, `SELECT id, title, tactic_id, created_at FROM tenders WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &tacticID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Tender{}, fmt.Errorf("tender %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Tender{}, fmt.Errorf("query tender %d: %w", id, err)
	}
	if tacticID.Valid {
		t.TacticID = tacticID.Int64
	}
	t.CreatedAt = time.UnixMilli(created).UTC()
	return t, nil
}

// SetTenderTactic assigns an existing tactic to the tender.
func (s *Store) SetTenderTactic(ctx context.Context, tenderID, tacticID int64) error {
	return s.InTx(ctx, func(tx *Store) error {
		var exists bool
		if err := tx.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM markup_tactics WHERE id = ?)`, tacticID).Scan(&exists); err != nil {
			return fmt.Errorf("check tactic %d: %w", tacticID, err)
		}
		if !exists {
			return fmt.Errorf("tactic %d: %w", tacticID, ErrNotFound)
		}

		res, err := tx.q.ExecContext(ctx, `UPDATE tenders SET tactic_id = ? WHERE id = ?`, tacticID, tenderID)
		if err != nil {
			return fmt.Errorf("assign tactic to tender %d: %w", tenderID, err)
		}
		return expectOneRow(res, fmt.Sprintf("tender %d", tenderID))
	})
}

// TenderTactic resolves the tactic used to price a tender: its own assignment,
// otherwise the global tactic.
func (s *Store) TenderTactic(ctx context.Context, tenderID int64) (markup.Tactic, error) {
	t, err := s.GetTender(ctx, tenderID)
	if err != nil {
		return markup.Tactic{}, err
	}
	if t.TacticID != 0 {
		return s.GetTactic(ctx, t.TacticID)
	}

	tactic, err := s.GlobalTactic(ctx)
	if IsNotFound(err) {
		return markup.Tactic{}, fmt.Errorf("tender %d: %w", tenderID, ErrNoTactic)
	}
	return tactic, err
}
