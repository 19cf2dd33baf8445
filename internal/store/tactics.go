package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/tenderhub/internal/markup"
)

// TacticSummary is a tactic row without its sequences.
type TacticSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsGlobal  bool      `json:"is_global"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveTactic validates t and inserts it (ID 0) or replaces the stored row.
func (s *Store) SaveTactic(ctx context.Context, t markup.Tactic) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	doc, err := markup.EncodeTactic(t)
	if err != nil {
		return 0, fmt.Errorf("encode tactic: %w", err)
	}
	now := s.now().UnixMilli()

	if t.ID == 0 {
		res, err := s.q.ExecContext(ctx, `
			INSERT INTO markup_tactics (name, is_global, document, updated_at)
			VALUES (?, ?, ?, ?)
		`, t.Name, t.IsGlobal, string(doc), now)
		if err != nil {
			return 0, fmt.Errorf("insert tactic: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("tactic id: %w", err)
		}
		return id, nil
	}

	res, err := s.q.ExecContext(ctx, `
		UPDATE markup_tactics
		SET name = ?, is_global = ?, document = ?, updated_at = ?
		WHERE id = ?
	`, t.Name, t.IsGlobal, string(doc), now, t.ID)
	if err != nil {
		return 0, fmt.Errorf("update tactic %d: %w", t.ID, err)
	}
	if err := expectOneRow(res, fmt.Sprintf("update tactic %d", t.ID)); err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (s *Store) GetTactic(ctx context.Context, id int64) (markup.Tactic, error) {
	return s.scanTactic(s.q.QueryRowContext(ctx, `
		SELECT id, name, is_global, document FROM markup_tactics WHERE id = ?
	`, id), fmt.Sprintf("tactic %d", id))
}

// GlobalTactic returns the most recently created global tactic.
func (s *Store) GlobalTactic(ctx context.Context) (markup.Tactic, error) {
	return s.scanTactic(s.q.QueryRowContext(ctx, `
		SELECT id, name, is_global, document FROM markup_tactics
		WHERE is_global = 1
		ORDER BY id DESC
		LIMIT 1
	`), "global tactic")
}

func (s *Store) scanTactic(row *sql.Row, what string) (markup.Tactic, error) {
	var (
		id       int64
		name     string
		isGlobal bool
		doc      string
	)
	if err := row.Scan(&id, &name, &isGlobal, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return markup.Tactic{}, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return markup.Tactic{}, fmt.Errorf("query %s: %w", what, err)
	}

	t, err := markup.DecodeTactic([]byte(doc))
	if err != nil {
		return markup.Tactic{}, fmt.Errorf("decode %s: %w", what, err)
	}
	t.ID = id
	t.Name = name
	t.IsGlobal = isGlobal
	return t, nil
}

func (s *Store) ListTactics(ctx context.Context) ([]TacticSummary, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, is_global, updated_at
		FROM markup_tactics
		ORDER BY is_global DESC, name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query tactics: %w", err)
	}
	defer rows.Close()

	var out []TacticSummary
	for rows.Next() {
		var (
			ts      TacticSummary
			updated int64
		)
		if err := rows.Scan(&ts.ID, &ts.Name, &ts.IsGlobal, &updated); err != nil {
			return nil, fmt.Errorf("scan tactic: %w", err)
		}
		ts.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tactics: %w", err)
	}
	return out, nil
}
