package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Simplici0/tenderhub/internal/markup"
)

// MarkupParameter is a named percentage with its global default.
type MarkupParameter struct {
	Key          string  `json:"key"`
	Label        string  `json:"label"`
	DefaultValue float64 `json:"default_value"`
	SortOrder    int     `json:"sort_order"`
}

func (s *Store) ListMarkupParameters(ctx context.Context) ([]MarkupParameter, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT key, label, default_value, sort_order
		FROM markup_parameters
		ORDER BY sort_order, key
	`)
	if err != nil {
		return nil, fmt.Errorf("query markup parameters: %w", err)
	}
	defer rows.Close()

	var params []MarkupParameter
	for rows.Next() {
		var p MarkupParameter
		if err := rows.Scan(&p.Key, &p.Label, &p.DefaultValue, &p.SortOrder); err != nil {
			return nil, fmt.Errorf("scan markup parameter: %w", err)
		}
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markup parameters: %w", err)
	}
	return params, nil
}

// UpsertMarkupParameter inserts p or updates the row with the same key.
// It reports whether a new row was inserted.
func (s *Store) UpsertMarkupParameter(ctx context.Context, p MarkupParameter) (bool, error) {
	p.Key = strings.TrimSpace(p.Key)
	if p.Key == "" {
		return false, invalid("markup parameter key is required")
	}
	if strings.TrimSpace(p.Label) == "" {
		p.Label = p.Key
	}
	if err := markup.ValidatePercentage(p.Key, p.DefaultValue); err != nil {
		return false, invalid("%v", err)
	}

	var exists bool
	if err := s.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM markup_parameters WHERE key = ?)`, p.Key).Scan(&exists); err != nil {
		return false, fmt.Errorf("check markup parameter %q: %w", p.Key, err)
	}

	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO markup_parameters (key, label, default_value, sort_order)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			label = excluded.label,
			default_value = excluded.default_value,
			sort_order = excluded.sort_order
	`, p.Key, p.Label, p.DefaultValue, p.SortOrder); err != nil {
		return false, fmt.Errorf("upsert markup parameter %q: %w", p.Key, err)
	}
	return !exists, nil
}

// MarkupLabels maps parameter keys to their display labels.
func (s *Store) MarkupLabels(ctx context.Context) (map[string]string, error) {
	params, err := s.ListMarkupParameters(ctx)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(params))
	for _, p := range params {
		labels[p.Key] = p.Label
	}
	return labels, nil
}

// SetTenderPercentages stores per-tender overrides of the global defaults.
// Every key must name an existing markup parameter.
func (s *Store) SetTenderPercentages(ctx context.Context, tenderID int64, values map[string]float64) error {
	for key, v := range values {
		if err := markup.ValidatePercentage(key, v); err != nil {
			return invalid("%v", err)
		}
	}

	return s.InTx(ctx, func(tx *Store) error {
		if _, err := tx.GetTender(ctx, tenderID); err != nil {
			return err
		}
		for key, v := range values {
			var known bool
			if err := tx.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM markup_parameters WHERE key = ?)`, key).Scan(&known); err != nil {
				return fmt.Errorf("check markup parameter %q: %w", key, err)
			}
			if !known {
				return invalid("unknown markup parameter %q", key)
			}
			if _, err := tx.q.ExecContext(ctx, `
				INSERT INTO tender_markup_percentages (tender_id, key, value)
				VALUES (?, ?, ?)
				ON CONFLICT(tender_id, key) DO UPDATE SET value = excluded.value
			`, tenderID, key, v); err != nil {
				return fmt.Errorf("store tender percentage %q: %w", key, err)
			}
		}
		return nil
	})
}

// DefaultPercentageSet holds the global default of every markup parameter.
func (s *Store) DefaultPercentageSet(ctx context.Context) (markup.PercentageSet, error) {
	params, err := s.ListMarkupParameters(ctx)
	if err != nil {
		return nil, err
	}
	set := make(markup.PercentageSet, len(params))
	for _, p := range params {
		set[p.Key] = p.DefaultValue
	}
	return set, nil
}

// PercentageSet returns the global defaults overlaid with the tender's overrides.
func (s *Store) PercentageSet(ctx context.Context, tenderID int64) (markup.PercentageSet, error) {
	if _, err := s.GetTender(ctx, tenderID); err != nil {
		return nil, err
	}
	set, err := s.DefaultPercentageSet(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `SELECT key, value FROM tender_markup_percentages WHERE tender_id = ?`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("query tender percentages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			v   float64
		)
		if err := rows.Scan(&key, &v); err != nil {
			return nil, fmt.Errorf("scan tender percentage: %w", err)
		}
		set[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tender percentages: %w", err)
	}
	return set, nil
}
