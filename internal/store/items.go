package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/Simplici0/tenderhub/internal/markup"
)

// BOQItem is one bill-of-quantities line. Commercial costs stay nil until a
// recalculation writes them.
type BOQItem struct {
	ID                     int64           `json:"id"`
	TenderID               int64           `json:"tender_id"`
	Category               markup.Category `json:"category"`
	Description            string          `json:"description"`
	DirectCost             float64         `json:"direct_cost"`
	CommercialMaterialCost *float64        `json:"commercial_material_cost,omitempty"`
	CommercialWorkCost     *float64        `json:"commercial_work_cost,omitempty"`
}

// CommercialCost is the recalculated value for one item; exactly one side is set.
type CommercialCost struct {
	ItemID       int64
	MaterialCost *float64
	WorkCost     *float64
}

// AddItems appends items to the tender and returns them with their new IDs.
func (s *Store) AddItems(ctx context.Context, tenderID int64, items []BOQItem) ([]BOQItem, error) {
	for i, it := range items {
		if !it.Category.Valid() {
			return nil, invalid("item %d: unknown category %q", i, it.Category)
		}
		if math.IsNaN(it.DirectCost) || math.IsInf(it.DirectCost, 0) {
			return nil, invalid("item %d: direct cost must be a finite number", i)
		}
	}

	out := make([]BOQItem, 0, len(items))
	err := s.InTx(ctx, func(tx *Store) error {
		if _, err := tx.GetTender(ctx, tenderID); err != nil {
			return err
		}
		for _, it := range items {
			res, err := tx.q.ExecContext(ctx, `
				INSERT INTO boq_items (tender_id, category, description, direct_cost)
				VALUES (?, ?, ?, ?)
			`, tenderID, string(it.Category), it.Description, it.DirectCost)
			if err != nil {
				return fmt.Errorf("insert boq item: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("boq item id: %w", err)
			}
			out = append(out, BOQItem{
				ID:          id,
				TenderID:    tenderID,
				Category:    it.Category,
				Description: it.Description,
				DirectCost:  it.DirectCost,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListItems(ctx context.Context, tenderID int64) ([]BOQItem, error) {
	if _, err := s.GetTender(ctx, tenderID); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, tender_id, category, description, direct_cost, commercial_material_cost, commercial_work_cost
		FROM boq_items
		WHERE tender_id = ?
		ORDER BY id
	`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("query boq items: %w", err)
	}
	defer rows.Close()

	var items []BOQItem
	for rows.Next() {
		var (
			it       BOQItem
			category string
			mat      sql.NullFloat64
			work     sql.NullFloat64
		)
		if err := rows.Scan(&it.ID, &it.TenderID, &category, &it.Description, &it.DirectCost, &mat, &work); err != nil {
			return nil, fmt.Errorf("scan boq item: %w", err)
		}
		it.Category = markup.Category(category)
		if mat.Valid {
			it.CommercialMaterialCost = &mat.Float64
		}
		if work.Valid {
			it.CommercialWorkCost = &work.Float64
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boq items: %w", err)
	}
	return items, nil
}

// CommitCommercialCosts writes every cost and records run in one transaction.
// Nothing is written if any item is missing from the tender.
func (s *Store) CommitCommercialCosts(ctx context.Context, tenderID int64, costs []CommercialCost, run Run) error {
	return s.InTx(ctx, func(tx *Store) error {
		for _, c := range costs {
			res, err := tx.q.ExecContext(ctx, `
				UPDATE boq_items
				SET commercial_material_cost = ?, commercial_work_cost = ?
				WHERE id = ? AND tender_id = ?
			`, nullable(c.MaterialCost), nullable(c.WorkCost), c.ItemID, tenderID)
			if err != nil {
				return fmt.Errorf("update boq item %d: %w", c.ItemID, err)
			}
			if err := expectOneRow(res, fmt.Sprintf("boq item %d", c.ItemID)); err != nil {
				return err
			}
		}
		return tx.RecordRun(ctx, run)
	})
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
