package recalc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/tenderhub/internal/logger"
	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/store"
)

// Store is the persistence the driver needs; *store.Store satisfies it.
type Store interface {
	TenderTactic(ctx context.Context, tenderID int64) (markup.Tactic, error)
	PercentageSet(ctx context.Context, tenderID int64) (markup.PercentageSet, error)
	ListItems(ctx context.Context, tenderID int64) ([]store.BOQItem, error)
	CommitCommercialCosts(ctx context.Context, tenderID int64, costs []store.CommercialCost, run store.Run) error
}

// Service applies a tender's tactic to every BOQ item of the tender.
type Service struct {
	store   Store
	workers int
	now     func() time.Time
	newID   func() string
}

func NewService(s Store, workers int) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{store: s, workers: workers, now: time.Now, newID: uuid.NewString}
}

type itemResult struct {
	value     float64
	finite    bool
	evaluated bool
}

// Run recalculates and commits the commercial costs of every item in the tender.
// A configuration error in any category present among the items aborts the run
// before anything is written.
func (s *Service) Run(ctx context.Context, tenderID int64) (Report, error) {
	return s.run(ctx, tenderID, true)
}

// DryRun computes the same report as Run without writing anything.
func (s *Service) DryRun(ctx context.Context, tenderID int64) (Report, error) {
	return s.run(ctx, tenderID, false)
}

func (s *Service) run(ctx context.Context, tenderID int64, commit bool) (Report, error) {
	report := Report{
		RunID:     s.newID(),
		TenderID:  tenderID,
		DryRun:    !commit,
		StartedAt: s.now().UTC(),
	}

	tactic, err := s.store.TenderTactic(ctx, tenderID)
	if err != nil {
		return Report{}, fmt.Errorf("load tactic: %w", err)
	}
	markups, err := s.store.PercentageSet(ctx, tenderID)
	if err != nil {
		return Report{}, fmt.Errorf("load markup percentages: %w", err)
	}
	items, err := s.store.ListItems(ctx, tenderID)
	if err != nil {
		return Report{}, fmt.Errorf("load items: %w", err)
	}
	report.TacticID = tactic.ID
	report.TacticName = tactic.Name
	report.ItemCount = len(items)

	logger.Infof("recalc %s: tender %d, tactic %q, %d items", report.RunID, tenderID, tactic.Name, len(items))

	present := make(map[markup.Category]bool)
	for _, it := range items {
		if !it.Category.Valid() {
			report.Warnings = append(report.Warnings, Warning{ItemID: it.ID, Message: fmt.Sprintf("unknown category %q; item skipped", it.Category)})
			continue
		}
		present[it.Category] = true
	}

	missing := make(map[string]struct{})
	for _, c := range markup.Categories {
		if !present[c] {
			continue
		}
		if err := tactic.ValidateCategory(c); err != nil {
			logger.Errorf("recalc %s: tactic %q: %v", report.RunID, tactic.Name, err)
			return Report{}, err
		}
		for _, key := range tactic.Sequence(c).MarkupKeys() {
			if _, ok := markups.Lookup(key); ok {
				continue
			}
			missing[key] = struct{}{}
			logger.Warnf("recalc %s: %s: markup %q is not set, using 0", report.RunID, c, key)
			report.Warnings = append(report.Warnings, Warning{Category: c, Message: fmt.Sprintf("markup %q is not set; 0 was used", key)})
		}
	}
	for key := range missing {
		report.MissingMarkups = append(report.MissingMarkups, key)
	}
	sort.Strings(report.MissingMarkups)

	results, err := s.evaluate(ctx, tactic, markups, items)
	if err != nil {
		return Report{}, err
	}

	priced := make([]store.BOQItem, 0, len(items))
	costs := make([]store.CommercialCost, 0, len(items))
	for i, it := range items {
		r := results[i]
		if !r.evaluated {
			continue
		}
		value := r.value
		if !r.finite {
			logger.Warnf("recalc %s: item %d evaluated to %v, storing 0", report.RunID, it.ID, value)
			report.Warnings = append(report.Warnings, Warning{ItemID: it.ID, Category: it.Category, Message: fmt.Sprintf("result %v is not a finite number; 0 was stored", value)})
			value = 0
		}

		cost := store.CommercialCost{ItemID: it.ID}
		if it.Category.IsMaterial() {
			cost.MaterialCost = &value
		} else {
			cost.WorkCost = &value
		}
		costs = append(costs, cost)

		it.CommercialMaterialCost, it.CommercialWorkCost = cost.MaterialCost, cost.WorkCost
		priced = append(priced, it)
	}
	report.Categories = Summarize(priced)
	report.FinishedAt = s.now().UTC()

	if commit {
		raw, err := json.Marshal(report)
		if err != nil {
			return Report{}, fmt.Errorf("encode report: %w", err)
		}
		run := store.Run{
			ID:           report.RunID,
			TenderID:     tenderID,
			ItemCount:    report.ItemCount,
			WarningCount: len(report.Warnings),
			Report:       raw,
			CreatedAt:    report.FinishedAt,
		}
		if err := s.store.CommitCommercialCosts(ctx, tenderID, costs, run); err != nil {
			return Report{}, fmt.Errorf("commit commercial costs: %w", err)
		}
	}

	logger.Infof("recalc %s: done, %d items priced, %d warnings", report.RunID, len(costs), len(report.Warnings))
	return report, nil
}

// evaluate prices every item concurrently. Results keep the order of items.
func (s *Service) evaluate(ctx context.Context, tactic markup.Tactic, markups markup.PercentageSet, items []store.BOQItem) ([]itemResult, error) {
	results := make([]itemResult, len(items))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for i, it := range items {
		if !it.Category.Valid() {
			continue
		}
		i, it := i, it
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := tactic.Evaluate(it.Category, it.DirectCost, markups)
			if err != nil {
				return fmt.Errorf("item %d: %w", it.ID, err)
			}
			v := res.FinalValue
			results[i] = itemResult{
				value:     v,
				finite:    !math.IsNaN(v) && !math.IsInf(v, 0),
				evaluated: true,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
