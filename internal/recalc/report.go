package recalc

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/store"
)

// Warning is a non-fatal problem met while pricing a tender.
type Warning struct {
	ItemID   int64           `json:"item_id,omitempty"`
	Category markup.Category `json:"category,omitempty"`
	Message  string          `json:"message"`
}

// CategorySummary rolls up the items of one category.
type CategorySummary struct {
	Category        markup.Category `json:"category"`
	Items           int             `json:"items"`
	DirectTotal     float64         `json:"direct_total"`
	CommercialTotal float64         `json:"commercial_total"`
	Coefficient     float64         `json:"coefficient"`
}

// Report describes one recalculation of a tender.
type Report struct {
	RunID          string            `json:"run_id"`
	TenderID       int64             `json:"tender_id"`
	TacticID       int64             `json:"tactic_id"`
	TacticName     string            `json:"tactic_name"`
	ItemCount      int               `json:"item_count"`
	Categories     []CategorySummary `json:"categories"`
	Warnings       []Warning         `json:"warnings,omitempty"`
	MissingMarkups []string          `json:"missing_markups,omitempty"`
	DryRun         bool              `json:"dry_run,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
}

// Totals returns the direct and commercial totals over every category.
func (r Report) Totals() (direct, commercial float64) {
	d, c := decimal.Zero, decimal.Zero
	for _, s := range r.Categories {
		d = d.Add(decimal.NewFromFloat(s.DirectTotal))
		c = c.Add(decimal.NewFromFloat(s.CommercialTotal))
	}
	return d.InexactFloat64(), c.InexactFloat64()
}

type categoryTotals struct {
	items      int
	direct     decimal.Decimal
	commercial decimal.Decimal
}

func (t *categoryTotals) add(direct, commercial float64) {
	t.items++
	t.direct = t.direct.Add(decFromFloat(direct))
	t.commercial = t.commercial.Add(decFromFloat(commercial))
}

func (t categoryTotals) summary(c markup.Category) CategorySummary {
	s := CategorySummary{
		Category:        c,
		Items:           t.items,
		DirectTotal:     t.direct.Round(2).InexactFloat64(),
		CommercialTotal: t.commercial.Round(2).InexactFloat64(),
	}
	if !t.direct.IsZero() {
		s.Coefficient = t.commercial.DivRound(t.direct, 6).InexactFloat64()
	}
	return s
}

// CommercialCost returns the committed commercial cost of it, if any.
func CommercialCost(it store.BOQItem) (float64, bool) {
	v := it.CommercialWorkCost
	if it.Category.IsMaterial() {
		v = it.CommercialMaterialCost
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Summarize rolls items up per category, in category display order. Items
// without a commercial cost count with 0.
func Summarize(items []store.BOQItem) []CategorySummary {
	totals := make(map[markup.Category]*categoryTotals)
	for _, it := range items {
		if !it.Category.Valid() {
			continue
		}
		t := totals[it.Category]
		if t == nil {
			t = &categoryTotals{}
			totals[it.Category] = t
		}
		commercial, _ := CommercialCost(it)
		t.add(it.DirectCost, commercial)
	}

	var out []CategorySummary
	for _, c := range markup.Categories {
		if t := totals[c]; t != nil {
			out = append(out, t.summary(c))
		}
	}
	return out
}

func decFromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
