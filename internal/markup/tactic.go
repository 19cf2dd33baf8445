package markup

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxOperationsPerStep is the authoring limit; the evaluator itself accepts any number.
const MaxOperationsPerStep = 5

// MaxPercentage is the largest value a markup parameter may hold.
var MaxPercentage = decimal.RequireFromString("999.99")

// Tactic is the persisted bundle of per-category sequences and default base costs.
type Tactic struct {
	ID        int64
	Name      string
	IsGlobal  bool
	Sequences map[Category]Sequence
	BaseCosts map[Category]float64
}

// NewTactic returns a tactic with empty sequences and zero base costs for every category.
func NewTactic(name string) Tactic {
	t := Tactic{
		Name:      name,
		Sequences: make(map[Category]Sequence, len(Categories)),
		BaseCosts: make(map[Category]float64, len(Categories)),
	}
	for _, c := range Categories {
		t.Sequences[c] = Sequence{}
		t.BaseCosts[c] = 0
	}
	return t
}

// Sequence returns the sequence for c; a missing entry is an empty sequence.
func (t Tactic) Sequence(c Category) Sequence {
	return t.Sequences[c]
}

// Validate is the authoring-boundary check run before a tactic is saved.
// The first offending step is reported as a *ConfigurationError.
func (t Tactic) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("tactic name is required")
	}
	for c := range t.Sequences {
		if !c.Valid() {
			return fmt.Errorf("unknown category %q", c)
		}
	}
	for c, v := range t.BaseCosts {
		if !c.Valid() {
			return fmt.Errorf("unknown category %q", c)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: base cost must be a finite number", c)
		}
	}
	for _, c := range Categories {
		seq := t.Sequences[c]
		if err := seq.Validate(); err != nil {
			return withCategory(err, c)
		}
		for i, step := range seq {
			if len(step.Operations) > MaxOperationsPerStep {
				return &ConfigurationError{
					Category:  c,
					Step:      i,
					StepName:  step.Name,
					Operation: MaxOperationsPerStep,
					Reason:    fmt.Sprintf("at most %d operations are allowed per step", MaxOperationsPerStep),
				}
			}
		}
	}
	return nil
}

// ValidateCategory checks only the sequence of c, without the authoring limits.
func (t Tactic) ValidateCategory(c Category) error {
	if err := t.Sequence(c).Validate(); err != nil {
		return withCategory(err, c)
	}
	return nil
}

// Evaluate runs the sequence of category c against baseAmount.
func (t Tactic) Evaluate(c Category, baseAmount float64, markups PercentageSet) (Result, error) {
	res, err := EvaluateSequence(t.Sequence(c), baseAmount, markups)
	if err != nil {
		return Result{}, withCategory(err, c)
	}
	return res, nil
}

// Preview evaluates category c against its configured default base cost.
func (t Tactic) Preview(c Category, markups PercentageSet) (Result, error) {
	return t.Evaluate(c, t.BaseCosts[c], markups)
}

// ValidatePercentage enforces the 0 to 999.99 range with at most two decimals.
func ValidatePercentage(key string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", key)
	}
	d := decimal.NewFromFloat(value)
	if d.IsNegative() || d.GreaterThan(MaxPercentage) {
		return fmt.Errorf("%s must be between 0 and %s", key, MaxPercentage.StringFixed(2))
	}
	if !d.Equal(d.Round(2)) {
		return fmt.Errorf("%s allows at most two decimal places", key)
	}
	return nil
}
