package markup

import (
	"errors"
	"sort"
)

// Sequence is the ordered list of steps for one category.
type Sequence []Step

// Result is the outcome of evaluating a sequence against one base amount.
type Result struct {
	StepResults    []float64
	FinalValue     float64
	Coefficient    float64
	MissingMarkups []string
}

// Validate checks that every base and step operand refers to an earlier step and
// that every step has at least one well-formed operation.
func (seq Sequence) Validate() error {
	for i, step := range seq {
		if err := step.validate(i); err != nil {
			return err
		}
	}
	return nil
}

// MarkupKeys returns the sorted set of markup keys the sequence reads.
func (seq Sequence) MarkupKeys() []string {
	seen := make(map[string]struct{})
	for _, step := range seq {
		for _, op := range step.Operations {
			if op.Operand.Kind == OperandMarkup {
				seen[op.Operand.Key] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvaluateSequence evaluates seq in declaration order. A malformed sequence returns a
// *ConfigurationError and no result.
func EvaluateSequence(seq Sequence, baseAmount float64, markups PercentageSet) (Result, error) {
	if err := seq.Validate(); err != nil {
		return Result{}, err
	}

	results := make([]float64, 0, len(seq))
	for _, step := range seq {
		v, err := EvaluateStep(step, results, baseAmount, markups)
		if err != nil {
			return Result{}, err
		}
		results = append(results, v)
	}

	final := baseAmount
	if len(results) > 0 {
		final = results[len(results)-1]
	}
	coefficient := 0.0
	if baseAmount != 0 {
		coefficient = final / baseAmount
	}

	var missing []string
	for _, key := range seq.MarkupKeys() {
		if _, ok := markups.Lookup(key); !ok {
			missing = append(missing, key)
		}
	}

	return Result{
		StepResults:    results,
		FinalValue:     final,
		Coefficient:    coefficient,
		MissingMarkups: missing,
	}, nil
}

// withCategory tags a configuration error with the category it came from.
func withCategory(err error, c Category) error {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		tagged := *ce
		tagged.Category = c
		return &tagged
	}
	return err
}
