package markup

import (
	"errors"
	"fmt"
)

// Step seeds an accumulator from Base and applies Operations left to right.
type Step struct {
	Name       string
	Base       StepRef
	Operations []Operation
}

// EvaluateStep runs one step. stepResults holds the results of the steps before it.
func EvaluateStep(step Step, stepResults []float64, baseAmount float64, markups PercentageSet) (float64, error) {
	acc, err := resolveRef(step.Base, stepResults, baseAmount)
	if err != nil {
		return 0, stepError(step, len(stepResults), -1, err)
	}
	for j, op := range step.Operations {
		if !op.Action.valid() {
			return 0, stepError(step, len(stepResults), j, fmt.Errorf("unknown action %q", op.Action))
		}
		v, err := ResolveOperand(op.Operand, stepResults, baseAmount, markups)
		if err != nil {
			return 0, stepError(step, len(stepResults), j, err)
		}
		acc = ApplyOperation(acc, op, v)
	}
	return acc, nil
}

func stepError(step Step, position, operation int, err error) error {
	reason := err.Error()
	var ie *IndexError
	if errors.As(err, &ie) {
		reason = "references " + StepIndex(ie.Index).String() + ", which has not been computed yet"
	}
	return &ConfigurationError{
		Step:      position,
		StepName:  step.Name,
		Operation: operation,
		Reason:    reason,
		Err:       err,
	}
}

// validate checks the step as if it were declared at position.
func (s Step) validate(position int) error {
	if i, ok := s.Base.Index(); ok && i >= position {
		return &ConfigurationError{
			Step:      position,
			StepName:  s.Name,
			Operation: -1,
			Reason:    "starts from " + s.Base.String() + ", which is not an earlier step",
		}
	}
	if len(s.Operations) == 0 {
		return &ConfigurationError{
			Step:      position,
			StepName:  s.Name,
			Operation: -1,
			Reason:    "has no operations",
		}
	}
	for j, op := range s.Operations {
		if err := op.validate(position); err != nil {
			return &ConfigurationError{
				Step:      position,
				StepName:  s.Name,
				Operation: j,
				Reason:    err.Error(),
			}
		}
	}
	return nil
}
