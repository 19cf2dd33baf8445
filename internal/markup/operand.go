package markup

import "fmt"

// baseIndexSentinel is how documents spell "the original base amount".
const baseIndexSentinel = -1

// StepRef points either at the original base amount or at an earlier step result.
// The zero value is BaseAmount.
type StepRef struct {
	index  int
	isStep bool
}

// BaseAmount refers to the amount the sequence was evaluated against.
var BaseAmount = StepRef{}

// StepIndex refers to the result of the step at position i.
func StepIndex(i int) StepRef {
	return StepRef{index: i, isStep: true}
}

// IsBase reports whether r refers to the base amount.
func (r StepRef) IsBase() bool { return !r.isStep }

// Index returns the referenced step position; ok is false for BaseAmount.
func (r StepRef) Index() (int, bool) { return r.index, r.isStep }

// Wire returns the document encoding: -1 for the base amount, else the step index.
func (r StepRef) Wire() int {
	if !r.isStep {
		return baseIndexSentinel
	}
	return r.index
}

func (r StepRef) String() string {
	if !r.isStep {
		return "base amount"
	}
	return fmt.Sprintf("step %d", r.index+1)
}

// StepRefFromWire decodes the -1 sentinel convention.
func StepRefFromWire(n int) (StepRef, error) {
	switch {
	case n == baseIndexSentinel:
		return BaseAmount, nil
	case n >= 0:
		return StepIndex(n), nil
	default:
		return StepRef{}, fmt.Errorf("invalid step index %d", n)
	}
}

// OperandKind tells where an operand value comes from.
type OperandKind string

const (
	OperandMarkup  OperandKind = "markup"
	OperandStep    OperandKind = "step"
	OperandLiteral OperandKind = "number"
)

// Operand is a tagged union: only the field matching Kind is meaningful.
type Operand struct {
	Kind  OperandKind
	Key   string
	Ref   StepRef
	Value float64
}

// MarkupOperand reads the percentage stored under key.
func MarkupOperand(key string) Operand { return Operand{Kind: OperandMarkup, Key: key} }

// StepOperand reads the base amount or an earlier step result.
func StepOperand(ref StepRef) Operand { return Operand{Kind: OperandStep, Ref: ref} }

// LiteralOperand is a fixed number.
func LiteralOperand(value float64) Operand { return Operand{Kind: OperandLiteral, Value: value} }

// PercentageSet maps markup parameter keys to percentage values.
type PercentageSet map[string]float64

// Lookup returns the percentage for key and whether it is present.
func (s PercentageSet) Lookup(key string) (float64, bool) {
	v, ok := s[key]
	return v, ok
}

// ResolveOperand returns the numeric value of op. Unknown markup keys resolve to 0.
func ResolveOperand(op Operand, stepResults []float64, baseAmount float64, markups PercentageSet) (float64, error) {
	switch op.Kind {
	case OperandMarkup:
		v, _ := markups.Lookup(op.Key)
		return v, nil
	case OperandStep:
		return resolveRef(op.Ref, stepResults, baseAmount)
	case OperandLiteral:
		return op.Value, nil
	default:
		return 0, fmt.Errorf("unknown operand kind %q", op.Kind)
	}
}

func resolveRef(ref StepRef, stepResults []float64, baseAmount float64) (float64, error) {
	i, ok := ref.Index()
	if !ok {
		return baseAmount, nil
	}
	if i >= len(stepResults) {
		return 0, &IndexError{Index: i, Available: len(stepResults)}
	}
	return stepResults[i], nil
}
