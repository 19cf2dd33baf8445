package markup

import "fmt"

// Action is one of the four arithmetic operations a step can chain.
type Action string

const (
	ActionMultiply Action = "multiply"
	ActionDivide   Action = "divide"
	ActionAdd      Action = "add"
	ActionSubtract Action = "subtract"
)

// MultiplyFormat selects how a percentage multiplies the accumulator.
type MultiplyFormat string

const (
	// FormatAddOne multiplies by (1 + p/100): the markup is applied on top.
	FormatAddOne MultiplyFormat = "addOne"
	// FormatDirect multiplies by p/100: the amount is replaced by a share of itself.
	FormatDirect MultiplyFormat = "direct"
)

// Operation is one action applied to the running accumulator of a step.
type Operation struct {
	Action  Action
	Operand Operand
	Format  MultiplyFormat
}

type applyKey struct {
	action  Action
	percent bool
}

type applyFunc func(acc, v float64, format MultiplyFormat) float64

// When the operand is a markup, v is a percentage.
var applyTable = map[applyKey]applyFunc{
	{ActionMultiply, true}: func(acc, p float64, format MultiplyFormat) float64 {
		if format == FormatDirect {
			return acc * (p / 100)
		}
		return acc * (1 + p/100)
	},
	{ActionDivide, true}: func(acc, p float64, _ MultiplyFormat) float64 {
		return acc / (1 + p/100)
	},
	{ActionAdd, true}: func(acc, p float64, _ MultiplyFormat) float64 {
		return acc + acc*(p/100)
	},
	{ActionSubtract, true}: func(acc, p float64, _ MultiplyFormat) float64 {
		return acc - acc*(p/100)
	},
	{ActionMultiply, false}: func(acc, v float64, _ MultiplyFormat) float64 { return acc * v },
	{ActionDivide, false}:   func(acc, v float64, _ MultiplyFormat) float64 { return acc / v },
	{ActionAdd, false}:      func(acc, v float64, _ MultiplyFormat) float64 { return acc + v },
	{ActionSubtract, false}: func(acc, v float64, _ MultiplyFormat) float64 { return acc - v },
}

// ApplyOperation applies op to acc using the already resolved operand value.
// An unknown action leaves acc unchanged; EvaluateStep rejects such operations.
func ApplyOperation(acc float64, op Operation, resolved float64) float64 {
	fn, ok := applyTable[applyKey{action: op.Action, percent: op.Operand.Kind == OperandMarkup}]
	if !ok {
		return acc
	}
	return fn(acc, resolved, op.Format)
}

func (a Action) valid() bool {
	switch a {
	case ActionMultiply, ActionDivide, ActionAdd, ActionSubtract:
		return true
	}
	return false
}

// Symbol is the arithmetic sign used when rendering formulas.
func (a Action) Symbol() string {
	switch a {
	case ActionMultiply:
		return "×"
	case ActionDivide:
		return "÷"
	case ActionAdd:
		return "+"
	case ActionSubtract:
		return "−"
	default:
		return "?"
	}
}

func (op Operation) validate(position int) error {
	if !op.Action.valid() {
		return fmt.Errorf("unknown action %q", op.Action)
	}
	switch op.Operand.Kind {
	case OperandMarkup:
		if op.Operand.Key == "" {
			return fmt.Errorf("markup operand without key")
		}
	case OperandStep:
		if i, ok := op.Operand.Ref.Index(); ok && i >= position {
			return fmt.Errorf("references step %d, which is not earlier than step %d", i+1, position+1)
		}
	case OperandLiteral:
	default:
		return fmt.Errorf("unknown operand type %q", op.Operand.Kind)
	}
	switch op.Format {
	case "", FormatAddOne, FormatDirect:
	default:
		return fmt.Errorf("unknown multiply format %q", op.Format)
	}
	return nil
}
