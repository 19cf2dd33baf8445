package markup

import (
	"strconv"
	"strings"
)

// FormatStep renders a step as a readable formula, e.g. "step 1 + step 2 − base amount".
// labels maps markup keys to display names; keys without a label are shown as is.
func FormatStep(step Step, labels map[string]string) string {
	var b strings.Builder
	b.WriteString(step.Base.String())
	for _, op := range step.Operations {
		b.WriteString(" ")
		b.WriteString(op.Action.Symbol())
		b.WriteString(" ")
		b.WriteString(formatOperand(op, labels))
	}
	return b.String()
}

func formatOperand(op Operation, labels map[string]string) string {
	switch op.Operand.Kind {
	case OperandMarkup:
		label := op.Operand.Key
		if l, ok := labels[label]; ok && l != "" {
			label = l
		}
		label += " %"
		switch {
		case op.Action == ActionMultiply && op.Format == FormatDirect:
			return label
		case op.Action == ActionMultiply, op.Action == ActionDivide:
			return "(1 + " + label + ")"
		default:
			return label
		}
	case OperandStep:
		return op.Operand.Ref.String()
	default:
		return strconv.FormatFloat(op.Operand.Value, 'f', -1, 64)
	}
}
