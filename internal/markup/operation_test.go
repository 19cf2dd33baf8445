package markup

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOperation(t *testing.T) {
	tests := []struct {
		name     string
		op       Operation
		resolved float64
		want     float64
	}{
		{"multiply markup addOne", Operation{Action: ActionMultiply, Operand: MarkupOperand("k"), Format: FormatAddOne}, 20, 240},
		{"multiply markup direct", Operation{Action: ActionMultiply, Operand: MarkupOperand("k"), Format: FormatDirect}, 20, 40},
		{"divide markup", Operation{Action: ActionDivide, Operand: MarkupOperand("k")}, 20, 200 / 1.2},
		{"add markup scales accumulator", Operation{Action: ActionAdd, Operand: MarkupOperand("k")}, 20, 240},
		{"subtract markup scales accumulator", Operation{Action: ActionSubtract, Operand: MarkupOperand("k")}, 20, 160},
		{"multiply step", Operation{Action: ActionMultiply, Operand: StepOperand(StepIndex(0))}, 3, 600},
		{"divide literal", Operation{Action: ActionDivide, Operand: LiteralOperand(4)}, 4, 50},
		{"add step", Operation{Action: ActionAdd, Operand: StepOperand(BaseAmount)}, 50, 250},
		{"subtract literal", Operation{Action: ActionSubtract, Operand: LiteralOperand(15)}, 15, 185},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyOperation(200, tt.op, tt.resolved)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestApplyOperation_DivisionByZeroPropagates(t *testing.T) {
	got := ApplyOperation(10, Operation{Action: ActionDivide, Operand: LiteralOperand(0)}, 0)
	assert.True(t, math.IsInf(got, 1))

	got = ApplyOperation(0, Operation{Action: ActionDivide, Operand: LiteralOperand(0)}, 0)
	assert.True(t, math.IsNaN(got))

	got = ApplyOperation(10, Operation{Action: ActionDivide, Operand: MarkupOperand("k")}, -100)
	assert.True(t, math.IsInf(got, 1))
}

func TestApplyOperation_UnknownActionKeepsAccumulator(t *testing.T) {
	got := ApplyOperation(10, Operation{Action: "modulo", Operand: LiteralOperand(3)}, 3)
	assert.Equal(t, 10.0, got)
}
