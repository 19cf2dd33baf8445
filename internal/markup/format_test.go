package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatStep(t *testing.T) {
	chain := materialsChain()
	labels := map[string]string{"profit_own_forces": "Profit"}

	assert.Equal(t, "base amount × (1 + material_cost_growth %)", FormatStep(chain[0], nil))
	assert.Equal(t, "step 1 + step 2 − base amount", FormatStep(chain[2], nil))
	assert.Equal(t, "step 5 × (1 + Profit %)", FormatStep(chain[5], labels))

	mixed := Step{Base: StepIndex(1), Operations: []Operation{
		{Action: ActionMultiply, Operand: MarkupOperand("works_16_markup"), Format: FormatDirect},
		{Action: ActionDivide, Operand: LiteralOperand(1.2)},
		{Action: ActionSubtract, Operand: MarkupOperand("warranty_period")},
	}}
	assert.Equal(t, "step 2 × works_16_markup % ÷ 1.2 − warranty_period %", FormatStep(mixed, nil))
}
