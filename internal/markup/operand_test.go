package markup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOperand(t *testing.T) {
	markups := PercentageSet{"profit_own_forces": 10}
	results := []float64{110, 103}

	tests := []struct {
		name string
		op   Operand
		want float64
	}{
		{"known markup", MarkupOperand("profit_own_forces"), 10},
		{"unknown markup resolves to zero", MarkupOperand("warranty_period"), 0},
		{"base amount sentinel", StepOperand(BaseAmount), 100},
		{"first step", StepOperand(StepIndex(0)), 110},
		{"last step", StepOperand(StepIndex(1)), 103},
		{"literal", LiteralOperand(2.5), 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOperand(tt.op, results, 100, markups)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOperand_BaseAmountIsNotLastResult(t *testing.T) {
	got, err := ResolveOperand(StepOperand(BaseAmount), []float64{1, 2, 3}, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
}

func TestResolveOperand_StepOutOfRange(t *testing.T) {
	_, err := ResolveOperand(StepOperand(StepIndex(2)), []float64{1, 2}, 100, nil)

	var ie *IndexError
	require.True(t, errors.As(err, &ie), "expected *IndexError, got %v", err)
	assert.Equal(t, 2, ie.Index)
	assert.Equal(t, 2, ie.Available)
}

func TestStepRefFromWire(t *testing.T) {
	ref, err := StepRefFromWire(-1)
	require.NoError(t, err)
	assert.True(t, ref.IsBase())
	assert.Equal(t, BaseAmount, ref)
	assert.Equal(t, -1, ref.Wire())

	ref, err = StepRefFromWire(3)
	require.NoError(t, err)
	idx, ok := ref.Index()
	assert.True(t, ok)
	assert.Equal(t, 3, idx)
	assert.Equal(t, 3, ref.Wire())

	_, err = StepRefFromWire(-2)
	assert.Error(t, err)
}

func TestStepRef_ZeroValueIsBaseAmount(t *testing.T) {
	var ref StepRef
	assert.True(t, ref.IsBase())
	assert.Equal(t, "base amount", ref.String())
	assert.Equal(t, "step 1", StepIndex(0).String())
}
