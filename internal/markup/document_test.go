package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const materialsDocument = `{
  "name": "Default",
  "is_global": true,
  "sequences": {
    "materials": [
      {"name": "Growth", "baseIndex": -1, "operations": [
        {"action": "multiply", "operandType": "markup", "operandKey": "material_cost_growth", "multiplyFormat": "addOne"}
      ]},
      {"name": "Contingency", "baseIndex": -1, "operations": [
        {"action": "multiply", "operandType": "markup", "operandKey": "contingency_costs"}
      ]},
      {"name": "Overhead base", "baseIndex": 0, "operations": [
        {"action": "add", "operandType": "step", "operandIndex": 1},
        {"action": "subtract", "operandType": "step", "operandIndex": -1}
      ]},
      {"baseIndex": 2, "operations": [{"action": "multiply", "operandType": "markup", "operandKey": "overhead_own_forces"}]},
      {"baseIndex": 3, "operations": [{"action": "multiply", "operandType": "markup", "operandKey": "general_costs_without_subcontract"}]},
      {"baseIndex": 4, "operations": [{"action": "multiply", "operandType": "markup", "operandKey": "profit_own_forces"}]}
    ],
    "works": [
      {"baseIndex": -1, "operations": [{"action": "multiply", "operandType": "number", "operandLiteral": 1.6}]}
    ]
  },
  "base_costs": {"materials": 100, "works": 50}
}`

func TestDecodeTactic(t *testing.T) {
	tactic, err := DecodeTactic([]byte(materialsDocument))
	require.NoError(t, err)
	require.NoError(t, tactic.Validate())

	assert.Equal(t, "Default", tactic.Name)
	assert.True(t, tactic.IsGlobal)
	assert.Len(t, tactic.Sequence(CategoryMaterials), 6)
	assert.Empty(t, tactic.Sequence(CategorySubcontractWorks))
	assert.Equal(t, 100.0, tactic.BaseCosts[CategoryMaterials])

	// multiply against a markup without a format means addOne
	assert.Equal(t, FormatAddOne, tactic.Sequence(CategoryMaterials)[1].Operations[0].Format)
	assert.True(t, tactic.Sequence(CategoryMaterials)[2].Operations[1].Operand.Ref.IsBase())

	res, err := tactic.Preview(CategoryMaterials, materialMarkups())
	require.NoError(t, err)
	assert.InDelta(t, 164.076, res.FinalValue, 1e-9)

	res, err = tactic.Preview(CategoryWorks, nil)
	require.NoError(t, err)
	assert.InDelta(t, 80, res.FinalValue, 1e-9)
}

func TestDecodeTactic_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"not json":           `{"name": `,
		"missing name":       `{"sequences": {}}`,
		"unknown category":   `{"name": "x", "sequences": {"equipment": []}}`,
		"no operations":      `{"name": "x", "sequences": {"works": [{"baseIndex": -1, "operations": []}]}}`,
		"markup without key": `{"name": "x", "sequences": {"works": [{"baseIndex": -1, "operations": [{"action": "add", "operandType": "markup"}]}]}}`,
		"bad action":         `{"name": "x", "sequences": {"works": [{"baseIndex": -1, "operations": [{"action": "pow", "operandType": "number", "operandLiteral": 2}]}]}}`,
		"index below -1":     `{"name": "x", "sequences": {"works": [{"baseIndex": -2, "operations": [{"action": "add", "operandType": "number", "operandLiteral": 2}]}]}}`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTactic([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeTactic_ForwardReferenceDecodesButFailsValidation(t *testing.T) {
	doc := `{"name": "x", "sequences": {"works": [
		{"baseIndex": -1, "operations": [{"action": "add", "operandType": "step", "operandIndex": 1}]},
		{"baseIndex": -1, "operations": [{"action": "add", "operandType": "number", "operandLiteral": 1}]}
	]}}`
	tactic, err := DecodeTactic([]byte(doc))
	require.NoError(t, err)
	assert.ErrorIs(t, tactic.Validate(), ErrConfiguration)
}

func TestDecodeTactic_LegacyDocument(t *testing.T) {
	legacy := `{
	  "name": "Текущая тактика",
	  "is_global": false,
	  "sequences": {
	    "мат": [
	      {"name": "Материалы РОСТ", "baseIndex": -1, "action1": "multiply", "operand1Type": "markup", "operand1Key": "material_cost_growth", "operand1MultiplyFormat": "addOne"},
	      {"name": "Непредвиденные", "baseIndex": -1, "action1": "multiply", "operand1Type": "markup", "operand1Key": "contingency_costs", "operand1MultiplyFormat": "addOne"},
	      {"name": "ООЗ промежуточно", "baseIndex": 0, "action1": "add", "operand1Type": "step", "operand1Index": 1, "action2": "subtract", "operand2Type": "step", "operand2Index": -1},
	      {"name": "ООЗ", "baseIndex": 2, "action1": "multiply", "operand1Type": "markup", "operand1Key": "overhead_own_forces", "operand1MultiplyFormat": "addOne"},
	      {"name": "ОФЗ", "baseIndex": 3, "action1": "multiply", "operand1Type": "markup", "operand1Key": "general_costs_without_subcontract", "operand1MultiplyFormat": "addOne"},
	      {"name": "Прибыль", "baseIndex": 4, "action1": "multiply", "operand1Type": "markup", "operand1Key": "profit_own_forces", "operand1MultiplyFormat": "addOne"}
	    ],
	    "раб": [
	      {"baseIndex": -1, "action1": "multiply", "operand1Type": "number", "operand1Key": 1.6, "action3": "add", "operand3Type": "number", "operand3Key": 4}
	    ],
	    "суб-раб": [],
	    "суб-мат": [],
	    "раб-комп.": [],
	    "мат-комп.": []
	  },
	  "base_costs": {"раб": 10, "мат": 100, "суб-раб": 0, "суб-мат": 0, "раб-комп.": 0, "мат-комп.": 0}
	}`

	tactic, err := DecodeTactic([]byte(legacy))
	require.NoError(t, err)
	require.NoError(t, tactic.Validate())

	mat := tactic.Sequence(CategoryMaterials)
	require.Len(t, mat, 6)
	assert.Equal(t, "ООЗ промежуточно", mat[2].Name)
	require.Len(t, mat[2].Operations, 2)
	assert.Equal(t, ActionSubtract, mat[2].Operations[1].Action)

	res, err := tactic.Preview(CategoryMaterials, materialMarkups())
	require.NoError(t, err)
	assert.InDelta(t, 1.64076, res.Coefficient, 1e-12)

	works := tactic.Sequence(CategoryWorks)
	require.Len(t, works[0].Operations, 2)
	res, err = tactic.Preview(CategoryWorks, nil)
	require.NoError(t, err)
	assert.InDelta(t, 20, res.FinalValue, 1e-9)
}

func TestDecodeTactic_LegacyNumberOperandWithoutValue(t *testing.T) {
	legacy := `{"name": "old", "sequences": {"мат": [
	  {"baseIndex": -1, "action1": "multiply", "operand1Type": "markup", "operand1Key": "k",
	   "action2": "add", "operand2Type": "number"}
	]}}`

	tactic, err := DecodeTactic([]byte(legacy))
	require.NoError(t, err)
	require.NoError(t, tactic.Validate())

	ops := tactic.Sequence(CategoryMaterials)[0].Operations
	require.Len(t, ops, 2)
	assert.Equal(t, LiteralOperand(0), ops[1].Operand)

	res, err := tactic.Evaluate(CategoryMaterials, 100, PercentageSet{"k": 10})
	require.NoError(t, err)
	assert.InDelta(t, 110, res.FinalValue, 1e-9)
}

func TestTacticYAMLRoundTrip(t *testing.T) {
	tactic, err := DecodeTactic([]byte(materialsDocument))
	require.NoError(t, err)

	raw, err := EncodeTacticYAML(tactic)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "baseIndex: -1")

	decoded, err := DecodeTacticYAML(raw)
	require.NoError(t, err)
	assert.Equal(t, tactic.Document(), decoded.Document())
}

func TestEncodeTactic_WritesEveryCategory(t *testing.T) {
	raw, err := EncodeTactic(NewTactic("Empty"))
	require.NoError(t, err)

	decoded, err := DecodeTactic(raw)
	require.NoError(t, err)
	for _, c := range Categories {
		assert.NotNil(t, decoded.Sequences[c], c)
	}
}
