package markup

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// needsUpgrade detects documents written by the older configuration tool: steps with
// numbered action fields, or sequences keyed by BOQ item-type labels.
func needsUpgrade(raw []byte) bool {
	legacy := false
	check := func(key gjson.Result) {
		if c, err := ParseCategory(key.String()); err == nil && string(c) != key.String() {
			legacy = true
		}
	}
	gjson.GetBytes(raw, "sequences").ForEach(func(key, steps gjson.Result) bool {
		check(key)
		steps.ForEach(func(_, step gjson.Result) bool {
			if step.Get("action1").Exists() {
				legacy = true
			}
			return !legacy
		})
		return !legacy
	})
	gjson.GetBytes(raw, "base_costs").ForEach(func(key, _ gjson.Result) bool {
		check(key)
		return !legacy
	})
	return legacy
}

// upgradeLegacy rewrites an old document into the current shape. Unknown keys are
// carried over untouched so the schema check reports them.
func upgradeLegacy(raw []byte) ([]byte, error) {
	parsed := gjson.ParseBytes(raw)
	doc := make(map[string]any)
	parsed.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "sequences", "base_costs":
		default:
			doc[key.String()] = value.Value()
		}
		return true
	})

	if seqs := parsed.Get("sequences"); seqs.Exists() {
		out := make(map[string]any)
		seqs.ForEach(func(key, steps gjson.Result) bool {
			list := make([]any, 0)
			steps.ForEach(func(_, step gjson.Result) bool {
				list = append(list, upgradeStep(step))
				return true
			})
			out[canonicalKey(key.String())] = list
			return true
		})
		doc["sequences"] = out
	}

	if costs := parsed.Get("base_costs"); costs.Exists() {
		out := make(map[string]any)
		costs.ForEach(func(key, value gjson.Result) bool {
			out[canonicalKey(key.String())] = value.Value()
			return true
		})
		doc["base_costs"] = out
	}

	upgraded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("upgrade legacy tactic document: %w", err)
	}
	return upgraded, nil
}

func canonicalKey(key string) string {
	if c, err := ParseCategory(key); err == nil {
		return string(c)
	}
	return key
}

// upgradeStep folds action1..action5 into an operations list. The older tool kept
// number operands in the operandNKey field and skipped slots without an operand type.
func upgradeStep(step gjson.Result) any {
	if !step.Get("action1").Exists() {
		return step.Value()
	}
	out := map[string]any{"baseIndex": step.Get("baseIndex").Value()}
	if name := step.Get("name"); name.Exists() {
		out["name"] = name.String()
	}

	ops := make([]any, 0, MaxOperationsPerStep)
	for n := 1; n <= MaxOperationsPerStep; n++ {
		action := step.Get(fmt.Sprintf("action%d", n))
		kind := step.Get(fmt.Sprintf("operand%dType", n))
		if !action.Exists() || !kind.Exists() {
			continue
		}
		op := map[string]any{
			"action":      action.String(),
			"operandType": kind.String(),
		}
		key := step.Get(fmt.Sprintf("operand%dKey", n))
		switch OperandKind(kind.String()) {
		case OperandMarkup:
			if key.Exists() {
				op["operandKey"] = key.String()
			}
		case OperandStep:
			if idx := step.Get(fmt.Sprintf("operand%dIndex", n)); idx.Exists() {
				op["operandIndex"] = idx.Int()
			}
		case OperandLiteral:
			// Slots 2..5 were saved without a value when the operand was a number; they evaluate as 0.
			op["operandLiteral"] = 0.0
			if key.Exists() {
				op["operandLiteral"] = key.Float()
			}
		}
		if format := step.Get(fmt.Sprintf("operand%dMultiplyFormat", n)); format.Exists() {
			op["multiplyFormat"] = format.String()
		}
		ops = append(ops, op)
	}
	out["operations"] = ops
	return out
}
