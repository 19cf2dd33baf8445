package markup

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Document is the exchange format of a tactic (JSON column, API body, YAML file).
type Document struct {
	Name      string                      `json:"name" yaml:"name"`
	IsGlobal  bool                        `json:"is_global" yaml:"is_global"`
	Sequences map[Category][]StepDocument `json:"sequences" yaml:"sequences"`
	BaseCosts map[Category]float64        `json:"base_costs" yaml:"base_costs"`
}

// StepDocument encodes the base amount as baseIndex -1.
type StepDocument struct {
	Name       string              `json:"name,omitempty" yaml:"name,omitempty"`
	BaseIndex  int                 `json:"baseIndex" yaml:"baseIndex"`
	Operations []OperationDocument `json:"operations" yaml:"operations"`
}

type OperationDocument struct {
	Action         Action         `json:"action" yaml:"action"`
	OperandType    OperandKind    `json:"operandType" yaml:"operandType"`
	OperandKey     string         `json:"operandKey,omitempty" yaml:"operandKey,omitempty"`
	OperandIndex   *int           `json:"operandIndex,omitempty" yaml:"operandIndex,omitempty"`
	OperandLiteral *float64       `json:"operandLiteral,omitempty" yaml:"operandLiteral,omitempty"`
	MultiplyFormat MultiplyFormat `json:"multiplyFormat,omitempty" yaml:"multiplyFormat,omitempty"`
}

//go:embed tactic.schema.json
var tacticSchemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func tacticSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("tactic.schema.json", strings.NewReader(tacticSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load tactic schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("tactic.schema.json")
	})
	return compiledSchema, schemaErr
}

// DecodeTactic parses a JSON tactic document. Documents written by the older
// configuration tool (action1..action5 fields, item-type category keys) are upgraded first.
// The result is structurally sound but not validated; call Tactic.Validate before saving.
func DecodeTactic(raw []byte) (Tactic, error) {
	if !gjson.ValidBytes(raw) {
		return Tactic{}, errors.New("tactic document is not valid JSON")
	}
	if needsUpgrade(raw) {
		upgraded, err := upgradeLegacy(raw)
		if err != nil {
			return Tactic{}, err
		}
		raw = upgraded
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Tactic{}, fmt.Errorf("parse tactic document: %w", err)
	}
	schema, err := tacticSchema()
	if err != nil {
		return Tactic{}, err
	}
	if err := schema.Validate(generic); err != nil {
		return Tactic{}, fmt.Errorf("tactic document does not match schema: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Tactic{}, fmt.Errorf("parse tactic document: %w", err)
	}
	return doc.Tactic()
}

// EncodeTactic renders t as a JSON document.
func EncodeTactic(t Tactic) ([]byte, error) {
	return json.Marshal(t.Document())
}

// DecodeTacticYAML parses the YAML form of a tactic document.
func DecodeTacticYAML(raw []byte) (Tactic, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return Tactic{}, fmt.Errorf("parse tactic yaml: %w", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return Tactic{}, fmt.Errorf("convert tactic yaml: %w", err)
	}
	return DecodeTactic(asJSON)
}

// EncodeTacticYAML renders t as a YAML document.
func EncodeTacticYAML(t Tactic) ([]byte, error) {
	return yaml.Marshal(t.Document())
}

// Document converts t into its exchange form.
func (t Tactic) Document() Document {
	doc := Document{
		Name:      t.Name,
		IsGlobal:  t.IsGlobal,
		Sequences: make(map[Category][]StepDocument, len(Categories)),
		BaseCosts: make(map[Category]float64, len(Categories)),
	}
	for _, c := range Categories {
		steps := make([]StepDocument, 0, len(t.Sequences[c]))
		for _, s := range t.Sequences[c] {
			steps = append(steps, stepDocument(s))
		}
		doc.Sequences[c] = steps
		doc.BaseCosts[c] = t.BaseCosts[c]
	}
	return doc
}

func stepDocument(s Step) StepDocument {
	sd := StepDocument{Name: s.Name, BaseIndex: s.Base.Wire()}
	for _, op := range s.Operations {
		od := OperationDocument{Action: op.Action, OperandType: op.Operand.Kind}
		switch op.Operand.Kind {
		case OperandMarkup:
			od.OperandKey = op.Operand.Key
			if op.Action == ActionMultiply {
				od.MultiplyFormat = op.Format
			}
		case OperandStep:
			idx := op.Operand.Ref.Wire()
			od.OperandIndex = &idx
		case OperandLiteral:
			v := op.Operand.Value
			od.OperandLiteral = &v
		}
		sd.Operations = append(sd.Operations, od)
	}
	return sd
}

// Tactic converts the exchange form into the evaluator model.
func (d Document) Tactic() (Tactic, error) {
	t := NewTactic(d.Name)
	t.IsGlobal = d.IsGlobal
	for c := range d.Sequences {
		if !c.Valid() {
			return Tactic{}, fmt.Errorf("sequences: unknown category %q", c)
		}
	}
	for c := range d.BaseCosts {
		if !c.Valid() {
			return Tactic{}, fmt.Errorf("base_costs: unknown category %q", c)
		}
	}
	for _, c := range Categories {
		steps := d.Sequences[c]
		seq := make(Sequence, 0, len(steps))
		for i, sd := range steps {
			step, err := sd.step()
			if err != nil {
				return Tactic{}, fmt.Errorf("sequences.%s[%d]: %w", c, i, err)
			}
			seq = append(seq, step)
		}
		t.Sequences[c] = seq
		t.BaseCosts[c] = d.BaseCosts[c]
	}
	return t, nil
}

func (sd StepDocument) step() (Step, error) {
	base, err := StepRefFromWire(sd.BaseIndex)
	if err != nil {
		return Step{}, fmt.Errorf("baseIndex: %w", err)
	}
	step := Step{Name: sd.Name, Base: base, Operations: make([]Operation, 0, len(sd.Operations))}
	for j, od := range sd.Operations {
		op, err := od.operation()
		if err != nil {
			return Step{}, fmt.Errorf("operations[%d]: %w", j, err)
		}
		step.Operations = append(step.Operations, op)
	}
	return step, nil
}

func (od OperationDocument) operation() (Operation, error) {
	op := Operation{Action: od.Action, Format: od.MultiplyFormat}
	switch od.OperandType {
	case OperandMarkup:
		if od.OperandKey == "" {
			return Operation{}, errors.New("operandKey is required for markup operands")
		}
		op.Operand = MarkupOperand(od.OperandKey)
	case OperandStep:
		if od.OperandIndex == nil {
			return Operation{}, errors.New("operandIndex is required for step operands")
		}
		ref, err := StepRefFromWire(*od.OperandIndex)
		if err != nil {
			return Operation{}, fmt.Errorf("operandIndex: %w", err)
		}
		op.Operand = StepOperand(ref)
	case OperandLiteral:
		if od.OperandLiteral == nil {
			return Operation{}, errors.New("operandLiteral is required for number operands")
		}
		op.Operand = LiteralOperand(*od.OperandLiteral)
	default:
		return Operation{}, fmt.Errorf("unknown operandType %q", od.OperandType)
	}
	if op.Action == ActionMultiply && op.Operand.Kind == OperandMarkup && op.Format == "" {
		op.Format = FormatAddOne
	}
	return op, nil
}
