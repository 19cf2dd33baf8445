package seed

import (
	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/store"
)

// DefaultTacticName names the global tactic created on first start.
const DefaultTacticName = "Default"

// Parameters are the standard markup percentages, in form order.
var Parameters = []store.MarkupParameter{
	{Key: "mechanization_service", Label: "Mechanization service", SortOrder: 1},
	{Key: "mbp_gsm", Label: "Small tools and fuel", SortOrder: 2},
	{Key: "warranty_period", Label: "Warranty period", SortOrder: 3},
	{Key: "works_16_markup", Label: "Works 1.6", SortOrder: 4},
	{Key: "works_cost_growth", Label: "Works cost growth", DefaultValue: 10, SortOrder: 5},
	{Key: "material_cost_growth", Label: "Material cost growth", DefaultValue: 10, SortOrder: 6},
	{Key: "subcontract_works_cost_growth", Label: "Subcontract works cost growth", DefaultValue: 10, SortOrder: 7},
	{Key: "subcontract_materials_cost_growth", Label: "Subcontract materials cost growth", DefaultValue: 10, SortOrder: 8},
	{Key: "contingency_costs", Label: "Contingency costs", DefaultValue: 3, SortOrder: 9},
	{Key: "overhead_own_forces", Label: "Overhead (own forces)", DefaultValue: 10, SortOrder: 10},
	{Key: "overhead_subcontract", Label: "Overhead (subcontract)", DefaultValue: 10, SortOrder: 11},
	{Key: "general_costs_without_subcontract", Label: "General costs without subcontract", DefaultValue: 20, SortOrder: 12},
	{Key: "profit_own_forces", Label: "Profit (own forces)", DefaultValue: 10, SortOrder: 13},
	{Key: "profit_subcontract", Label: "Profit (subcontract)", DefaultValue: 10, SortOrder: 14},
}

func grow(key string) markup.Operation {
	return markup.Operation{Action: markup.ActionMultiply, Operand: markup.MarkupOperand(key), Format: markup.FormatAddOne}
}

// ownForcesChain grows the base and the contingency separately, joins them,
// then applies overhead, general costs and profit on top.
func ownForcesChain(growthKey string) markup.Sequence {
	return markup.Sequence{
		{Name: "Cost growth", Base: markup.BaseAmount, Operations: []markup.Operation{grow(growthKey)}},
		{Name: "Contingency", Base: markup.BaseAmount, Operations: []markup.Operation{grow("contingency_costs")}},
		{Name: "Overhead base", Base: markup.StepIndex(0), Operations: []markup.Operation{
			{Action: markup.ActionAdd, Operand: markup.StepOperand(markup.StepIndex(1))},
			{Action: markup.ActionSubtract, Operand: markup.StepOperand(markup.BaseAmount)},
		}},
		{Name: "Overhead", Base: markup.StepIndex(2), Operations: []markup.Operation{grow("overhead_own_forces")}},
		{Name: "General costs", Base: markup.StepIndex(3), Operations: []markup.Operation{grow("general_costs_without_subcontract")}},
		{Name: "Profit", Base: markup.StepIndex(4), Operations: []markup.Operation{grow("profit_own_forces")}},
	}
}

func subcontractChain(growthKey string) markup.Sequence {
	return markup.Sequence{
		{Name: "Cost growth", Base: markup.BaseAmount, Operations: []markup.Operation{grow(growthKey)}},
		{Name: "Overhead", Base: markup.StepIndex(0), Operations: []markup.Operation{grow("overhead_subcontract")}},
		{Name: "Profit", Base: markup.StepIndex(1), Operations: []markup.Operation{grow("profit_subcontract")}},
	}
}

// DefaultTactic is the global tactic installed by Run. Equivalent categories are
// passed through unchanged.
func DefaultTactic() markup.Tactic {
	t := markup.NewTactic(DefaultTacticName)
	t.IsGlobal = true
	t.Sequences[markup.CategoryWorks] = ownForcesChain("works_cost_growth")
	t.Sequences[markup.CategoryMaterials] = ownForcesChain("material_cost_growth")
	t.Sequences[markup.CategorySubcontractWorks] = subcontractChain("subcontract_works_cost_growth")
	t.Sequences[markup.CategorySubcontractMaterials] = subcontractChain("subcontract_materials_cost_growth")
	for _, c := range markup.Categories {
		t.BaseCosts[c] = 100
	}
	return t
}
