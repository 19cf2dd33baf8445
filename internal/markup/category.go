package markup

import (
	"fmt"
	"strings"
)

// Category is a BOQ line-item category. Each category owns one sequence in a tactic.
type Category string

const (
	CategoryWorks                Category = "works"
	CategoryMaterials            Category = "materials"
	CategorySubcontractWorks     Category = "subcontract_works"
	CategorySubcontractMaterials Category = "subcontract_materials"
	CategoryWorkEquivalent       Category = "work_equivalent"
	CategoryMaterialEquivalent   Category = "material_equivalent"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryWorks,
	CategoryMaterials,
	CategorySubcontractWorks,
	CategorySubcontractMaterials,
	CategoryWorkEquivalent,
	CategoryMaterialEquivalent,
}

// Item-type labels used by the BOQ tables and older tactic documents.
var categoryAliases = map[string]Category{
	"раб":           CategoryWorks,
	"мат":           CategoryMaterials,
	"суб-раб":       CategorySubcontractWorks,
	"суб-мат":       CategorySubcontractMaterials,
	"раб-комп.":     CategoryWorkEquivalent,
	"мат-комп.":     CategoryMaterialEquivalent,
	"work_comp":     CategoryWorkEquivalent,
	"material_comp": CategoryMaterialEquivalent,
}

// ParseCategory accepts canonical names as well as BOQ item-type labels.
func ParseCategory(raw string) (Category, error) {
	s := strings.TrimSpace(raw)
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	if c, ok := categoryAliases[s]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// Valid reports whether c is one of the six categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsMaterial reports whether the commercial cost of this category is booked as material cost.
func (c Category) IsMaterial() bool {
	switch c {
	case CategoryMaterials, CategorySubcontractMaterials, CategoryMaterialEquivalent:
		return true
	default:
		return false
	}
}
