package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RepairCategory labels a repair line
type RepairCategory string

const (
	CategoryBumperRepair     RepairCategory = "Bumper Repair"
	CategoryDentRemoval      RepairCategory = "Dent Removal"
	CategoryPaintJob         RepairCategory = "Paint Job"
	CategoryPanelReplacement RepairCategory = "Panel Replacement"
	CategoryScratchRepair    RepairCategory = "Scratch Repair"
	CategoryRustRepair       RepairCategory = "Rust Repair"
	CategoryAccidentDamage   RepairCategory = "Accident Damage"
	CategoryLabour           RepairCategory = "Labour"
	CategoryOther            RepairCategory = "Other"
)

// RepairCategories is the selectable list, Labour excluded
var RepairCategories = []RepairCategory{
	CategoryBumperRepair,
	CategoryDentRemoval,
	CategoryPaintJob,
	CategoryPanelReplacement,
	CategoryScratchRepair,
	CategoryRustRepair,
	CategoryAccidentDamage,
	CategoryOther,
}

// MultipleRepairType is the summary repair type of a multi-line document
const MultipleRepairType = "Multiple"

// IsValid checks if the RepairCategory is a valid enum value
func (c RepairCategory) IsValid() bool {
	if c == CategoryLabour {
		return true
	}
	for _, rc := range RepairCategories {
		if rc == c {
			return true
		}
	}
	return false
}

// ParseRepairCategory matches a category regardless of letter case
func ParseRepairCategory(raw string) (RepairCategory, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, string(CategoryLabour)) {
		return CategoryLabour, nil
	}
	for _, rc := range RepairCategories {
		if strings.EqualFold(trimmed, string(rc)) {
			return rc, nil
		}
	}
	return "", ErrInvalidRepairCategory
}

// LabourItem builds the fixed Labour line
func LabourItem(amount decimal.Decimal) RepairItem {
	return RepairItem{
		Category:    CategoryLabour,
		Description: string(CategoryLabour),
		Amount:      NormalizeAmount(amount),
	}
}

// NormalizeItems enforces the item list rules: at least one repair line, exactly
// one Labour line placed last with its description fixed, amounts clamped to
// non-negative cents and positions renumbered. A missing Labour line is added
// with a zero amount.
func NormalizeItems(items []RepairItem) ([]RepairItem, error) {
	var repairs []RepairItem
	var labour *RepairItem

	for _, item := range items {
		if !item.Category.IsValid() {
			return nil, ErrInvalidRepairCategory
		}
		if item.Category == CategoryLabour {
			if labour != nil {
				return nil, ErrMultipleLabourItems
			}
			l := LabourItem(item.Amount)
			l.ID = item.ID
			labour = &l
			continue
		}
		item.Description = strings.TrimSpace(item.Description)
		item.Amount = NormalizeAmount(item.Amount)
		repairs = append(repairs, item)
	}

	if len(repairs) == 0 {
		return nil, ErrNoRepairItems
	}
	if labour == nil {
		l := LabourItem(decimal.Zero)
		labour = &l
	}

	out := append(repairs, *labour)
	for i := range out {
		out[i].Position = i
	}
	return out, nil
}

// AddItem inserts a repair line just before the Labour line
func AddItem(items []RepairItem, item RepairItem) ([]RepairItem, error) {
	if item.Category == CategoryLabour {
		return nil, ErrMultipleLabourItems
	}
	if !item.Category.IsValid() {
		return nil, ErrInvalidRepairCategory
	}
	out := make([]RepairItem, 0, len(items)+1)
	inserted := false
	for _, existing := range items {
		if existing.Category == CategoryLabour && !inserted {
			out = append(out, item)
			inserted = true
		}
		out = append(out, existing)
	}
	if !inserted {
		out = append(out, item)
	}
	return NormalizeItems(out)
}

// RemoveItem drops the line at index. The Labour line cannot be removed and the
// list never shrinks below two lines.
func RemoveItem(items []RepairItem, index int) ([]RepairItem, error) {
	if index < 0 || index >= len(items) {
		return nil, ErrItemIndexOutOfRange
	}
	if items[index].Category == CategoryLabour {
		return nil, ErrCannotRemoveLabour
	}
	if len(items) <= 2 {
		return nil, ErrMinimumItems
	}
	out := make([]RepairItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	return NormalizeItems(out)
}

// SummaryRepairType is "Multiple" when more than one repair line exists,
// otherwise the category of the single repair line.
func SummaryRepairType(items []RepairItem) string {
	var repairs []RepairItem
	for _, item := range items {
		if item.Category != CategoryLabour {
			repairs = append(repairs, item)
		}
	}
	switch len(repairs) {
	case 0:
		return ""
	case 1:
		return string(repairs[0].Category)
	default:
		return MultipleRepairType
	}
}

// SummaryDescription joins every line as "category: description"
func SummaryDescription(items []RepairItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, string(item.Category)+": "+item.Description)
	}
	return strings.Join(parts, "; ")
}
