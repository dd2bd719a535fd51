package cart

import "github.com/google/uuid"

// MatchVariant resolves the variant whose attributes equal selected on every
// attribute declared in available. It reports false when any declared attribute
// is unselected, when nothing is declared, or when no variant matches.
//
// candidates fixes the iteration order (the item's active variants); when empty,
// variants are visited in first-appearance order of all. The first match wins.
func MatchVariant(available []AttributeOption, selected map[string]string, all []VariantAttribute, candidates []uuid.UUID) (uuid.UUID, bool) {
	if len(available) == 0 {
		return uuid.Nil, false
	}
	for _, attr := range available {
		if selected[attr.Name] == "" {
			return uuid.Nil, false
		}
	}

	byVariant := make(map[uuid.UUID]map[string]string)
	order := make([]uuid.UUID, 0)
	for _, row := range all {
		attrs, ok := byVariant[row.VariantID]
		if !ok {
			attrs = make(map[string]string)
			byVariant[row.VariantID] = attrs
			order = append(order, row.VariantID)
		}
		attrs[row.AttributeName] = row.AttributeValue
	}
	if len(candidates) > 0 {
		order = candidates
	}

	for _, id := range order {
		attrs, ok := byVariant[id]
		if !ok {
			continue
		}
		if matchesAll(available, selected, attrs) {
			return id, true
		}
	}
	return uuid.Nil, false
}

func matchesAll(available []AttributeOption, selected, attrs map[string]string) bool {
	for _, attr := range available {
		value, ok := attrs[attr.Name]
		if !ok || value != selected[attr.Name] {
			return false
		}
	}
	return true
}
