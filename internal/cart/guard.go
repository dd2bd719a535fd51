package cart

import "github.com/google/uuid"

// IsDuplicateVariant reports whether switching a line from current to candidate
// would collide with another line of the same product. Reselecting the current
// variant is not a duplicate.
func IsDuplicateVariant(candidate uuid.UUID, existing []uuid.UUID, current uuid.UUID) bool {
	if candidate == uuid.Nil || candidate == current {
		return false
	}
	for _, id := range existing {
		if id == candidate {
			return true
		}
	}
	return false
}

// VariantIDsByProduct indexes every variant present in the cart by product.
func VariantIDsByProduct(groups []StoreGroup) map[uuid.UUID][]uuid.UUID {
	out := make(map[uuid.UUID][]uuid.UUID)
	for _, g := range groups {
		for _, item := range g.Items {
			out[item.ProductID] = append(out[item.ProductID], item.VariantID)
		}
	}
	return out
}
