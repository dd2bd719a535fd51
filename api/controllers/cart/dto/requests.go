package cartdto

import "github.com/google/uuid"

// AddItemRequest is the body of POST /api/v1/cart/items.
type AddItemRequest struct {
	VariantID uuid.UUID   `json:"variant_id" validate:"required"`
	Quantity  int         `json:"quantity"`
	AddonIDs  []uuid.UUID `json:"addon_ids"`
}

// UpdateQuantityRequest is the body of PUT /api/v1/cart/items/{itemId}/quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateVariantRequest is the body of PUT /api/v1/cart/items/{itemId}/variant.
type UpdateVariantRequest struct {
	VariantID uuid.UUID   `json:"variant_id" validate:"required"`
	AddonIDs  []uuid.UUID `json:"addon_ids"`
}

// DeleteStoreResponse reports how many lines a store delete removed.
type DeleteStoreResponse struct {
	Removed int `json:"removed"`
}
