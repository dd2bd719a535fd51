package cart

import (
	cartdto "github.com/khatmdev/quadramall-sub001/api/controllers/cart/dto"
	"github.com/khatmdev/quadramall-sub001/internal/cart"
)

func toAddToCartInput(payload cartdto.AddItemRequest) cart.AddToCartInput {
	return cart.AddToCartInput{
		VariantID: payload.VariantID,
		Quantity:  payload.Quantity,
		AddonIDs:  payload.AddonIDs,
	}
}

func toUpdateVariantInput(payload cartdto.UpdateVariantRequest) cart.UpdateVariantInput {
	return cart.UpdateVariantInput{
		VariantID: payload.VariantID,
		AddonIDs:  payload.AddonIDs,
	}
}
