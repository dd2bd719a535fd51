package cart

import (
	"net/http"

	"github.com/google/uuid"

	cartdto "github.com/khatmdev/quadramall-sub001/api/controllers/cart/dto"
	"github.com/khatmdev/quadramall-sub001/api/middleware"
	"github.com/khatmdev/quadramall-sub001/api/responses"
	"github.com/khatmdev/quadramall-sub001/api/validators"
	cartsvc "github.com/khatmdev/quadramall-sub001/internal/cart"
	pkgerrors "github.com/khatmdev/quadramall-sub001/pkg/errors"
	"github.com/khatmdev/quadramall-sub001/pkg/logger"
)

// CartFetch returns the caller's cart grouped by store.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, svc, logg)
		if !ok {
			return
		}

		groups, err := svc.GetCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if groups == nil {
			groups = []cartsvc.StoreGroup{}
		}
		responses.WriteSuccess(w, groups)
	}
}

// CartAddItem adds a variant to the cart, merging into an existing line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, svc, logg)
		if !ok {
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddToCart(r.Context(), userID, toAddToCartInput(payload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CartUpdateQuantity sets the quantity of one line.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, ok := pathID(w, r, "itemId", logg)
		if !ok {
			return
		}

		var payload cartdto.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateQuantity(r.Context(), userID, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// CartUpdateVariant switches a line to another variant of its product.
func CartUpdateVariant(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, ok := pathID(w, r, "itemId", logg)
		if !ok {
			return
		}

		var payload cartdto.UpdateVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateVariant(r.Context(), userID, itemID, toUpdateVariantInput(payload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// CartDeleteItem removes one line.
func CartDeleteItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, ok := pathID(w, r, "itemId", logg)
		if !ok {
			return
		}

		if err := svc.DeleteItem(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CartDeleteAddon detaches one addon from a line and returns the repriced line.
func CartDeleteAddon(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, ok := pathID(w, r, "itemId", logg)
		if !ok {
			return
		}
		addonID, ok := pathID(w, r, "addonId", logg)
		if !ok {
			return
		}

		item, err := svc.DeleteAddon(r.Context(), userID, itemID, addonID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// CartDeleteStore removes every line sold by one store.
func CartDeleteStore(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, svc, logg)
		if !ok {
			return
		}
		storeID, ok := pathID(w, r, "storeId", logg)
		if !ok {
			return
		}

		removed, err := svc.DeleteStoreItems(r.Context(), userID, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.DeleteStoreResponse{Removed: removed})
	}
}

func requireUser(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger) (uuid.UUID, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return uuid.Nil, false
	}
	userID, err := userIDFromContext(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, key string, logg *logger.Logger) (uuid.UUID, bool) {
	id, err := validators.ParseUUIDParam(r, key)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}

func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}
