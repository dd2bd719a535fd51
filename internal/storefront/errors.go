package storefront

import "errors"

var (
	ErrItemNotFound        = errors.New("cart item not found")
	ErrStoreNotFound       = errors.New("store group not found")
	ErrAddonNotFound       = errors.New("addon not found on cart item")
	ErrItemUnavailable     = errors.New("cart item is inactive or out of stock")
	ErrItemBusy            = errors.New("cart item has a request in flight")
	ErrUnknownAttribute    = errors.New("attribute or value not offered for this product")
	ErrIncompleteSelection = errors.New("attribute selection does not resolve to a variant")
	ErrVariantUnchanged    = errors.New("selected variant equals the current one")
	ErrDuplicateVariant    = errors.New("selected variant is already in the cart")
)
