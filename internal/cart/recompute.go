package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrQuantityFloor   = errors.New("quantity cannot go below 1")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidDelta    = errors.New("quantity changes by exactly one")
)

// NextQuantity applies a +1/-1 step. Decreasing from 1 is rejected.
func NextQuantity(quantity, delta int) (int, error) {
	if delta != 1 && delta != -1 {
		return quantity, ErrInvalidDelta
	}
	if quantity < 1 {
		return quantity, ErrInvalidQuantity
	}
	next := quantity + delta
	if next < 1 {
		return quantity, ErrQuantityFloor
	}
	return next, nil
}

// PredictQuantityTotal scales the current total to newQty. The existing total
// already carries discount and addons per unit, so scaling needs no re-pricing.
func PredictQuantityTotal(oldTotal decimal.Decimal, oldQty, newQty int) (decimal.Decimal, error) {
	if oldQty <= 0 || newQty <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	return oldTotal.Mul(decimal.NewFromInt(int64(newQty))).
		Div(decimal.NewFromInt(int64(oldQty))).
		Round(2), nil
}

// PredictAddonRemovalTotal subtracts one addon's adjustment for every unit.
func PredictAddonRemovalTotal(oldTotal, priceAdjust decimal.Decimal, quantity int) decimal.Decimal {
	return oldTotal.Sub(priceAdjust.Mul(decimal.NewFromInt(int64(quantity))))
}
