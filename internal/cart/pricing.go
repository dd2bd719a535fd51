package cart

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ClampPercent bounds a discount percentage to [0,100].
func ClampPercent(pct int) int {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// FlashSalePrice returns the display unit price after the flash-sale discount.
// A nil sale leaves price unchanged.
func FlashSalePrice(price decimal.Decimal, sale *FlashSale) decimal.Decimal {
	if sale == nil {
		return price
	}
	keep := decimal.NewFromInt(int64(100 - ClampPercent(sale.PercentageDiscount)))
	return price.Mul(keep).Div(hundred)
}

// AddonsPerUnit sums the per-unit price adjustments of addons.
func AddonsPerUnit(addons []Addon) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range addons {
		sum = sum.Add(a.PriceAdjust)
	}
	return sum
}

// LineTotal is the authoritative line total:
// (discounted unit price + addon adjustments) * quantity, rounded to cents.
func LineTotal(price decimal.Decimal, sale *FlashSale, addons []Addon, quantity int) decimal.Decimal {
	unit := FlashSalePrice(price, sale).Add(AddonsPerUnit(addons))
	return unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
