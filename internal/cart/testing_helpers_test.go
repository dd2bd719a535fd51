package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newItem(active, inStock bool, total string) Item {
	return Item{
		ID:         uuid.New(),
		ProductID:  uuid.New(),
		VariantID:  uuid.New(),
		Quantity:   1,
		Price:      dec(total),
		TotalPrice: dec(total),
		IsActive:   active,
		InStock:    inStock,
	}
}
