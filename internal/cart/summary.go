package cart

import "github.com/shopspring/decimal"

// Summary is the order-summary panel for the current selection.
type Summary struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize totals the selection. Vouchers are applied at checkout, so Discount is zero here.
func Summarize(sel *Selection) Summary {
	subtotal := sel.Total()
	return Summary{
		ItemCount: sel.Count(),
		Subtotal:  subtotal,
		Discount:  decimal.Zero,
		Total:     subtotal,
	}
}

// CanCheckout reports whether the summary has anything payable.
func (s Summary) CanCheckout() bool {
	return s.ItemCount > 0 && s.Total.IsPositive()
}
