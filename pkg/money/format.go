package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// vndSuffix mirrors the vi-VN currency layout: a no-break space then the đồng sign.
const vndSuffix = "\u00a0₫"

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders amount as whole đồng with vi-VN digit grouping, e.g. "100.000 ₫".
func FormatVND(amount decimal.Decimal) string {
	return vndPrinter.Sprintf("%d", amount.Round(0).IntPart()) + vndSuffix
}
