package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ProfitRate returns the fee-adjusted profit of buying at buyPrice and
// selling at sellPrice, as a percentage of buyPrice rounded to three
// decimal places. Fees are percentages; the transfer fee is charged once,
// on the sell leg. buyPrice must be positive.
//
//	actualBuy  = buyPrice  * (1 + buyFeePct/100)
//	actualSell = sellPrice * (1 - sellFeePct/100 - transferFeePct/100)
//	rate       = (actualSell - actualBuy) / buyPrice * 100
func ProfitRate(buyPrice, buyFeePct, sellPrice, sellFeePct, transferFeePct decimal.Decimal) decimal.Decimal {
	actualBuy := buyPrice.Mul(decimal.NewFromInt(1).Add(buyFeePct.Div(hundred)))
	actualSell := sellPrice.Mul(decimal.NewFromInt(1).Sub(sellFeePct.Div(hundred)).Sub(transferFeePct.Div(hundred)))
	return actualSell.Sub(actualBuy).Div(buyPrice).Mul(hundred).Round(3)
}
