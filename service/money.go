package service

import "github.com/shopspring/decimal"

// currencyPrecision is the number of fractional digits carried by every
// monetary amount. Two amounts are equal iff their representations are
// equal at this precision.
const currencyPrecision int32 = 2

// roundCurrency rounds to currency precision using round-half-to-even,
// so repeated payout computations introduce no directional drift.
func roundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(currencyPrecision)
}

// validAmount reports whether d is a positive amount already expressed
// at currency precision.
func validAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(currencyPrecision))
}
