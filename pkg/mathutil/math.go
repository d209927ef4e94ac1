package mathutil

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToDisplayUnits converts an integral amount of minimal units into the
// decimal amount of whole units of an asset with the given precision.
func ToDisplayUnits(units *big.Int, precision int32) decimal.Decimal {
	return decimal.NewFromBigInt(units, -precision)
}

// ToMinimalUnits converts an amount of whole units into minimal units,
// rounding half away from zero.
func ToMinimalUnits(amount decimal.Decimal, precision int32) *big.Int {
	return amount.Shift(precision).Round(0).BigInt()
}

// FormatDisplayUnits renders units as a plain decimal number of whole units
// with trailing zeros trimmed, ie. 10000 sats -> "0.0001".
func FormatDisplayUnits(units *big.Int, precision int32) string {
	return ToDisplayUnits(units, precision).String()
}

// DivRound takes two decimal.Decimal numbers and divides them x / y rounding
// the result at the given number of decimal places, half away from zero.
func DivRound(x, y decimal.Decimal, places int32) decimal.Decimal {
	return x.DivRound(y, places)
}

// MulRound takes two decimal.Decimal numbers and multiplies them x * y
// rounding the result at the given number of decimal places.
func MulRound(x, y decimal.Decimal, places int32) decimal.Decimal {
	return x.Mul(y).Round(places)
}
