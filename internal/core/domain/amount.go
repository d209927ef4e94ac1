package domain

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// CryptoAmount is an exact amount of an asset expressed as an integral number
// of minimal units (satoshi, wei) together with the asset precision.
// The zero value is zero with precision 0.
type CryptoAmount struct {
	units     *big.Int
	precision int32
}

// NewCryptoAmount returns an amount of the given minimal units.
func NewCryptoAmount(units int64, precision int32) CryptoAmount {
	return CryptoAmount{big.NewInt(units), precision}
}

// NewCryptoAmountFromBigInt returns an amount of the given minimal units.
// The given value is copied.
func NewCryptoAmountFromBigInt(units *big.Int, precision int32) CryptoAmount {
	if units == nil {
		return CryptoAmount{new(big.Int), precision}
	}
	return CryptoAmount{new(big.Int).Set(units), precision}
}

// ParseCryptoAmount parses an amount expressed in display units, ie. "0.0001"
// BTC. More decimal digits than the precision are rejected rather than
// rounded.
func ParseCryptoAmount(value string, precision int32) (CryptoAmount, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return CryptoAmount{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return NewCryptoAmountFromDecimal(dec, precision)
}

// NewCryptoAmountFromDecimal converts a display-unit decimal into an amount.
func NewCryptoAmountFromDecimal(
	value decimal.Decimal, precision int32,
) (CryptoAmount, error) {
	units := value.Shift(precision)
	if !units.IsInteger() {
		return CryptoAmount{}, fmt.Errorf(
			"amount %s exceeds precision of %d decimals", value, precision,
		)
	}
	return CryptoAmount{units.BigInt(), precision}, nil
}

func (a CryptoAmount) value() *big.Int {
	if a.units == nil {
		return new(big.Int)
	}
	return a.units
}

// Units returns a copy of the amount in minimal units.
func (a CryptoAmount) Units() *big.Int {
	return new(big.Int).Set(a.value())
}

// Precision returns the number of decimals of one whole unit of the asset.
func (a CryptoAmount) Precision() int32 {
	return a.precision
}

// Decimal returns the amount in display units.
func (a CryptoAmount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.value(), -a.precision)
}

// String renders the amount in display units with all decimals of the
// precision, never in scientific notation.
func (a CryptoAmount) String() string {
	return a.Decimal().StringFixed(a.precision)
}

// Add returns a + b. Both amounts must share the same precision.
func (a CryptoAmount) Add(b CryptoAmount) (CryptoAmount, error) {
	if a.precision != b.precision {
		return CryptoAmount{}, ErrPrecisionMismatch
	}
	return CryptoAmount{new(big.Int).Add(a.value(), b.value()), a.precision}, nil
}

// Sub returns a - b. Both amounts must share the same precision.
func (a CryptoAmount) Sub(b CryptoAmount) (CryptoAmount, error) {
	if a.precision != b.precision {
		return CryptoAmount{}, ErrPrecisionMismatch
	}
	return CryptoAmount{new(big.Int).Sub(a.value(), b.value()), a.precision}, nil
}

// Cmp compares the minimal units of the amounts.
func (a CryptoAmount) Cmp(b CryptoAmount) int {
	return a.value().Cmp(b.value())
}

// Sign returns -1, 0 or +1.
func (a CryptoAmount) Sign() int {
	return a.value().Sign()
}

func (a CryptoAmount) IsZero() bool {
	return a.Sign() == 0
}

func (a CryptoAmount) IsPositive() bool {
	return a.Sign() > 0
}

func (a CryptoAmount) IsNegative() bool {
	return a.Sign() < 0
}

func (a CryptoAmount) Equal(b CryptoAmount) bool {
	return a.precision == b.precision && a.Cmp(b) == 0
}

type cryptoAmountJSON struct {
	Units     string `json:"units"`
	Precision int32  `json:"precision"`
}

func (a CryptoAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(cryptoAmountJSON{a.value().String(), a.precision})
}

func (a *CryptoAmount) UnmarshalJSON(buf []byte) error {
	var v cryptoAmountJSON
	if err := json.Unmarshal(buf, &v); err != nil {
		return err
	}
	units, ok := new(big.Int).SetString(v.Units, 10)
	if !ok {
		return fmt.Errorf("invalid amount units %q", v.Units)
	}
	a.units = units
	a.precision = v.Precision
	return nil
}
