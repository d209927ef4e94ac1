package backend

import (
	"time"

	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/pkg/mathutil"
)

// Converter implements ports.FiatConverter for an asset of given precision.
// Fiat to crypto conversions round half up to the minimal unit, crypto to
// fiat ones to the conventional decimals of the currency.
type Converter struct {
	precision  int32
	maxRateAge time.Duration
	now        func() time.Time
}

// NewConverter returns a converter that refuses rates older than maxRateAge.
// A zero maxRateAge disables the check.
func NewConverter(asset domain.Asset, maxRateAge time.Duration) *Converter {
	return &Converter{asset.Precision, maxRateAge, time.Now}
}

func (c *Converter) ToCrypto(
	amount domain.FiatAmount, rate *domain.ExchangeRate,
) (domain.CryptoAmount, error) {
	if !rate.IsUsableFor(amount.Currency, c.now(), c.maxRateAge) {
		return domain.CryptoAmount{}, domain.ErrStaleOrMissingRate
	}
	if !amount.Value.IsPositive() {
		return domain.CryptoAmount{}, domain.ErrInvalidAmount
	}

	units := mathutil.DivRound(amount.Value.Shift(c.precision), rate.Rate, 0)
	if units.IsZero() {
		return domain.CryptoAmount{}, domain.ErrAmountTooSmall
	}
	return domain.NewCryptoAmountFromBigInt(units.BigInt(), c.precision), nil
}

func (c *Converter) ToFiat(
	amount domain.CryptoAmount, rate *domain.ExchangeRate,
) (domain.FiatAmount, error) {
	if rate == nil || !rate.IsUsableFor(rate.Currency, c.now(), c.maxRateAge) {
		return domain.FiatAmount{}, domain.ErrStaleOrMissingRate
	}
	if amount.IsNegative() {
		return domain.FiatAmount{}, domain.ErrInvalidAmount
	}
	if amount.Precision() != c.precision {
		return domain.FiatAmount{}, domain.ErrPrecisionMismatch
	}

	currency := domain.NormalizeCurrency(rate.Currency)
	value := mathutil.MulRound(
		amount.Decimal(), rate.Rate, domain.CurrencyDecimals(currency),
	)
	return domain.FiatAmount{Value: value, Currency: currency}, nil
}
