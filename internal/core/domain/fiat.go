package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// currencies whose minor unit is not the cent.
	currencyDecimals = map[string]int32{
		"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
		"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
		"XOF": 0, "XPF": 0, "HUF": 0,
		"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
	}
)

const defaultCurrencyDecimals = 2

// FiatAmount is a decimal amount tagged with an ISO 4217 currency code.
type FiatAmount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// NewFiatAmount parses the given value and normalizes the currency code.
func NewFiatAmount(value, currency string) (FiatAmount, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return FiatAmount{}, fmt.Errorf("invalid fiat amount %q: %w", value, err)
	}
	cur := NormalizeCurrency(currency)
	if len(cur) != 3 {
		return FiatAmount{}, fmt.Errorf("invalid currency code %q", currency)
	}
	return FiatAmount{dec, cur}, nil
}

// String renders the amount with the conventional decimals of the currency.
func (f FiatAmount) String() string {
	return fmt.Sprintf(
		"%s %s", f.Value.StringFixed(CurrencyDecimals(f.Currency)), f.Currency,
	)
}

// CurrencyDecimals returns the number of decimals of the minor unit of the
// given currency.
func CurrencyDecimals(currency string) int32 {
	if d, ok := currencyDecimals[NormalizeCurrency(currency)]; ok {
		return d
	}
	return defaultCurrencyDecimals
}

// NormalizeCurrency ...
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ExchangeRate is the price of one whole crypto unit expressed in a fiat
// currency at a given time.
type ExchangeRate struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
	AsOf     time.Time       `json:"as_of"`
}

// IsUsableFor returns whether the rate can be used to convert amounts of the
// given currency at time now, given a max age (0 means no age limit).
func (r *ExchangeRate) IsUsableFor(
	currency string, now time.Time, maxAge time.Duration,
) bool {
	if r == nil || !r.Rate.IsPositive() {
		return false
	}
	if NormalizeCurrency(r.Currency) != NormalizeCurrency(currency) {
		return false
	}
	if maxAge > 0 && now.Sub(r.AsOf) > maxAge {
		return false
	}
	return true
}
