package backend_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend"
)

func newRate(currency, rate string, asOf time.Time) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		Currency: currency,
		Rate:     decimal.RequireFromString(rate),
		AsOf:     asOf,
	}
}

func fiat(t *testing.T, value, currency string) domain.FiatAmount {
	amount, err := domain.NewFiatAmount(value, currency)
	require.NoError(t, err)
	return amount
}

func TestToCrypto(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name          string
		asset         domain.Asset
		amount        string
		rate          string
		expectedUnits string
	}{
		{"exact", domain.BTC, "10", "100000", "10000"},
		{"round_down", domain.BTC, "1", "3", "33333333"},
		{"round_half_up", domain.BTC, "2", "3", "66666667"},
		{"one_sat", domain.BTC, "0.0005", "100000", "1"},
		{"wei", domain.ETH, "3", "3000", "1000000000000000"},
		{"large_wei", domain.ETH, "1000000", "0.5", "2000000000000000000000000"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			converter := backend.NewConverter(tt.asset, time.Minute)
			amount, err := converter.ToCrypto(fiat(t, tt.amount, "USD"), newRate("USD", tt.rate, now))
			require.NoError(t, err)
			require.Equal(t, tt.expectedUnits, amount.Units().String())
			require.Equal(t, tt.asset.Precision, amount.Precision())
		})
	}
}

func TestFailingToCrypto(t *testing.T) {
	t.Parallel()

	now := time.Now()
	converter := backend.NewConverter(domain.BTC, time.Minute)

	tests := []struct {
		name          string
		amount        domain.FiatAmount
		rate          *domain.ExchangeRate
		expectedError error
	}{
		{"too_small", fiat(t, "0.0000001", "USD"), newRate("USD", "100000", now), domain.ErrAmountTooSmall},
		{"negative", fiat(t, "-1", "USD"), newRate("USD", "100000", now), domain.ErrInvalidAmount},
		{"zero", fiat(t, "0", "USD"), newRate("USD", "100000", now), domain.ErrInvalidAmount},
		{"missing_rate", fiat(t, "10", "USD"), nil, domain.ErrStaleOrMissingRate},
		{"stale_rate", fiat(t, "10", "USD"), newRate("USD", "100000", now.Add(-time.Hour)), domain.ErrStaleOrMissingRate},
		{"other_currency", fiat(t, "10", "USD"), newRate("EUR", "100000", now), domain.ErrStaleOrMissingRate},
		{"zero_rate", fiat(t, "10", "USD"), newRate("USD", "0", now), domain.ErrStaleOrMissingRate},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := converter.ToCrypto(tt.amount, tt.rate)
			require.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestToFiat(t *testing.T) {
	t.Parallel()

	now := time.Now()
	converter := backend.NewConverter(domain.BTC, 0)

	amount, err := converter.ToFiat(domain.NewCryptoAmount(10000, 8), newRate("usd", "65432.10", now))
	require.NoError(t, err)
	require.Equal(t, "6.54", amount.Value.String())
	require.Equal(t, "USD", amount.Currency)

	amount, err = converter.ToFiat(domain.NewCryptoAmount(10000, 8), newRate("JPY", "9876543", now))
	require.NoError(t, err)
	require.Equal(t, "988", amount.Value.String())

	// No max age configured, old rates are fine.
	_, err = converter.ToFiat(domain.NewCryptoAmount(1, 8), newRate("USD", "1", now.Add(-24*time.Hour)))
	require.NoError(t, err)

	_, err = converter.ToFiat(domain.NewCryptoAmount(1, 18), newRate("USD", "1", now))
	require.ErrorIs(t, err, domain.ErrPrecisionMismatch)

	_, err = converter.ToFiat(domain.NewCryptoAmount(1, 8), nil)
	require.ErrorIs(t, err, domain.ErrStaleOrMissingRate)
}

func TestConversionRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	rates := []string{"65000", "3123.45", "0.37", "999999"}
	amounts := []string{"0.01", "1", "9.99", "123.45", "100000"}

	for _, asset := range []domain.Asset{domain.BTC, domain.ETH} {
		converter := backend.NewConverter(asset, 0)
		for _, r := range rates {
			rate := newRate("USD", r, now)
			for _, a := range amounts {
				f := fiat(t, a, "USD")

				crypto, err := converter.ToCrypto(f, rate)
				if err != nil {
					require.ErrorIs(t, err, domain.ErrAmountTooSmall)
					continue
				}
				back, err := converter.ToFiat(crypto, rate)
				require.NoError(t, err)

				diff := back.Value.Sub(f.Value).Abs()
				require.True(
					t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")),
					"%s %s at %s: got back %s", asset.Ticker, a, r, back.Value,
				)
			}
		}
	}
}
