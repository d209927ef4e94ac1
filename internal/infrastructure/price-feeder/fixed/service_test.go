package fixedfeeder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/merchantd/internal/core/domain"
	fixedfeeder "github.com/tdex-network/merchantd/internal/infrastructure/price-feeder/fixed"
)

func TestGetRate(t *testing.T) {
	t.Parallel()

	feeder, err := fixedfeeder.NewService("btc:usd:65000, ETH:EUR:3000.5")
	require.NoError(t, err)
	require.NoError(t, feeder.Start())
	defer feeder.Stop()

	tests := []struct {
		name         string
		asset        domain.Asset
		currency     string
		expectedRate string
	}{
		{"btc", domain.BTC, "USD", "65000"},
		{"lbtc_falls_back_to_btc", domain.LBTC, "usd", "65000"},
		{"eth", domain.ETH, "EUR", "3000.5"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rate, err := feeder.GetRate(context.Background(), tt.asset, tt.currency)
			require.NoError(t, err)
			require.Equal(t, tt.expectedRate, rate.Rate.String())
			require.Equal(t, domain.NormalizeCurrency(tt.currency), rate.Currency)
			require.False(t, rate.AsOf.IsZero())
		})
	}

	_, err = feeder.GetRate(context.Background(), domain.ETH, "USD")
	require.ErrorIs(t, err, domain.ErrStaleOrMissingRate)
}

func TestFailingNewService(t *testing.T) {
	t.Parallel()

	tables := []string{
		"",
		"BTC:USD",
		"DOGE:USD:0.1",
		"BTC:DOLLAR:65000",
		"BTC:USD:abc",
		"BTC:USD:-1",
	}

	for _, table := range tables {
		_, err := fixedfeeder.NewService(table)
		require.Error(t, err, table)
	}
}
