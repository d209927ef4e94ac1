package db_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	dbbadger "github.com/tdex-network/merchantd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/merchantd/internal/infrastructure/storage/db/inmemory"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type repoManager struct {
	Name    string
	Manager ports.RepoManager
}

func createRepoManagers(t *testing.T) []repoManager {
	badgerDBManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerDBManager.Close)

	return []repoManager{
		{
			Name:    "badger",
			Manager: badgerDBManager,
		},
		{
			Name:    "inmemory",
			Manager: inmemory.NewRepoManager(),
		},
	}
}

func makeOrder(t *testing.T, asset domain.Asset, index uint32, createdAt time.Time) *domain.Order {
	price, err := domain.NewFiatAmount("10.50", "USD")
	require.NoError(t, err)

	order, err := domain.NewOrder(domain.NewOrderArgs{
		Asset:           asset.Ticker,
		AddressType:     domain.AddressTypeP2WPKH,
		DerivationIndex: index,
		Address:         "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
		PaymentURI:      "bitcoin:bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu?amount=0.00016154",
		Price:           price,
		Rate: domain.ExchangeRate{
			Currency: "USD",
			Rate:     decimal.RequireFromString("65000"),
			AsOf:     createdAt,
		},
		ExpectedAmount: domain.NewCryptoAmount(16154, asset.Precision),
		Policy:         domain.DefaultPolicy(),
		TTL:            time.Hour,
		Now:            createdAt,
	})
	require.NoError(t, err)
	return order
}
