package application

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/merchantd/internal/core/domain"
)

type mockChainObserver struct {
	mock.Mock
}

func (m *mockChainObserver) ObserveAddress(
	ctx context.Context, address string, requiredConfirmations int,
) (*domain.ChainFacts, error) {
	args := m.Called(ctx, address, requiredConfirmations)
	var facts *domain.ChainFacts
	if a := args.Get(0); a != nil {
		facts = a.(*domain.ChainFacts)
	}
	return facts, args.Error(1)
}

// mockBalanceOnlyObserver is a chain observer that only reports balances.
type mockBalanceOnlyObserver struct {
	mockChainObserver
}

func (m *mockBalanceOnlyObserver) BalanceOnly() bool {
	return true
}

type mockRateSource struct {
	mock.Mock
}

func (m *mockRateSource) Start() error {
	return m.Called().Error(0)
}

func (m *mockRateSource) Stop() {
	m.Called()
}

func (m *mockRateSource) GetRate(
	ctx context.Context, asset domain.Asset, currency string,
) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, asset, currency)
	var rate *domain.ExchangeRate
	if a := args.Get(0); a != nil {
		rate = a.(*domain.ExchangeRate)
	}
	return rate, args.Error(1)
}

type mockPubSub struct {
	mock.Mock
}

func (m *mockPubSub) Subscribe(
	ctx context.Context, topic, endpoint, secret string,
) (string, error) {
	args := m.Called(ctx, topic, endpoint, secret)
	return args.String(0), args.Error(1)
}

func (m *mockPubSub) Unsubscribe(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPubSub) ListSubscriptions(
	ctx context.Context,
) ([]domain.Webhook, error) {
	args := m.Called(ctx)
	var hooks []domain.Webhook
	if a := args.Get(0); a != nil {
		hooks = a.([]domain.Webhook)
	}
	return hooks, args.Error(1)
}

func (m *mockPubSub) Publish(ctx context.Context, topic, message string) error {
	return m.Called(ctx, topic, message).Error(0)
}
