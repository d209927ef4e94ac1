package ports

import (
	"context"

	"github.com/tdex-network/merchantd/internal/core/domain"
)

// RateSource is the price oracle giving the price of a crypto asset in a fiat
// currency.
type RateSource interface {
	// Start starts keeping prices up to date, if the source needs to.
	Start() error
	// Stop stops the source and releases its resources.
	Stop()
	// GetRate returns the latest known rate or domain.ErrStaleOrMissingRate.
	GetRate(
		ctx context.Context, asset domain.Asset, currency string,
	) (*domain.ExchangeRate, error)
}
