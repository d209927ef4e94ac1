package bitcoin

import (
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend"
	"github.com/tdex-network/merchantd/pkg/mathutil"
)

type uriBuilder struct{}

// NewURIBuilder returns a BIP21 payment URI builder.
func NewURIBuilder() uriBuilder {
	return uriBuilder{}
}

// Build returns bitcoin:<address>?amount=<btc>, the amount in BTC with
// trailing zeros trimmed.
func (uriBuilder) Build(address string, amount domain.CryptoAmount) (string, error) {
	if err := backend.ValidateURIArgs(address, amount, domain.BTC); err != nil {
		return "", err
	}
	return backend.BuildURI(
		domain.BTC.Scheme, address,
		[2]string{"amount", mathutil.FormatDisplayUnits(amount.Units(), amount.Precision())},
	), nil
}
