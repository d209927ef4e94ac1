package ethereum

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend"
)

type uriBuilder struct{}

// NewURIBuilder returns an EIP-681 payment URI builder.
func NewURIBuilder() uriBuilder {
	return uriBuilder{}
}

// Build returns ethereum:<address>?value=<wei>. The value is an integer
// number of wei as wallets expect it.
func (uriBuilder) Build(address string, amount domain.CryptoAmount) (string, error) {
	if err := backend.ValidateURIArgs(address, amount, domain.ETH); err != nil {
		return "", err
	}
	if !common.IsHexAddress(address) {
		return "", domain.ErrInvalidAddress
	}
	return backend.BuildURI(
		domain.ETH.Scheme, common.HexToAddress(address).Hex(),
		[2]string{"value", amount.Units().String()},
	), nil
}
