package liquid

import (
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend"
	"github.com/tdex-network/merchantd/pkg/mathutil"
	"github.com/vulpemventures/go-elements/network"
)

type uriBuilder struct {
	assetID string
}

// NewURIBuilder returns a builder of L-BTC payment URIs for the given network.
func NewURIBuilder(net *network.Network) uriBuilder {
	return uriBuilder{net.AssetID}
}

// Build returns liquidnetwork:<address>?amount=<lbtc>&assetid=<asset>.
func (b uriBuilder) Build(address string, amount domain.CryptoAmount) (string, error) {
	if err := backend.ValidateURIArgs(address, amount, domain.LBTC); err != nil {
		return "", err
	}
	return backend.BuildURI(
		domain.LBTC.Scheme, address,
		[2]string{"amount", mathutil.FormatDisplayUnits(amount.Units(), amount.Precision())},
		[2]string{"assetid", b.assetID},
	), nil
}
