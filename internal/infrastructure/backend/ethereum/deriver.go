package ethereum

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend"
)

var supportedAddressTypes = []domain.AddressType{domain.AddressTypeEIP55}

type deriver struct{}

// NewDeriver returns an AddressDeriver of EIP-55 checksummed addresses.
func NewDeriver() deriver {
	return deriver{}
}

func (d deriver) SupportedAddressTypes() []domain.AddressType {
	return supportedAddressTypes
}

func (d deriver) Derive(
	masterPublicKey string, index uint32,
	addressType domain.AddressType, derivationPathTemplate string,
) (string, error) {
	if !backend.IsSupportedAddressType(d, addressType) {
		return "", domain.ErrUnsupportedAddressType
	}

	pubkey, err := backend.DerivePublicKey(
		masterPublicKey, derivationPathTemplate, index,
	)
	if err != nil {
		return "", err
	}
	ecdsaKey, err := crypto.DecompressPubkey(pubkey.SerializeCompressed())
	if err != nil {
		return "", fmt.Errorf("failed to convert derived key: %w", err)
	}
	return crypto.PubkeyToAddress(*ecdsaKey).Hex(), nil
}
