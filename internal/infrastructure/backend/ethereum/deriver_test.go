package ethereum_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend/ethereum"
)

const testXpub = "xpub6BgBgsespWvERF3LHQu6CnqdvfEvtMcQjYrcRzx53QJjSxarj2afYWcLteoGVky7D3UKDP9QyrLprQ3VCECoY49yfdDEHGCtMMj92pReUsQ"

func TestDerive(t *testing.T) {
	t.Parallel()

	deriver := ethereum.NewDeriver()
	seen := make(map[string]bool)

	for i := uint32(0); i < 10; i++ {
		addr, err := deriver.Derive(testXpub, i, domain.AddressTypeEIP55, "m/0")
		require.NoError(t, err)
		require.True(t, common.IsHexAddress(addr))
		// Checksummed encoding.
		require.Equal(t, common.HexToAddress(addr).Hex(), addr)
		require.False(t, seen[addr])
		seen[addr] = true

		again, err := deriver.Derive(testXpub, i, domain.AddressTypeEIP55, "m/0/*")
		require.NoError(t, err)
		require.Equal(t, addr, again)
	}

	_, err := deriver.Derive(testXpub, 0, domain.AddressTypeP2WPKH, "m/0")
	require.ErrorIs(t, err, domain.ErrUnsupportedAddressType)
}

func TestBuildURI(t *testing.T) {
	t.Parallel()

	builder := ethereum.NewURIBuilder()
	addr := "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"

	uri, err := builder.Build(addr, domain.NewCryptoAmount(1000000000000000, 18))
	require.NoError(t, err)
	require.Equal(t, "ethereum:"+addr+"?value=1000000000000000", uri)

	amount, err := domain.ParseCryptoAmount("12345.000000000000000001", 18)
	require.NoError(t, err)
	uri, err = builder.Build(addr, amount)
	require.NoError(t, err)
	require.Equal(t, "ethereum:"+addr+"?value=12345000000000000000001", uri)

	_, err = builder.Build("not-an-address", amount)
	require.ErrorIs(t, err, domain.ErrInvalidAddress)

	_, err = builder.Build(addr, domain.NewCryptoAmount(1, 8))
	require.ErrorIs(t, err, domain.ErrPrecisionMismatch)
}
