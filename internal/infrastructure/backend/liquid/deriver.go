package liquid

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend"
	"github.com/vulpemventures/go-elements/network"
	"github.com/vulpemventures/go-elements/payment"
)

var supportedAddressTypes = []domain.AddressType{
	domain.AddressTypeP2PKH,
	domain.AddressTypeP2SHP2WPKH,
	domain.AddressTypeP2WPKH,
}

type deriver struct {
	net *network.Network
	// base58 encoding params of the network.
	params *chaincfg.Params
}

// NewDeriver returns an AddressDeriver of unconfidential Liquid addresses of
// the given network.
func NewDeriver(net *network.Network) *deriver {
	return &deriver{
		net: net,
		params: &chaincfg.Params{
			PubKeyHashAddrID: net.PubKeyHash,
			ScriptHashAddrID: net.ScriptHash,
			Bech32HRPSegwit:  net.Bech32,
		},
	}
}

func (d *deriver) SupportedAddressTypes() []domain.AddressType {
	return supportedAddressTypes
}

func (d *deriver) Derive(
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
	p2wpkh := payment.FromPublicKey(pubkey, d.net, nil)

	var addr string
	switch addressType {
	case domain.AddressTypeP2WPKH:
		addr, err = p2wpkh.WitnessPubKeyHash()
	case domain.AddressTypeP2PKH:
		var a *btcutil.AddressPubKeyHash
		if a, err = btcutil.NewAddressPubKeyHash(
			btcutil.Hash160(pubkey.SerializeCompressed()), d.params,
		); err == nil {
			addr = a.EncodeAddress()
		}
	case domain.AddressTypeP2SHP2WPKH:
		// The redeem script is the native segwit output script.
		var a *btcutil.AddressScriptHash
		if a, err = btcutil.NewAddressScriptHash(
			p2wpkh.WitnessScript, d.params,
		); err == nil {
			addr = a.EncodeAddress()
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode %s address: %w", addressType, err)
	}
	return addr, nil
}
