package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend"
)

var supportedAddressTypes = []domain.AddressType{
	domain.AddressTypeP2PKH,
	domain.AddressTypeP2SHP2WPKH,
	domain.AddressTypeP2WPKH,
	domain.AddressTypeP2TR,
}

type deriver struct {
	net *chaincfg.Params
}

// NewDeriver returns an AddressDeriver for Bitcoin addresses of the given
// network.
func NewDeriver(net *chaincfg.Params) *deriver {
	return &deriver{net}
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
	pubkeyHash := btcutil.Hash160(pubkey.SerializeCompressed())

	var addr btcutil.Address
	switch addressType {
	case domain.AddressTypeP2PKH:
		addr, err = btcutil.NewAddressPubKeyHash(pubkeyHash, d.net)
	case domain.AddressTypeP2WPKH:
		addr, err = btcutil.NewAddressWitnessPubKeyHash(pubkeyHash, d.net)
	case domain.AddressTypeP2SHP2WPKH:
		var witnessAddr *btcutil.AddressWitnessPubKeyHash
		witnessAddr, err = btcutil.NewAddressWitnessPubKeyHash(pubkeyHash, d.net)
		if err != nil {
			break
		}
		var redeemScript []byte
		redeemScript, err = txscript.PayToAddrScript(witnessAddr)
		if err != nil {
			break
		}
		addr, err = btcutil.NewAddressScriptHash(redeemScript, d.net)
	case domain.AddressTypeP2TR:
		// BIP86 key path only output key.
		outputKey := txscript.ComputeTaprootKeyNoScript(pubkey)
		addr, err = btcutil.NewAddressTaproot(
			schnorr.SerializePubKey(outputKey), d.net,
		)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode %s address: %w", addressType, err)
	}
	return addr.EncodeAddress(), nil
}
