package domain

import "strings"

const (
	AddressTypeP2PKH      AddressType = "p2pkh"
	AddressTypeP2SHP2WPKH AddressType = "p2sh-p2wpkh"
	AddressTypeP2WPKH     AddressType = "p2wpkh"
	AddressTypeP2TR       AddressType = "p2tr"
	AddressTypeEIP55      AddressType = "eip55"

	// DefaultDerivationPath is the receive branch of the account the master
	// public key refers to. The index is appended as last component.
	DefaultDerivationPath = "m/0"

	// DefaultRequiredConfirmations and DefaultAcceptWithoutHashWindow are the
	// values used when no policy is given for an order.
	DefaultRequiredConfirmations   = 1
	DefaultAcceptWithoutHashWindow = 20
)

var (
	BTC = Asset{
		Ticker:      "BTC",
		Scheme:      "bitcoin",
		Precision:   8,
		DisplayName: "Bitcoin",
	}
	LBTC = Asset{
		Ticker:      "LBTC",
		Scheme:      "liquidnetwork",
		Precision:   8,
		DisplayName: "Liquid Bitcoin",
	}
	ETH = Asset{
		Ticker:      "ETH",
		Scheme:      "ethereum",
		Precision:   18,
		DisplayName: "Ether",
	}

	wellKnownAssets = map[string]Asset{
		BTC.Ticker:  BTC,
		LBTC.Ticker: LBTC,
		ETH.Ticker:  ETH,
	}
)

// AddressType identifies the script/encoding of a derived address.
type AddressType string

// Asset describes a crypto asset a merchant can be paid with.
type Asset struct {
	Ticker      string
	Scheme      string
	Precision   int32
	DisplayName string
}

// AssetFromTicker returns the well known asset for the given ticker.
func AssetFromTicker(ticker string) (Asset, error) {
	asset, ok := wellKnownAssets[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return Asset{}, ErrUnknownAsset
	}
	return asset, nil
}

// Zero returns the zero amount of the asset.
func (a Asset) Zero() CryptoAmount {
	return NewCryptoAmount(0, a.Precision)
}
