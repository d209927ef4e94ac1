package backend

import (
	"fmt"
	"net/url"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"github.com/tdex-network/merchantd/pkg/wallet"
)

// Backend bundles the per-asset implementations of the payment capabilities.
type Backend struct {
	asset              domain.Asset
	masterPublicKey    string
	defaultAddressType domain.AddressType
	deriver            ports.AddressDeriver
	converter          ports.FiatConverter
	uriBuilder         ports.PaymentURIBuilder
	observer           ports.ChainObserver
}

// Opts defines the parameters needed to create a Backend with New.
type Opts struct {
	Asset              domain.Asset
	MasterPublicKey    string
	DefaultAddressType domain.AddressType
	Deriver            ports.AddressDeriver
	Converter          ports.FiatConverter
	URIBuilder         ports.PaymentURIBuilder
	Observer           ports.ChainObserver
}

func (o Opts) validate() error {
	if o.Asset.Ticker == "" {
		return domain.ErrUnknownAsset
	}
	if o.MasterPublicKey == "" {
		return fmt.Errorf("missing master public key for %s", o.Asset.Ticker)
	}
	if o.Deriver == nil || o.Converter == nil || o.URIBuilder == nil || o.Observer == nil {
		return fmt.Errorf("missing capability for %s backend", o.Asset.Ticker)
	}
	if !IsSupportedAddressType(o.Deriver, o.DefaultAddressType) {
		return fmt.Errorf(
			"%w: %s for %s", domain.ErrUnsupportedAddressType,
			o.DefaultAddressType, o.Asset.Ticker,
		)
	}
	return nil
}

// New returns a Backend after making sure that addresses can be derived from
// the given master key.
func New(opts Opts) (*Backend, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if _, err := wallet.ParseExtendedPublicKey(opts.MasterPublicKey); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMasterPublicKey, err)
	}

	return &Backend{
		asset:              opts.Asset,
		masterPublicKey:    opts.MasterPublicKey,
		defaultAddressType: opts.DefaultAddressType,
		deriver:            opts.Deriver,
		converter:          opts.Converter,
		uriBuilder:         opts.URIBuilder,
		observer:           opts.Observer,
	}, nil
}

func (b *Backend) Asset() domain.Asset                        { return b.asset }
func (b *Backend) MasterPublicKey() string                    { return b.masterPublicKey }
func (b *Backend) DefaultAddressType() domain.AddressType     { return b.defaultAddressType }
func (b *Backend) AddressDeriver() ports.AddressDeriver       { return b.deriver }
func (b *Backend) FiatConverter() ports.FiatConverter         { return b.converter }
func (b *Backend) PaymentURIBuilder() ports.PaymentURIBuilder { return b.uriBuilder }
func (b *Backend) ChainObserver() ports.ChainObserver         { return b.observer }

// IsSupportedAddressType returns whether the deriver can derive addresses of
// the given type.
func IsSupportedAddressType(
	deriver ports.AddressDeriver, addressType domain.AddressType,
) bool {
	for _, t := range deriver.SupportedAddressTypes() {
		if t == addressType {
			return true
		}
	}
	return false
}

// DerivePublicKey derives the public key for index from the master key
// following the path template, mapping failures to domain errors.
func DerivePublicKey(
	masterPublicKey, pathTemplate string, index uint32,
) (*btcec.PublicKey, error) {
	if pathTemplate == "" {
		pathTemplate = domain.DefaultDerivationPath
	}

	key, err := wallet.ParseExtendedPublicKey(masterPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMasterPublicKey, err)
	}
	path, err := wallet.ResolvePathTemplate(pathTemplate, index)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDerivationPath, err)
	}
	pubkey, err := wallet.DerivePublicKey(key, path)
	if err != nil {
		// BIP32 gives an invalid child with negligible probability, in which
		// case the index must be skipped.
		return nil, fmt.Errorf(
			"%w: index %d: %s", domain.ErrInvalidDerivationPath, index, err,
		)
	}
	return pubkey, nil
}

// BuildURI renders <scheme>:<address>?<params> keeping the params in the
// given order.
func BuildURI(scheme, address string, params ...[2]string) string {
	uri := fmt.Sprintf("%s:%s", scheme, address)
	for i, p := range params {
		sep := "&"
		if i == 0 {
			sep = "?"
		}
		uri += fmt.Sprintf("%s%s=%s", sep, p[0], url.QueryEscape(p[1]))
	}
	return uri
}

// ValidateURIArgs checks the arguments common to every URI builder.
func ValidateURIArgs(
	address string, amount domain.CryptoAmount, asset domain.Asset,
) error {
	if address == "" {
		return domain.ErrInvalidAddress
	}
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if amount.Precision() != asset.Precision {
		return domain.ErrPrecisionMismatch
	}
	return nil
}
