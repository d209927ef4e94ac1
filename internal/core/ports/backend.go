package ports

import (
	"context"

	"github.com/tdex-network/merchantd/internal/core/domain"
)

// AddressDeriver derives receiving addresses from a merchant's extended public
// key. Same inputs always give the same address and distinct indexes give
// distinct addresses.
type AddressDeriver interface {
	Derive(
		masterPublicKey string, index uint32,
		addressType domain.AddressType, derivationPathTemplate string,
	) (string, error)
	SupportedAddressTypes() []domain.AddressType
}

// FiatConverter converts amounts between fiat and crypto given an exchange
// rate. Implementations never fetch rates themselves.
type FiatConverter interface {
	ToCrypto(
		amount domain.FiatAmount, rate *domain.ExchangeRate,
	) (domain.CryptoAmount, error)
	ToFiat(
		amount domain.CryptoAmount, rate *domain.ExchangeRate,
	) (domain.FiatAmount, error)
}

// PaymentURIBuilder renders a wallet-scannable payment request.
type PaymentURIBuilder interface {
	Build(address string, amount domain.CryptoAmount) (string, error)
}

// ChainObserver fetches what the chain says about an address. Sources that
// can't report per-tx confirmations use requiredConfirmations as the depth
// at which the confirmed balance is read. Any failure is wrapped in
// domain.ErrChainDataUnavailable.
type ChainObserver interface {
	ObserveAddress(
		ctx context.Context, address string, requiredConfirmations int,
	) (*domain.ChainFacts, error)
}

// BalanceOnlyObserver is implemented by chain observers that never report
// transactions, only a confirmed balance without tx hash.
type BalanceOnlyObserver interface {
	BalanceOnly() bool
}

// IsBalanceOnly returns whether payments to addresses watched by the observer
// can only be accepted as confirmed balances without hash.
func IsBalanceOnly(observer ChainObserver) bool {
	o, ok := observer.(BalanceOnlyObserver)
	return ok && o.BalanceOnly()
}

// ReconciliationEngine classifies chain facts against an expected amount.
type ReconciliationEngine interface {
	Evaluate(in domain.EvaluationInput) (domain.PaymentOutcome, error)
}

// Backend bundles the capabilities needed to accept payments of one asset.
type Backend interface {
	Asset() domain.Asset
	// MasterPublicKey is the merchant extended public key addresses are
	// derived from.
	MasterPublicKey() string
	DefaultAddressType() domain.AddressType
	AddressDeriver() AddressDeriver
	FiatConverter() FiatConverter
	PaymentURIBuilder() PaymentURIBuilder
	ChainObserver() ChainObserver
}
