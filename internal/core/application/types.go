package application

import (
	"strings"
	"time"

	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"github.com/tdex-network/merchantd/pkg/crawler"
)

// BackendRegistry gives access to the backends of the enabled assets.
type BackendRegistry interface {
	Get(ticker string) (ports.Backend, error)
	Assets() []string
}

// Opts defines the parameters needed for creating a PaymentService.
type Opts struct {
	Backends    BackendRegistry   `validate:"required"`
	RepoManager ports.RepoManager `validate:"required"`
	RateSource  ports.RateSource  `validate:"required"`
	Crawler     crawler.Service   `validate:"required"`
	// PubSub is optional, no notification is sent if nil.
	PubSub ports.PubSub
	// Metrics is optional, collectors are not registered if nil.
	Metrics *Metrics

	DefaultPolicy  domain.ConfirmationPolicy
	DerivationPath string
	// OrderTTL is the lifetime of new orders, 0 means they never expire.
	OrderTTL     time.Duration `validate:"gte=0"`
	FetchRetries int           `validate:"gte=0"`
	RetryBackoff time.Duration `validate:"gte=0"`
}

// NewOrderArgs holds the request of opening a payment order of a fiat
// amount to be paid with the given asset.
type NewOrderArgs struct {
	Asset    string `validate:"required"`
	Amount   string `validate:"required,numeric"`
	Currency string `validate:"required,iso4217"`
	// AddressType defaults to the one configured for the asset.
	AddressType string `validate:"omitempty,oneof=p2pkh p2sh-p2wpkh p2wpkh p2tr eip55"`
	// RequiredConfirmations and AcceptWithoutHashWindowMinutes override the
	// configured confirmation policy, if set.
	RequiredConfirmations          *int
	AcceptWithoutHashWindowMinutes *int
}

func (a NewOrderArgs) policy(base domain.ConfirmationPolicy) domain.ConfirmationPolicy {
	if a.RequiredConfirmations != nil {
		base.RequiredConfirmations = *a.RequiredConfirmations
	}
	if a.AcceptWithoutHashWindowMinutes != nil {
		base.AcceptWithoutHashWindowMinutes = *a.AcceptWithoutHashWindowMinutes
	}
	return base
}

func (a NewOrderArgs) normalize() NewOrderArgs {
	a.Asset = strings.ToUpper(strings.TrimSpace(a.Asset))
	a.Amount = strings.TrimSpace(a.Amount)
	a.Currency = domain.NormalizeCurrency(a.Currency)
	a.AddressType = strings.ToLower(strings.TrimSpace(a.AddressType))
	return a
}

type webhookArgs struct {
	Topic    string `validate:"required"`
	Endpoint string `validate:"required,url"`
}

// Conversion is the result of converting an amount with an exchange rate.
type Conversion struct {
	Asset  domain.Asset
	Crypto domain.CryptoAmount
	Fiat   domain.FiatAmount
	Rate   domain.ExchangeRate
}
