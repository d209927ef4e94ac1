package domain

import "errors"

var (
	// ErrUnsupportedAddressType is returned when deriving an address of a type
	// not allowed for the asset.
	ErrUnsupportedAddressType = errors.New("address type not supported for asset")
	// ErrInvalidDerivationPath is returned when the derivation path template
	// cannot be resolved for the given index.
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrInvalidMasterPublicKey is returned when the master key is not a valid
	// extended public key.
	ErrInvalidMasterPublicKey = errors.New("invalid master public key")
	// ErrAmountTooSmall is returned when a strictly positive fiat amount
	// converts to zero minimal crypto units.
	ErrAmountTooSmall = errors.New("amount too small to be represented in minimal units")
	// ErrStaleOrMissingRate is returned when no usable exchange rate is available
	// for the requested currency.
	ErrStaleOrMissingRate = errors.New("exchange rate is stale or missing")
	// ErrChainDataUnavailable wraps any failure of the chain data source.
	// It must never be confused with "no payment observed".
	ErrChainDataUnavailable = errors.New("chain data unavailable")
	// ErrInvalidChainFact is returned when observed chain facts are malformed.
	ErrInvalidChainFact = errors.New("invalid chain fact")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidPolicy ...
	ErrInvalidPolicy = errors.New(
		"confirmation policy values must not be negative",
	)
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("address must not be empty")
	// ErrUnknownAsset ...
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrPrecisionMismatch is returned when combining amounts of different
	// precision.
	ErrPrecisionMismatch = errors.New("amounts have different precision")
	// ErrOrderNotFound ...
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists ...
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrWebhookNotFound ...
	ErrWebhookNotFound = errors.New("webhook not found")
)

// IsRetryable returns whether the given error may go away by retrying the same
// operation with the same inputs.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrChainDataUnavailable)
}
