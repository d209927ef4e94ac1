package wallet

import "errors"

var (
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New("path must not start or end with a '/' or contain empty components")
	// ErrHardenedIndex is returned when a hardened derivation is requested from
	// an extended public key.
	ErrHardenedIndex = errors.New("hardened derivation is not possible from a public key")
	// ErrMultiplePlaceholders ...
	ErrMultiplePlaceholders = errors.New("path template must contain at most one index placeholder")
	// ErrInvalidExtendedKey ...
	ErrInvalidExtendedKey = errors.New("invalid extended key")
	// ErrPrivateExtendedKey is returned when an extended private key is given
	// where a public one is expected.
	ErrPrivateExtendedKey = errors.New("extended key must be public")
)
