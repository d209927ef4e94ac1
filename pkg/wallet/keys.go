package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// ParseExtendedPublicKey parses a base58 BIP32 extended public key. Version
// bytes are not checked against any network so that xpub, tpub, zpub and
// the like are all accepted.
func ParseExtendedPublicKey(xpub string) (*hdkeychain.ExtendedKey, error) {
	key, err := hdkeychain.NewKeyFromString(strings.TrimSpace(xpub))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExtendedKey, err)
	}
	if key.IsPrivate() {
		return nil, ErrPrivateExtendedKey
	}
	return key, nil
}

// DerivePublicKey derives the public key at the given non-hardened path from
// the extended public key.
func DerivePublicKey(
	key *hdkeychain.ExtendedKey, path DerivationPath,
) (*btcec.PublicKey, error) {
	if key.IsPrivate() {
		return nil, ErrPrivateExtendedKey
	}
	if path.IsHardened() {
		return nil, ErrHardenedIndex
	}

	child := key
	for _, step := range path {
		var err error
		if child, err = child.Derive(step); err != nil {
			return nil, err
		}
	}
	return child.ECPubKey()
}

// DerivePublicKeyFromTemplate parses the extended public key and derives the
// public key at the path obtained by resolving the template for index.
func DerivePublicKeyFromTemplate(
	xpub, template string, index uint32,
) (*btcec.PublicKey, error) {
	key, err := ParseExtendedPublicKey(xpub)
	if err != nil {
		return nil, err
	}
	path, err := ResolvePathTemplate(template, index)
	if err != nil {
		return nil, err
	}
	return DerivePublicKey(key, path)
}

// KeyFingerprint returns a short identifier of the extended key, suitable to
// namespace data related to it without storing the key itself.
func KeyFingerprint(xpub string) string {
	return hex.EncodeToString(btcutil.Hash160([]byte(strings.TrimSpace(xpub))))
}
