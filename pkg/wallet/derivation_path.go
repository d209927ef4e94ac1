package wallet

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// IndexPlaceholder marks the component of a path template to be replaced
	// by the address index. IndexWildcard is an alias.
	IndexPlaceholder = "{index}"
	IndexWildcard    = "*"
)

// DerivationPath is the internal representation of a hierarchical
// deterministic derivation path, relative to the key it is applied to.
type DerivationPath []uint32

// ParseDerivationPath converts a derivation path string to the
// internal binary representation
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	elems, err := splitPath(strPath)
	if err != nil {
		return nil, err
	}

	path := make(DerivationPath, 0, len(elems))
	for _, elem := range elems {
		value, err := parseComponent(elem)
		if err != nil {
			return nil, err
		}
		path = append(path, value)
	}
	return path, nil
}

// ResolvePathTemplate returns the non-hardened path obtained by replacing the
// index placeholder of the template with the given index. If the template has
// no placeholder the index is appended as last component.
func ResolvePathTemplate(template string, index uint32) (DerivationPath, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return nil, ErrHardenedIndex
	}

	elems, err := splitPath(template)
	if err != nil {
		return nil, err
	}

	path := make(DerivationPath, 0, len(elems)+1)
	placeholders := 0
	for _, elem := range elems {
		if elem == IndexPlaceholder || elem == IndexWildcard {
			placeholders++
			path = append(path, index)
			continue
		}
		value, err := parseComponent(elem)
		if err != nil {
			return nil, err
		}
		if value >= hdkeychain.HardenedKeyStart {
			return nil, ErrHardenedIndex
		}
		path = append(path, value)
	}

	switch placeholders {
	case 0:
		path = append(path, index)
	case 1:
	default:
		return nil, ErrMultiplePlaceholders
	}
	return path, nil
}

// IsHardened returns whether any component of the path is hardened.
func (path DerivationPath) IsHardened() bool {
	for _, c := range path {
		if c >= hdkeychain.HardenedKeyStart {
			return true
		}
	}
	return false
}

// String converts a binary derivation path to its canonical representation
func (path DerivationPath) String() string {
	if len(path) <= 0 {
		return ""
	}

	result := "m"
	for _, component := range path {
		var hardened bool
		if component >= hdkeychain.HardenedKeyStart {
			component -= hdkeychain.HardenedKeyStart
			hardened = true
		}
		result = fmt.Sprintf("%s/%d", result, component)
		if hardened {
			result += "'"
		}
	}
	return result
}

// splitPath returns the trimmed components of the given path, stripped of the
// leading "m" if any.
func splitPath(strPath string) ([]string, error) {
	if strings.TrimSpace(strPath) == "" {
		return nil, ErrNullDerivationPath
	}

	elems := strings.Split(strPath, "/")
	for i := range elems {
		elems[i] = strings.TrimSpace(elems[i])
	}
	if containsEmptyString(elems) {
		return nil, ErrMalformedDerivationPath
	}
	if elems[0] == "m" {
		elems = elems[1:]
	}
	if len(elems) <= 0 {
		return nil, ErrMalformedDerivationPath
	}
	return elems, nil
}

func parseComponent(elem string) (uint32, error) {
	var value uint32
	if strings.HasSuffix(elem, "'") || strings.HasSuffix(elem, "h") {
		value = hdkeychain.HardenedKeyStart
		elem = strings.TrimSpace(elem[:len(elem)-1])
	}

	// use big int for convertion
	bigval, ok := new(big.Int).SetString(elem, 0)
	if !ok {
		return 0, fmt.Errorf("%w: invalid elem '%s' in path", ErrMalformedDerivationPath, elem)
	}

	max := math.MaxUint32 - value
	if bigval.Sign() < 0 || bigval.Cmp(big.NewInt(int64(max))) > 0 {
		if value == 0 {
			return 0, fmt.Errorf(
				"%w: elem %v must be in range [0, %d]", ErrMalformedDerivationPath, bigval, max,
			)
		}
		return 0, fmt.Errorf(
			"%w: elem %v must be in hardened range [0, %d]", ErrMalformedDerivationPath, bigval, max,
		)
	}
	return value + uint32(bigval.Uint64()), nil
}

func containsEmptyString(composedPath []string) bool {
	for _, s := range composedPath {
		if s == "" {
			return true
		}
	}
	return false
}
