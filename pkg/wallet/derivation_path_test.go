package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		input  string
		output DerivationPath
		err    error
	}{
		// Plain absolute derivation paths
		{"m/84'/0'/0'/0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}, nil},
		{"m/84h/0h/0h/128", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 128}, nil},
		{"m/2147483732/2147483648/2147483648/0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}, nil},

		// Hexadecimal absolute derivation paths
		{"m/0x54'/0x00'/0x00'/0x80", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 128}, nil},

		// Weird inputs just to ensure they work
		{"	m  /   84			'\n/\n   00	\n\n\t'   /\n0 ' /\t\t	0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}, nil},

		// Relative derivation paths
		{"0'/0/0", DerivationPath{hdkeychain.HardenedKeyStart, 0, 0}, nil},
		{"0/0", DerivationPath{0, 0}, nil},
		{"0", DerivationPath{0}, nil},

		// Invalid derivation paths
		{"", nil, ErrNullDerivationPath},
		{"m", nil, ErrMalformedDerivationPath},
		{"m/", nil, ErrMalformedDerivationPath},
		{"/84'/0'/0'/0", nil, ErrMalformedDerivationPath},
		{"m/2147483648'", nil, ErrMalformedDerivationPath},
		{"m/-1'", nil, ErrMalformedDerivationPath},
		{"m/abc", nil, ErrMalformedDerivationPath},
	}
	for _, tt := range tests {
		path, err := ParseDerivationPath(tt.input)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.input)
		} else {
			assert.NoError(t, err, tt.input)
		}
		assert.Equal(t, tt.output, path, tt.input)
	}
}

func TestResolvePathTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		index    uint32
		expected DerivationPath
	}{
		{"default_receive_branch", "m/0", 7, DerivationPath{0, 7}},
		{"placeholder", "m/0/{index}", 7, DerivationPath{0, 7}},
		{"wildcard", "m/1/*", 3, DerivationPath{1, 3}},
		{"placeholder_in_the_middle", "m/{index}/5", 2, DerivationPath{2, 5}},
		{"without_prefix", "0", 0, DerivationPath{0, 0}},
		{"max_index", "m/0", hdkeychain.HardenedKeyStart - 1, DerivationPath{0, hdkeychain.HardenedKeyStart - 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path, err := ResolvePathTemplate(tt.template, tt.index)
			require.NoError(t, err)
			require.Equal(t, tt.expected, path)
		})
	}
}

func TestFailingResolvePathTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		template      string
		index         uint32
		expectedError error
	}{
		{"empty", "", 0, ErrNullDerivationPath},
		{"malformed", "m//0", 0, ErrMalformedDerivationPath},
		{"hardened_component", "m/0'", 0, ErrHardenedIndex},
		{"hardened_index", "m/0", hdkeychain.HardenedKeyStart, ErrHardenedIndex},
		{"multiple_placeholders", "m/{index}/*", 0, ErrMultiplePlaceholders},
		{"not_a_number", "m/x/{index}", 0, ErrMalformedDerivationPath},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path, err := ResolvePathTemplate(tt.template, tt.index)
			require.ErrorIs(t, err, tt.expectedError)
			require.Nil(t, path)
		})
	}
}

func TestDerivationPathString(t *testing.T) {
	path := DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, 0, 12}
	require.Equal(t, "m/84'/0'/0/12", path.String())
	require.Empty(t, DerivationPath{}.String())
}
