package wallet

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func newTestKeys(t *testing.T) (xprv, xpub string) {
	seed := bytes.Repeat([]byte{0x42}, 32)
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)
	pub, err := master.Neuter()
	require.NoError(t, err)
	return master.String(), pub.String()
}

func TestDerivePublicKeyFromTemplate(t *testing.T) {
	t.Parallel()

	_, xpub := newTestKeys(t)

	seen := make(map[string]uint32)
	for i := uint32(0); i < 20; i++ {
		key, err := DerivePublicKeyFromTemplate(xpub, "m/0", i)
		require.NoError(t, err)

		again, err := DerivePublicKeyFromTemplate(xpub, "m/0/{index}", i)
		require.NoError(t, err)
		require.True(t, key.IsEqual(again))

		serialized := string(key.SerializeCompressed())
		_, ok := seen[serialized]
		require.False(t, ok, "index %d derived an already seen key", i)
		seen[serialized] = i
	}
}

func TestFailingDerivePublicKeyFromTemplate(t *testing.T) {
	t.Parallel()

	xprv, xpub := newTestKeys(t)

	_, err := DerivePublicKeyFromTemplate(xprv, "m/0", 0)
	require.ErrorIs(t, err, ErrPrivateExtendedKey)

	_, err = DerivePublicKeyFromTemplate("xpub-not-really", "m/0", 0)
	require.ErrorIs(t, err, ErrInvalidExtendedKey)

	_, err = DerivePublicKeyFromTemplate(xpub, "m/0'", 0)
	require.ErrorIs(t, err, ErrHardenedIndex)
}

func TestKeyFingerprint(t *testing.T) {
	t.Parallel()

	_, xpub := newTestKeys(t)
	require.Len(t, KeyFingerprint(xpub), 40)
	require.Equal(t, KeyFingerprint(xpub), KeyFingerprint(" "+xpub+"\n"))
}
