package address

import (
	"bytes"
	"testing"

	"github.com/tyler-smith/go-bip32"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBIP44Path(t *testing.T) {
	indices, err := parseBIP44Path("m/44'/60'/0'/0/0")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2147483692, 2147483708, 2147483648, 0, 0}, indices)

	indices, err = parseBIP44Path("m/44h/60h/0h/0/7")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2147483692, 2147483708, 2147483648, 0, 7}, indices)

	for _, bad := range []string{"", "m", "m/", "44'/60'", "m/x", "m/-1", "m/2147483648", "m/1''"} {
		_, err := parseBIP44Path(bad)
		assert.Error(t, err, bad)
	}
}

func TestDeriveKeyFromPathWipesParents(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 64)

	reference, err := bip32.NewMasterKey(seed)
	require.NoError(t, err)
	want, err := deriveKeyFromPath(reference, DefaultDerivationPath)
	require.NoError(t, err)

	master, err := bip32.NewMasterKey(seed)
	require.NoError(t, err)
	derived, err := deriveKeyFromPath(master, DefaultDerivationPath)
	require.NoError(t, err)

	assert.Equal(t, want.Key, derived.Key)
	assert.Equal(t, want.ChainCode, derived.ChainCode)
	assert.Equal(t, make([]byte, len(master.Key)), master.Key)
	assert.Equal(t, make([]byte, len(master.ChainCode)), master.ChainCode)

	wipeKey(derived)
	assert.Equal(t, make([]byte, 32), derived.Key)
	assert.Equal(t, make([]byte, 32), derived.ChainCode)
}
