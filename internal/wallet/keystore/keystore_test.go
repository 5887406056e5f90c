package keystore_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/wallet/keystore"
	"github/chapool/go-hlsigner/internal/wallet/securekey"
)

const (
	testKeyHex   = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testPassword = "correct horse battery staple"
)

func testBuffer(t *testing.T) *securekey.Buffer {
	t.Helper()

	buf, err := securekey.FromHex(testKeyHex)
	require.NoError(t, err)
	t.Cleanup(func() { buf.Destroy() })

	return buf
}

func keyOf(t *testing.T, buf *securekey.Buffer) string {
	t.Helper()

	var out string
	require.NoError(t, buf.WithKey(func(key []byte) error {
		out = hex.EncodeToString(key)
		return nil
	}))
	return out
}

func TestSealOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	buf := testBuffer(t)

	data, err := keystore.Seal(ctx, buf, testPassword, keystore.LightScryptParams())
	require.NoError(t, err)

	var parsed keystore.KeystoreJSON
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, keystore.Version, parsed.Version)
	assert.Equal(t, "aes-128-ctr", parsed.Crypto.Cipher)
	assert.Equal(t, "scrypt", parsed.Crypto.KDF)
	assert.Equal(t, 4096, parsed.Crypto.KDFParams.N)
	assert.Equal(t, "2c7536e3605d9c16a7a3d7b1898e529396a65c23", parsed.Address)
	assert.NotContains(t, string(data), testKeyHex)

	opened, err := keystore.Open(ctx, data, testPassword)
	require.NoError(t, err)
	defer opened.Destroy()

	assert.Equal(t, testKeyHex, keyOf(t, opened))
}

func TestSealIsCompatibleWithGeth(t *testing.T) {
	buf := testBuffer(t)

	data, err := keystore.Seal(context.Background(), buf, testPassword, keystore.LightScryptParams())
	require.NoError(t, err)

	key, err := ethkeystore.DecryptKey(data, testPassword)
	require.NoError(t, err)

	assert.Equal(t, testKeyHex, hex.EncodeToString(crypto.FromECDSA(key.PrivateKey)))

	address, err := buf.Address()
	require.NoError(t, err)
	assert.Equal(t, address.Common(), key.Address)
}

func TestOpenGethKeystore(t *testing.T) {
	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)

	data, err := ethkeystore.EncryptKey(&ethkeystore.Key{
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}, testPassword, ethkeystore.LightScryptN, ethkeystore.LightScryptP)
	require.NoError(t, err)

	opened, err := keystore.Open(context.Background(), data, testPassword)
	require.NoError(t, err)
	defer opened.Destroy()

	assert.Equal(t, testKeyHex, keyOf(t, opened))
}

func TestOpenWrongPassword(t *testing.T) {
	ctx := context.Background()

	data, err := keystore.Seal(ctx, testBuffer(t), testPassword, keystore.LightScryptParams())
	require.NoError(t, err)

	_, err = keystore.Open(ctx, data, "wrong")
	require.ErrorIs(t, err, keystore.ErrInvalidPassword)
}

func TestOpenRejectsMalformed(t *testing.T) {
	ctx := context.Background()

	data, err := keystore.Seal(ctx, testBuffer(t), testPassword, keystore.LightScryptParams())
	require.NoError(t, err)

	tests := map[string]func(k *keystore.KeystoreJSON){
		"version": func(k *keystore.KeystoreJSON) { k.Version = 1 },
		"cipher":  func(k *keystore.KeystoreJSON) { k.Crypto.Cipher = "aes-256-gcm" },
		"kdf":     func(k *keystore.KeystoreJSON) { k.Crypto.KDF = "pbkdf2" },
		"n":       func(k *keystore.KeystoreJSON) { k.Crypto.KDFParams.N = 1000 },
		"salt":    func(k *keystore.KeystoreJSON) { k.Crypto.KDFParams.Salt = "zz" },
		"mac":     func(k *keystore.KeystoreJSON) { k.Crypto.MAC = strings.Repeat("00", 32) },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			var k keystore.KeystoreJSON
			require.NoError(t, json.Unmarshal(data, &k))
			mutate(&k)

			mutated, err := json.Marshal(&k)
			require.NoError(t, err)

			_, err = keystore.Open(ctx, mutated, testPassword)
			require.Error(t, err)
		})
	}

	_, err = keystore.Open(ctx, []byte("not json"), testPassword)
	require.Error(t, err)
}

func TestSealDestroyedBuffer(t *testing.T) {
	buf := testBuffer(t)
	buf.Destroy()

	_, err := keystore.Seal(context.Background(), buf, testPassword, keystore.LightScryptParams())
	require.ErrorIs(t, err, types.ErrKeyDestroyed)
}

func TestSealRejectsBadParams(t *testing.T) {
	_, err := keystore.Seal(context.Background(), testBuffer(t), testPassword, &keystore.ScryptParams{DKLen: 16, N: 4096, R: 8, P: 1})
	require.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()

	data, err := keystore.Seal(ctx, testBuffer(t), testPassword, keystore.LightScryptParams())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	opened, err := keystore.OpenFile(ctx, path, testPassword)
	require.NoError(t, err)
	defer opened.Destroy()

	assert.Equal(t, testKeyHex, keyOf(t, opened))

	_, err = keystore.OpenFile(ctx, filepath.Join(t.TempDir(), "missing.json"), testPassword)
	require.Error(t, err)
}
