package keystore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/util"
	"github/chapool/go-hlsigner/internal/wallet/securekey"
	"golang.org/x/crypto/scrypt"
)

// Open decrypts Ethereum keystore v3 JSON into a new key buffer.
func Open(ctx context.Context, data []byte, password string) (*securekey.Buffer, error) {
	log := util.LogFromContext(ctx)

	var keystoreJSON KeystoreJSON
	if err := json.Unmarshal(data, &keystoreJSON); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	key, err := decryptKey(&keystoreJSON, password)
	if err != nil {
		log.Error().Err(err).Str("keystore_id", keystoreJSON.ID).Msg("Failed to decrypt keystore")
		return nil, errors.Wrap(err, "failed to decrypt keystore")
	}
	defer util.ZeroBytes(key)

	buf, err := securekey.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load decrypted key")
	}

	return buf, nil
}

// OpenFile reads and decrypts the keystore file at path.
func OpenFile(ctx context.Context, path string, password string) (*securekey.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read keystore file")
	}

	return Open(ctx, data, password)
}

// decryptKey decrypts the key from Ethereum keystore v3 format
func decryptKey(keystoreJSON *KeystoreJSON, password string) ([]byte, error) {
	if keystoreJSON.Version != Version {
		return nil, errors.Errorf("unsupported keystore version %d", keystoreJSON.Version)
	}
	if keystoreJSON.Crypto.Cipher != cipherAES128CTR {
		return nil, errors.Errorf("unsupported cipher %q", keystoreJSON.Crypto.Cipher)
	}
	if keystoreJSON.Crypto.KDF != kdfScrypt {
		return nil, errors.Errorf("unsupported kdf %q", keystoreJSON.Crypto.KDF)
	}

	kdf := keystoreJSON.Crypto.KDFParams
	params := &ScryptParams{DKLen: kdf.DKLen, N: kdf.N, R: kdf.R, P: kdf.P}
	if err := params.validate(); err != nil {
		return nil, err
	}

	// Decode hex strings
	salt, err := hex.DecodeString(kdf.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode salt")
	}

	//nolint:varnamelen // iv is a common abbreviation for initialization vector
	iv, err := hex.DecodeString(keystoreJSON.Crypto.CipherParams.IV)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode IV")
	}

	ciphertext, err := hex.DecodeString(keystoreJSON.Crypto.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(keystoreJSON.Crypto.MAC)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode MAC")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	defer util.ZeroBytes(derivedKey)

	mac := calculateMAC(derivedKey[16:32], ciphertext)
	if subtle.ConstantTimeCompare(mac, expectedMAC) != 1 {
		return nil, ErrInvalidPassword
	}

	// Decrypt key using AES-128-CTR
	plaintext, err := decryptAES128CTR(derivedKey[:16], iv, ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt key")
	}

	return plaintext, nil
}

// decryptAES128CTR decrypts data using AES-128-CTR mode
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func decryptAES128CTR(key []byte, iv []byte, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}
	if len(iv) != block.BlockSize() {
		return nil, errors.Errorf("IV must be %d bytes", block.BlockSize())
	}

	plaintext := make([]byte, len(ciphertext))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(plaintext, ciphertext)

	return plaintext, nil
}
