package keystore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/util"
	"github/chapool/go-hlsigner/internal/wallet/securekey"
	"golang.org/x/crypto/scrypt"
)

// Seal encrypts the key held by buf into Ethereum keystore v3 JSON. A nil params uses
// DefaultScryptParams.
func Seal(ctx context.Context, buf *securekey.Buffer, password string, params *ScryptParams) ([]byte, error) {
	log := util.LogFromContext(ctx)

	if params == nil {
		params = DefaultScryptParams()
	}
	if err := params.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid scrypt parameters")
	}

	address, err := buf.Address()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive keystore address")
	}

	var keystoreJSON *KeystoreJSON
	err = buf.WithKey(func(key []byte) error {
		var err error
		keystoreJSON, err = encryptKey(key, password, params)
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt key")
		return nil, errors.Wrap(err, "failed to encrypt key")
	}

	// keystore files carry the address without 0x
	keystoreJSON.Address = address.String()[2:]

	data, err := json.Marshal(keystoreJSON)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}

	log.Debug().Str("keystore_id", keystoreJSON.ID).Str("signer", address.String()).Msg("Sealed key into keystore")

	return data, nil
}

// encryptKey encrypts key using the Ethereum keystore v3 scheme
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func encryptKey(key []byte, password string, params *ScryptParams) (*KeystoreJSON, error) {
	// Generate random salt and IV
	//nolint:mnd // 32 is the standard salt size for scrypt
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	//nolint:mnd // 16 is the standard IV size for AES-128-CTR
	iv := make([]byte, 16) // AES-128-CTR requires 16-byte IV
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	defer util.ZeroBytes(derivedKey)

	ciphertext, err := encryptAES128CTR(derivedKey[:16], iv, key) // Use first 16 bytes for AES-128
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt key")
	}

	mac := calculateMAC(derivedKey[16:32], ciphertext)

	keystoreJSON := &KeystoreJSON{
		Version: Version,
		ID:      uuid.New().String(),
	}

	keystoreJSON.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	keystoreJSON.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	keystoreJSON.Crypto.Cipher = cipherAES128CTR
	keystoreJSON.Crypto.KDF = kdfScrypt
	keystoreJSON.Crypto.KDFParams.DKLen = params.DKLen
	keystoreJSON.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	keystoreJSON.Crypto.KDFParams.N = params.N
	keystoreJSON.Crypto.KDFParams.R = params.R
	keystoreJSON.Crypto.KDFParams.P = params.P
	keystoreJSON.Crypto.MAC = hex.EncodeToString(mac)

	return keystoreJSON, nil
}

// encryptAES128CTR encrypts data using AES-128-CTR mode
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func encryptAES128CTR(key []byte, iv []byte, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	ciphertext := make([]byte, len(plaintext))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(ciphertext, plaintext)

	return ciphertext, nil
}

// calculateMAC calculates Keccak-256(derivedKey[16:32] + ciphertext)
func calculateMAC(key []byte, ciphertext []byte) []byte {
	return crypto.Keccak256(key, ciphertext)
}
