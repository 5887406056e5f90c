package address

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
	"github/chapool/go-hlsigner/internal/util"
	"github/chapool/go-hlsigner/internal/wallet/securekey"
)

// NewMnemonic generates a 24 word BIP39 mnemonic.
func NewMnemonic() (string, error) {
	//nolint:mnd // 256 bits of entropy gives 24 words
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}
	defer util.ZeroBytes(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode mnemonic")
	}

	return mnemonic, nil
}

// DeriveKey derives the private key at path from a BIP39 mnemonic and optional passphrase and
// returns it in a key buffer. An empty path uses DefaultDerivationPath.
func DeriveKey(ctx context.Context, mnemonic string, passphrase string, path string) (*securekey.Buffer, error) {
	log := util.LogFromContext(ctx)

	if path == "" {
		path = DefaultDerivationPath
	}

	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	// seed = PBKDF2(mnemonic, "mnemonic" + passphrase, 2048, 64, SHA512)
	seed := bip39.NewSeed(mnemonic, passphrase)
	defer util.ZeroBytes(seed)

	privateKey, err := derivePrivateKey(seed, path)
	if err != nil {
		log.Error().Err(err).Str("derivation_path", path).Msg("Failed to derive private key")
		return nil, errors.Wrap(err, "failed to derive private key")
	}

	// Clear private key after use
	defer util.ZeroBytes(privateKey)

	buf, err := securekey.New(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load derived key")
	}

	return buf, nil
}

// derivePrivateKey derives a private key from seed and BIP44 path
// WARNING: Caller must clear the private key after use
func derivePrivateKey(seed []byte, path string) ([]byte, error) {
	// Create master key from seed
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}
	defer wipeKey(masterKey)

	// Derive key from path
	derivedKey, err := deriveKeyFromPath(masterKey, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key from path")
	}
	defer util.ZeroBytes(derivedKey.ChainCode)

	// Return private key (32 bytes)
	return derivedKey.Key, nil
}

// deriveKeyFromPath derives a key from BIP44 path
// Path format: m/44'/60'/0'/0/{index}
// Every key passed on the way, masterKey included, is wiped once its child exists.
func deriveKeyFromPath(masterKey *bip32.Key, path string) (*bip32.Key, error) {
	// Parse path
	indices, err := parseBIP44Path(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse BIP44 path")
	}

	key := masterKey
	for _, index := range indices {
		child, err := key.NewChildKey(index)
		if err != nil {
			wipeKey(key)
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
		wipeKey(key)
		key = child
	}

	return key, nil
}

// wipeKey zeroes the private key and chain code. The chain code with any child public key is
// enough to rebuild non-hardened siblings.
func wipeKey(key *bip32.Key) {
	util.ZeroBytes(key.Key)
	util.ZeroBytes(key.ChainCode)
}

// parseBIP44Path parses a BIP44 path string into indices
// Example: "m/44'/60'/0'/0/0" -> [2147483692, 2147483708, 2147483648, 0, 0]
func parseBIP44Path(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, errors.Errorf("invalid BIP44 path: %s", path)
	}

	// Parse each part
	indices := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		segment, hardened := strings.CutSuffix(part, "'")
		if !hardened {
			segment, hardened = strings.CutSuffix(part, "h")
		}

		index, err := strconv.ParseUint(segment, 10, 32)
		if err != nil || uint32(index) >= bip32.FirstHardenedChild {
			return nil, errors.Errorf("invalid path segment: %s", part)
		}

		// Add hardened flag (0x80000000)
		if hardened {
			index += uint64(bip32.FirstHardenedChild)
		}

		indices = append(indices, uint32(index))
	}

	return indices, nil
}
