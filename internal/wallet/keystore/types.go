package keystore

import (
	"github.com/pkg/errors"
)

const (
	// Version is the Ethereum keystore format version.
	Version = 3

	cipherAES128CTR = "aes-128-ctr"
	kdfScrypt       = "scrypt"
)

// ErrInvalidPassword is returned by Open when the MAC does not match.
var ErrInvalidPassword = errors.New("invalid keystore password")

// KeystoreJSON represents the Ethereum keystore v3 JSON structure
//
//nolint:revive // KeystoreJSON is the standard name for Ethereum keystore JSON structure
type KeystoreJSON struct {
	Address string `json:"address"`
	Version int    `json:"version"`
	ID      string `json:"id"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// ScryptParams defines scrypt KDF parameters
type ScryptParams struct {
	DKLen int // Derived key length (32 bytes)
	N     int // CPU/memory cost parameter
	R     int // Block size parameter (8)
	P     int // Parallelization parameter (1)
}

// DefaultScryptParams returns default scrypt parameters for Ethereum keystore v3
func DefaultScryptParams() *ScryptParams {
	const (
		scryptDKLen = 32     // Derived key length (32 bytes)
		scryptN     = 262144 // CPU/memory cost parameter (2^18)
		scryptR     = 8      // Block size parameter
		scryptP     = 1      // Parallelization parameter
	)

	return &ScryptParams{
		DKLen: scryptDKLen,
		N:     scryptN,
		R:     scryptR,
		P:     scryptP,
	}
}

// LightScryptParams returns the low-cost parameters used by geth's --lightkdf. Tests and
// short-lived development keys only.
func LightScryptParams() *ScryptParams {
	const (
		scryptDKLen = 32
		scryptN     = 4096 // 2^12
		scryptR     = 8
		scryptP     = 6
	)

	return &ScryptParams{
		DKLen: scryptDKLen,
		N:     scryptN,
		R:     scryptR,
		P:     scryptP,
	}
}

func (p *ScryptParams) validate() error {
	//nolint:mnd // AES-128 key plus MAC key
	if p.DKLen < 32 {
		return errors.Errorf("scrypt dklen %d is below 32", p.DKLen)
	}
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return errors.Errorf("scrypt n %d must be a power of two greater than 1", p.N)
	}
	if p.R <= 0 || p.P <= 0 {
		return errors.Errorf("scrypt r and p must be positive")
	}
	return nil
}
