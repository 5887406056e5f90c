package signer

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/types"
)

// RecoverAddress returns the address whose key produced sig over digest.
func RecoverAddress(digest common.Hash, sig types.Signature) (types.Address, error) {
	if sig.V != 27 && sig.V != 28 {
		return types.Address{}, errors.Wrapf(types.ErrInvalidSignature, "invalid v %d", sig.V)
	}

	// go-ethereum expects v as the 0/1 recovery id
	raw := sig.Bytes()
	raw[64] = sig.RecoveryID()

	pub, err := crypto.SigToPub(digest[:], raw)
	if err != nil {
		return types.Address{}, errors.Wrapf(types.ErrInvalidSignature, "failed to recover public key: %v", err)
	}

	return types.AddressFromCommon(crypto.PubkeyToAddress(*pub)), nil
}

// VerifySignature checks that sig over digest was produced by expected.
func VerifySignature(digest common.Hash, sig types.Signature, expected types.Address) error {
	recovered, err := RecoverAddress(digest, sig)
	if err != nil {
		return err
	}
	if recovered != expected {
		return errors.Wrapf(types.ErrInvalidSignature, "signature recovers to %s, expected %s", recovered, expected)
	}
	return nil
}
