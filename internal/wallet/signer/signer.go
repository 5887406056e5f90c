package signer

import (
	"context"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/util"
	"github/chapool/go-hlsigner/internal/wallet/securekey"
)

// service produces recoverable secp256k1 signatures with the key held in a securekey.Buffer.
// It is safe for concurrent use; the buffer serialises key access.
type service struct {
	key     *securekey.Buffer
	address types.Address
	metrics *metrics.Collectors
}

// NewService creates a signing service that owns key. Destroying the service destroys the key.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(key *securekey.Buffer, opts ...Option) (Service, error) {
	if key == nil {
		return nil, errors.Wrap(types.ErrInvalidPrivateKeyFormat, "key buffer is nil")
	}

	s := &service{key: key}
	for _, opt := range opts {
		opt(s)
	}

	// Derive the address once; it is not secret
	address, err := key.Address()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive signer address")
	}
	s.address = address

	s.metrics.KeyBufferCreated(key.Locked())

	return s, nil
}

func (s *service) Address() types.Address {
	return s.address
}

func (s *service) MemoryLocked() bool {
	return s.key.Locked()
}

func (s *service) Destroy() {
	locked := s.key.Locked()
	if s.key.Destroy() {
		s.metrics.KeyBufferDestroyed(locked)
	}
}

// SignDigest signs a 32-byte digest. The signature is deterministic (RFC 6979) and low-S.
func (s *service) SignDigest(ctx context.Context, digest common.Hash) (types.Signature, error) {
	log := util.LogFromContext(ctx)

	var sig types.Signature
	err := s.key.WithKey(func(raw []byte) error {
		priv := secp256k1.PrivKeyFromBytes(raw)
		defer priv.Zero()

		// <recovery code 27+id><R><S>
		compact := ecdsa.SignCompact(priv, digest[:], false)
		if len(compact) != types.SignatureLength {
			return errors.Wrapf(types.ErrSigningFailed, "unexpected compact signature length %d", len(compact))
		}

		code := compact[0]
		if code != 27 && code != 28 {
			return errors.Wrapf(types.ErrSigningFailed, "unsupported recovery code %d", code)
		}

		copy(sig.R[:], compact[1:33])
		copy(sig.S[:], compact[33:65])
		sig.V = code

		return nil
	})
	if err != nil {
		if errors.Is(err, types.ErrKeyDestroyed) {
			return types.Signature{}, err
		}
		log.Error().Err(err).Msg("Failed to sign digest")
		return types.Signature{}, errors.Wrap(err, "failed to sign digest")
	}

	// Verify the signature recovers to our address
	recovered, err := RecoverAddress(digest, sig)
	if err != nil || recovered != s.address {
		log.Error().Err(err).Str("signer", s.address.String()).Msg("Signature does not recover to signer")
		return types.Signature{}, errors.Wrap(types.ErrSigningFailed, "signature does not recover to signer")
	}

	return sig, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, types.ErrKeyDestroyed):
		return reasonKeyDestroyed
	case errors.Is(err, types.ErrSigningFailed):
		return reasonSigningFailed
	default:
		return reasonInvalidAction
	}
}
