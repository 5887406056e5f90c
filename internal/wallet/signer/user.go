package signer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/exchange/hashing"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/util"
)

// UserActionDigest returns the digest signed for a user-signed action in env.
func UserActionDigest(a action.Action, env types.Environment) (common.Hash, error) {
	if a == nil {
		return common.Hash{}, errors.Wrap(types.ErrInvalidAction, "action is required")
	}
	if !env.IsValid() {
		return common.Hash{}, errors.Wrapf(types.ErrInvalidAction, "unknown environment %d", env)
	}
	if err := a.Validate(); err != nil {
		return common.Hash{}, err
	}
	return hashing.UserDigest(a, env)
}

// SignUserAction signs a transfer, withdrawal, delegation or account action directly over its
// own typed fields.
func (s *service) SignUserAction(ctx context.Context, a action.Action, env types.Environment) (types.Signature, error) {
	return s.signUser(ctx, metrics.ModeUser, a, env)
}

// SignMultiSigEnvelope signs envelope as it currently stands, including the signatures
// already collected.
func (s *service) SignMultiSigEnvelope(ctx context.Context, envelope *action.MultiSig, env types.Environment) (types.Signature, error) {
	if envelope == nil {
		return types.Signature{}, errors.Wrap(types.ErrInvalidAction, "envelope is required")
	}
	return s.signUser(ctx, metrics.ModeMultiSig, envelope, env)
}

func (s *service) signUser(ctx context.Context, mode string, a action.Action, env types.Environment) (types.Signature, error) {
	log := util.LogFromContext(ctx)

	digest, err := UserActionDigest(a, env)
	if err != nil {
		s.metrics.SigningFailed(mode, failureReason(err))
		return types.Signature{}, err
	}

	sig, err := s.SignDigest(ctx, digest)
	if err != nil {
		s.metrics.SigningFailed(mode, failureReason(err))
		return types.Signature{}, errors.Wrapf(err, "failed to sign %s action", a.Kind())
	}

	s.metrics.SignatureProduced(mode)
	log.Debug().
		Str("action_kind", a.Kind().String()).
		Str("environment", env.String()).
		Str("digest", digest.Hex()).
		Msg("Signed user action")

	return sig, nil
}
