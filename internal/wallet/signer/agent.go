package signer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/exchange/agent"
	"github/chapool/go-hlsigner/internal/exchange/hashing"
	"github/chapool/go-hlsigner/internal/exchange/registry"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/util"
)

// AgentActionDigest returns the digest signed for an agent action: the typed-data hash of the
// phantom agent wrapping the action hash.
func AgentActionDigest(req *AgentRequest) (common.Hash, error) {
	if req == nil || req.Action == nil {
		return common.Hash{}, errors.Wrap(types.ErrInvalidAction, "action is required")
	}
	if !req.Environment.IsValid() {
		return common.Hash{}, errors.Wrapf(types.ErrInvalidAction, "unknown environment %d", req.Environment)
	}

	// Check the kind is signed through a phantom agent
	if _, err := registry.RequireMode(req.Action.Kind(), registry.ModeAgent); err != nil {
		return common.Hash{}, err
	}

	if err := req.Action.Validate(); err != nil {
		return common.Hash{}, err
	}

	actionHash, err := hashing.ActionHash(req.Action, req.VaultAddress, req.Nonce, req.ExpiresAfter)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to hash action")
	}

	return hashing.AgentDigest(agent.Build(actionHash, req.Environment))
}

// SignAgentAction signs an exchange action through a phantom agent.
func (s *service) SignAgentAction(ctx context.Context, req *AgentRequest) (types.Signature, error) {
	log := util.LogFromContext(ctx)

	digest, err := AgentActionDigest(req)
	if err != nil {
		s.metrics.SigningFailed(metrics.ModeAgent, failureReason(err))
		return types.Signature{}, err
	}

	sig, err := s.SignDigest(ctx, digest)
	if err != nil {
		s.metrics.SigningFailed(metrics.ModeAgent, failureReason(err))
		return types.Signature{}, errors.Wrap(err, "failed to sign agent action")
	}

	s.metrics.SignatureProduced(metrics.ModeAgent)
	log.Debug().
		Str("action_kind", req.Action.Kind().String()).
		Uint64("nonce", req.Nonce).
		Str("environment", req.Environment.String()).
		Str("digest", digest.Hex()).
		Msg("Signed agent action")

	return sig, nil
}
