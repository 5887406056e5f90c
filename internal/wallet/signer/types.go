package signer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/types"
)

// Service provides exchange action signing with a single secured key
type Service interface {
	// Address returns the address of the signing key
	Address() types.Address

	// MemoryLocked reports whether the key memory is locked against swapping
	MemoryLocked() bool

	// Destroy zeroes the key; every later signing call fails with types.ErrKeyDestroyed
	Destroy()

	// SignDigest signs a 32-byte digest (RFC 6979, low-S)
	SignDigest(ctx context.Context, digest common.Hash) (types.Signature, error)

	// SignAgentAction signs an exchange action through a phantom agent
	SignAgentAction(ctx context.Context, req *AgentRequest) (types.Signature, error)

	// SignUserAction signs a user-signed action over its own typed fields
	SignUserAction(ctx context.Context, a action.Action, env types.Environment) (types.Signature, error)

	// SignMultiSigEnvelope signs a multi-sig envelope as it currently stands
	SignMultiSigEnvelope(ctx context.Context, envelope *action.MultiSig, env types.Environment) (types.Signature, error)
}

// AgentRequest represents a request to sign an agent (exchange) action
type AgentRequest struct {
	Action       action.Action
	Nonce        uint64            // Action nonce, usually a millisecond timestamp
	VaultAddress *types.Address    // Vault or sub-account acted for, nil for the signer itself
	ExpiresAfter *uint64           // Optional millisecond deadline after which the exchange rejects the action
	Environment  types.Environment // Mainnet or Testnet
}

// Option configures a signing service
type Option func(*service)

// WithMetrics records signing outcomes on m
func WithMetrics(m *metrics.Collectors) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// failure reasons used as metric labels
const (
	reasonInvalidAction = "invalid_action"
	reasonSigningFailed = "signing_failed"
	reasonKeyDestroyed  = "key_destroyed"
)
