package multisig

import (
	"bytes"
	"context"
	"sort"

	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/wallet/signer"
)

// Manager provides multi-sig envelope assembly and threshold checks
type Manager interface {
	// Environment returns the environment envelopes are signed for
	Environment() types.Environment

	// Create starts an envelope with no signatures
	Create(inner action.Action, multiSigUser types.Address, nonce uint64, vault *types.Address) (*action.MultiSig, error)

	// AddSignature verifies and appends one signer's signature
	AddSignature(ctx context.Context, envelope *action.MultiSig, signerAddr types.Address, sig types.Signature) error

	// Collect signs the envelope with s and appends the signature
	Collect(ctx context.Context, envelope *action.MultiSig, s signer.Service) error

	// AuthorizedCount returns how many distinct authorized signers signed the envelope
	AuthorizedCount(envelope *action.MultiSig, user *User) int

	// IsSatisfied reports whether the envelope reached the user's threshold
	IsSatisfied(envelope *action.MultiSig, user *User) bool

	// State returns the envelope's progress towards the user's threshold
	State(envelope *action.MultiSig, user *User) State

	// RequireSatisfied returns types.ErrThresholdNotMet unless the envelope is ready to submit
	RequireSatisfied(envelope *action.MultiSig, user *User) error

	// Verify re-checks every collected signature
	Verify(envelope *action.MultiSig) error
}

// Option configures a Manager
type Option func(*manager)

// WithMetrics records append outcomes on m
func WithMetrics(m *metrics.Collectors) Option {
	return func(mgr *manager) {
		mgr.metrics = m
	}
}

// State of an envelope relative to a multi-sig user. Transitions only move forward.
type State int

const (
	StateEmpty State = iota
	StatePartial
	StateSatisfied
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateSatisfied:
		return "satisfied"
	default:
		return "unknown"
	}
}

// User is a multi-sig account: any Threshold of its authorized signers may act for it.
type User struct {
	Address   types.Address
	Signers   []types.Address
	Threshold uint32
}

// NewUser validates 1 <= threshold <= len(signers) and that signers are distinct.
func NewUser(address types.Address, signers []types.Address, threshold uint32) (*User, error) {
	if address.IsZero() {
		return nil, errors.Wrap(types.ErrInvalidAction, "multi-sig user address must not be zero")
	}
	if threshold == 0 || int(threshold) > len(signers) {
		return nil, errors.Wrapf(types.ErrInvalidAction, "threshold %d out of range for %d signers", threshold, len(signers))
	}

	sorted := append([]types.Address(nil), signers...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, errors.Wrapf(types.ErrInvalidAction, "signer %s listed twice", sorted[i])
		}
	}

	return &User{Address: address, Signers: sorted, Threshold: threshold}, nil
}

// IsAuthorized reports whether signer belongs to the user's signer set.
func (u *User) IsAuthorized(signer types.Address) bool {
	i := sort.Search(len(u.Signers), func(i int) bool {
		return bytes.Compare(u.Signers[i][:], signer[:]) >= 0
	})
	return i < len(u.Signers) && u.Signers[i] == signer
}

// ConvertAction returns the action that turns the signing account into this multi-sig user.
func (u *User) ConvertAction(nonce uint64) action.ConvertToMultiSigUser {
	return action.ConvertToMultiSigUser{
		AuthorizedUsers: append([]types.Address(nil), u.Signers...),
		Threshold:       u.Threshold,
		Nonce:           nonce,
	}
}
