package multisig

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/util"
	"github/chapool/go-hlsigner/internal/wallet/signer"
)

const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeInvalid   = "invalid"
)

// manager aggregates signatures on multi-sig envelopes for one environment. It keeps no state
// of its own; concurrent AddSignature calls on the same envelope must be serialised by the
// caller.
type manager struct {
	env     types.Environment
	metrics *metrics.Collectors
}

// NewManager creates a multi-sig Manager for env.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewManager(env types.Environment, opts ...Option) Manager {
	m := &manager{env: env}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) Environment() types.Environment {
	return m.env
}

// Create starts an envelope with no signatures.
func (m *manager) Create(inner action.Action, multiSigUser types.Address, nonce uint64, vault *types.Address) (*action.MultiSig, error) {
	envelope := &action.MultiSig{
		Inner:        inner,
		MultiSigUser: multiSigUser,
		Nonce:        nonce,
		VaultAddress: vault,
	}

	if err := envelope.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to create envelope")
	}

	return envelope, nil
}

// AddSignature appends the signature of signerAddr. The signature may have been made over the
// envelope as it stands now or over any earlier state of it, so signers working from the same
// unsigned envelope can be added in any order. A signer that already contributed is rejected
// with types.ErrDuplicateSigner and the envelope is left unchanged.
func (m *manager) AddSignature(ctx context.Context, envelope *action.MultiSig, signerAddr types.Address, sig types.Signature) error {
	log := util.LogFromContext(ctx)

	if envelope == nil {
		return errors.Wrap(types.ErrInvalidAction, "envelope is required")
	}

	if envelope.HasSigner(signerAddr) {
		m.metrics.MultiSigSignature(outcomeDuplicate)
		log.Warn().Str("signer", signerAddr.String()).Msg("Rejected duplicate multi-sig signer")
		return errors.Wrapf(types.ErrDuplicateSigner, "signer %s already signed", signerAddr)
	}

	signedOver, err := m.matchPrefix(envelope, signerAddr, sig)
	if err != nil {
		m.metrics.MultiSigSignature(outcomeInvalid)
		log.Warn().Err(err).Str("signer", signerAddr.String()).Msg("Rejected multi-sig signature")
		return err
	}

	envelope.Signatures = append(envelope.Signatures, action.SignerSignature{
		Signer:     signerAddr,
		Signature:  sig,
		SignedOver: signedOver,
	})
	m.metrics.MultiSigSignature(outcomeAccepted)

	log.Debug().
		Str("signer", signerAddr.String()).
		Int("signed_over", signedOver).
		Int("signatures", len(envelope.Signatures)).
		Msg("Added multi-sig signature")

	return nil
}

// matchPrefix returns the length of the envelope prefix sig was made over, newest first.
func (m *manager) matchPrefix(envelope *action.MultiSig, signerAddr types.Address, sig types.Signature) (int, error) {
	var lastErr error
	for k := len(envelope.Signatures); k >= 0; k-- {
		digest, err := signer.UserActionDigest(envelope.Prefix(k), m.env)
		if err != nil {
			return 0, errors.Wrap(err, "failed to hash envelope")
		}

		lastErr = signer.VerifySignature(digest, sig, signerAddr)
		if lastErr == nil {
			return k, nil
		}
	}
	return 0, lastErr
}

// Collect signs the envelope with s and appends the signature.
func (m *manager) Collect(ctx context.Context, envelope *action.MultiSig, s signer.Service) error {
	if envelope != nil && envelope.HasSigner(s.Address()) {
		return errors.Wrapf(types.ErrDuplicateSigner, "signer %s already signed", s.Address())
	}

	sig, err := s.SignMultiSigEnvelope(ctx, envelope, m.env)
	if err != nil {
		return errors.Wrap(err, "failed to sign envelope")
	}

	return m.AddSignature(ctx, envelope, s.Address(), sig)
}

// AuthorizedCount returns how many distinct authorized signers signed the envelope.
func (m *manager) AuthorizedCount(envelope *action.MultiSig, user *User) int {
	if envelope == nil || user == nil || envelope.MultiSigUser != user.Address {
		return 0
	}

	seen := make(map[types.Address]struct{}, len(envelope.Signatures))
	for _, s := range envelope.Signatures {
		if user.IsAuthorized(s.Signer) {
			seen[s.Signer] = struct{}{}
		}
	}
	return len(seen)
}

// IsSatisfied reports whether at least user.Threshold authorized signers signed.
func (m *manager) IsSatisfied(envelope *action.MultiSig, user *User) bool {
	return user != nil && m.AuthorizedCount(envelope, user) >= int(user.Threshold)
}

// State returns the envelope's progress towards user's threshold.
func (m *manager) State(envelope *action.MultiSig, user *User) State {
	switch {
	case m.IsSatisfied(envelope, user):
		return StateSatisfied
	case envelope == nil || len(envelope.Signatures) == 0:
		return StateEmpty
	default:
		return StatePartial
	}
}

// RequireSatisfied returns types.ErrThresholdNotMet unless the envelope is ready to submit.
func (m *manager) RequireSatisfied(envelope *action.MultiSig, user *User) error {
	if user == nil {
		return errors.Wrap(types.ErrInvalidAction, "multi-sig user is required")
	}
	if envelope != nil && envelope.MultiSigUser != user.Address {
		return errors.Wrapf(types.ErrInvalidAction, "envelope is for %s, not %s", envelope.MultiSigUser, user.Address)
	}

	if count := m.AuthorizedCount(envelope, user); count < int(user.Threshold) {
		return errors.Wrapf(types.ErrThresholdNotMet, "%d of %d authorized signatures", count, user.Threshold)
	}
	return nil
}

// Verify re-checks every signature against the envelope prefix it was made over.
func (m *manager) Verify(envelope *action.MultiSig) error {
	if envelope == nil {
		return errors.Wrap(types.ErrInvalidAction, "envelope is required")
	}

	for i, s := range envelope.Signatures {
		if s.SignedOver < 0 || s.SignedOver > i {
			return errors.Wrapf(types.ErrInvalidSignature, "signature %d claims prefix %d", i, s.SignedOver)
		}

		digest, err := signer.UserActionDigest(envelope.Prefix(s.SignedOver), m.env)
		if err != nil {
			return errors.Wrapf(err, "failed to hash envelope prefix %d", s.SignedOver)
		}
		if err := signer.VerifySignature(digest, s.Signature, s.Signer); err != nil {
			return errors.Wrapf(err, "signature %d", i)
		}
	}

	return nil
}
