package action

import (
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/types"
)

// SignerSignature is one authorized party's signature on a multi-sig envelope. SignedOver is
// the number of signatures the envelope held when it was signed; it is not part of the wire form.
type SignerSignature struct {
	Signer     types.Address
	Signature  types.Signature
	SignedOver int
}

// MultiSig wraps an inner action with the signatures of a multi-sig user's authorized signers.
// Signatures only ever grow; each one covers the envelope holding the signatures before it
// at the time it was made.
type MultiSig struct {
	Inner        Action
	MultiSigUser types.Address
	Signatures   []SignerSignature
	Nonce        uint64
	VaultAddress *types.Address
}

type multiSigWire struct {
	Type         string   `msgpack:"type"`
	Inner        any      `msgpack:"inner"`
	MultiSigUser string   `msgpack:"multiSigUser"`
	Signatures   []string `msgpack:"signatures"`
	Nonce        uint64   `msgpack:"nonce"`
	VaultAddress string   `msgpack:"vaultAddress,omitempty"`
}

func (*MultiSig) Kind() Kind { return KindMultiSig }

func (*MultiSig) sealed() {}

// Prefix returns a copy of the envelope holding only its first n signatures.
func (a *MultiSig) Prefix(n int) *MultiSig {
	if n > len(a.Signatures) {
		n = len(a.Signatures)
	}
	prefix := *a
	prefix.Signatures = make([]SignerSignature, n)
	copy(prefix.Signatures, a.Signatures[:n])
	return &prefix
}

// Signers returns the signer addresses in append order.
func (a *MultiSig) Signers() []types.Address {
	signers := make([]types.Address, 0, len(a.Signatures))
	for _, s := range a.Signatures {
		signers = append(signers, s.Signer)
	}
	return signers
}

// HasSigner reports whether signer already contributed a signature.
func (a *MultiSig) HasSigner(signer types.Address) bool {
	for _, s := range a.Signatures {
		if s.Signer == signer {
			return true
		}
	}
	return false
}

func (a *MultiSig) signatureHexes() []string {
	out := make([]string, 0, len(a.Signatures))
	for _, s := range a.Signatures {
		out = append(out, s.Signature.Hex())
	}
	return out
}

func (a *MultiSig) vaultString() string {
	if a.VaultAddress == nil {
		return types.ZeroAddress.String()
	}
	return a.VaultAddress.String()
}

func (a *MultiSig) Wire() any {
	wire := multiSigWire{
		Type:         KindMultiSig.String(),
		MultiSigUser: a.MultiSigUser.String(),
		Signatures:   a.signatureHexes(),
		Nonce:        a.Nonce,
	}
	if a.Inner != nil {
		wire.Inner = a.Inner.Wire()
	}
	if a.VaultAddress != nil {
		wire.VaultAddress = a.VaultAddress.String()
	}
	return wire
}

func (a *MultiSig) Validate() error {
	if a.Inner == nil {
		return invalid(KindMultiSig, "inner action is required")
	}
	if a.Inner.Kind() == KindMultiSig {
		return invalid(KindMultiSig, "envelopes cannot be nested")
	}
	if err := requireAddress(KindMultiSig, "multi-sig user", a.MultiSigUser); err != nil {
		return err
	}
	if err := a.Inner.Validate(); err != nil {
		return errors.Wrap(err, "invalid inner action")
	}
	return nil
}

func (a *MultiSig) TypedFields(enc Encoder) (map[string]any, error) {
	inner, err := enc(a.Inner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode inner action")
	}

	signatures := make([]any, 0, len(a.Signatures))
	for _, s := range a.signatureHexes() {
		signatures = append(signatures, s)
	}

	return map[string]any{
		"inner":        inner,
		"multiSigUser": a.MultiSigUser.String(),
		"signatures":   signatures,
		"nonce":        uint64Field(a.Nonce),
		"vaultAddress": a.vaultString(),
	}, nil
}
