package types

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const (
	// SignatureLength is the size of the r || s || v wire form.
	SignatureLength = 65

	// recoveryIDOffset converts between the internal 0/1 recovery id and the external 27/28.
	recoveryIDOffset = 27
)

// Signature is a recoverable secp256k1 signature. V is always 27 or 28.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// SignatureFromBytes parses the 65-byte r || s || v form. V may be 0/1 or 27/28 and is
// normalised to 27/28.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature

	if len(b) != SignatureLength {
		return sig, errors.Wrapf(ErrInvalidSignature, "signature must be %d bytes, got %d", SignatureLength, len(b))
	}

	copy(sig.R[:], b[:32])
	copy(sig.S[:], b[32:64])

	v := b[64]
	if v < recoveryIDOffset {
		v += recoveryIDOffset
	}
	if v != recoveryIDOffset && v != recoveryIDOffset+1 {
		return Signature{}, errors.Wrapf(ErrInvalidSignature, "invalid recovery id %d", b[64])
	}
	sig.V = v

	return sig, nil
}

// ParseSignature parses a 0x-prefixed hex signature.
func ParseSignature(s string) (Signature, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Signature{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return SignatureFromBytes(b)
}

// Bytes returns the 65-byte r || s || v form with v in {27, 28}.
func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out[:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

// RecoveryID returns v normalised to {0, 1}, the form expected by public key recovery.
func (s Signature) RecoveryID() byte {
	return s.V - recoveryIDOffset
}

// Hex returns the 0x-prefixed hex of Bytes.
func (s Signature) Hex() string {
	return hexutil.Encode(s.Bytes())
}

// String implements fmt.Stringer.
func (s Signature) String() string {
	return s.Hex()
}

// IsZero reports whether the signature is unset.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

type signatureJSON struct {
	R string `json:"r"`
	S string `json:"s"`
	V byte   `json:"v"`
}

// MarshalJSON encodes the signature as {"r":"0x..","s":"0x..","v":27}.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(signatureJSON{
		R: hexutil.Encode(s.R[:]),
		S: hexutil.Encode(s.S[:]),
		V: s.V,
	})
}

// UnmarshalJSON decodes the {"r","s","v"} form.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var raw signatureJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to unmarshal signature")
	}

	r, err := decodeWord(raw.R)
	if err != nil {
		return err
	}
	sv, err := decodeWord(raw.S)
	if err != nil {
		return err
	}

	buf := make([]byte, 0, SignatureLength)
	buf = append(buf, r...)
	buf = append(buf, sv...)
	buf = append(buf, raw.V)

	parsed, err := SignatureFromBytes(buf)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// decodeWord decodes a hex scalar, left-padding it to 32 bytes.
func decodeWord(s string) ([]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	//nolint:mnd // secp256k1 scalars are 32 bytes
	if len(b) > 32 {
		return nil, errors.Wrapf(ErrInvalidSignature, "scalar too long: %d bytes", len(b))
	}
	word := make([]byte, 32) //nolint:mnd // secp256k1 scalars are 32 bytes
	copy(word[32-len(b):], b)
	return word, nil
}
