package types

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// AddressLength is the size of an account address in bytes.
const AddressLength = common.AddressLength

// Address is a 20-byte account address. Two addresses are equal iff their bytes are equal.
type Address [AddressLength]byte

// ZeroAddress is the all-zero address used as verifying contract and for absent vaults.
var ZeroAddress Address

// ParseAddress parses a 0x-prefixed, 40 hex character address in any letter case.
func ParseAddress(s string) (Address, error) {
	var addr Address

	//nolint:mnd // 0x prefix plus 40 hex characters
	if len(s) != 2+2*AddressLength || !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return addr, errors.Wrapf(ErrInvalidAddress, "malformed address %q", s)
	}

	if _, err := hex.Decode(addr[:], []byte(s[2:])); err != nil {
		return addr, errors.Wrapf(ErrInvalidAddress, "malformed address %q", s)
	}

	return addr, nil
}

// MustParseAddress is ParseAddress for package-level fixtures; it panics on malformed input.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// AddressFromCommon converts a go-ethereum address.
func AddressFromCommon(a common.Address) Address {
	return Address(a)
}

// Common returns the go-ethereum representation of the address.
func (a Address) Common() common.Address {
	return common.Address(a)
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the lowercase 0x-prefixed hex form, the case convention used on the wire.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Checksum returns the EIP-55 mixed-case form.
func (a Address) Checksum() string {
	return common.Address(a).Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
