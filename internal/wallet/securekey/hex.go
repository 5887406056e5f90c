package securekey

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/util"
)

// FromHex parses a 64 hex character key, with or without a 0x prefix.
func FromHex(s string) (*Buffer, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*KeyLength {
		return nil, errors.Wrapf(types.ErrInvalidPrivateKeyFormat, "hex key must be %d characters", 2*KeyLength)
	}

	var raw [KeyLength]byte
	defer util.ZeroBytes(raw[:])

	if _, err := hex.Decode(raw[:], []byte(s)); err != nil {
		return nil, errors.Wrap(types.ErrInvalidPrivateKeyFormat, "hex key contains non-hex characters")
	}

	return New(raw[:])
}
