package hashing

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/types"
)

// Encode returns the canonical msgpack encoding of an action. Struct fields are written in
// declaration order and integers in their smallest msgpack form.
func Encode(a action.Action) ([]byte, error) {
	if a == nil {
		return nil, errors.Wrap(types.ErrInvalidAction, "action is nil")
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)

	if err := enc.Encode(a.Wire()); err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s action", a.Kind())
	}

	return buf.Bytes(), nil
}
