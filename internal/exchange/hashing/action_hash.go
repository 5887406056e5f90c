package hashing

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/types"
)

const (
	vaultAbsent  byte = 0x00
	vaultPresent byte = 0x01
	expiresFlag  byte = 0x00
)

// ActionHash computes the agent action digest:
//
//	keccak256(msgpack(action) || nonce_be64 || 0x00)
//	keccak256(msgpack(action) || nonce_be64 || 0x01 || vault)
//
// followed by 0x00 || expiresAfter_be64 when expiresAfter is set.
func ActionHash(a action.Action, vault *types.Address, nonce uint64, expiresAfter *uint64) (common.Hash, error) {
	encoded, err := Encode(a)
	if err != nil {
		return common.Hash{}, err
	}

	//nolint:mnd // nonce, flag, vault and the optional expiry trailer
	data := make([]byte, 0, len(encoded)+8+1+types.AddressLength+1+8)
	data = append(data, encoded...)
	data = binary.BigEndian.AppendUint64(data, nonce)

	if vault == nil {
		data = append(data, vaultAbsent)
	} else {
		if vault.IsZero() {
			return common.Hash{}, errors.Wrap(types.ErrInvalidAction, "vault address must not be the zero address")
		}
		data = append(data, vaultPresent)
		data = append(data, vault[:]...)
	}

	if expiresAfter != nil {
		data = append(data, expiresFlag)
		data = binary.BigEndian.AppendUint64(data, *expiresAfter)
	}

	return crypto.Keccak256Hash(data), nil
}
