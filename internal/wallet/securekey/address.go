package securekey

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/go-hlsigner/internal/types"
)

// Address derives the account address of the held key.
func (b *Buffer) Address() (types.Address, error) {
	var address types.Address
	err := b.WithKey(func(key []byte) error {
		priv := secp256k1.PrivKeyFromBytes(key)
		defer priv.Zero()

		address = AddressOf(priv.PubKey())
		return nil
	})
	if err != nil {
		return types.ZeroAddress, err
	}

	return address, nil
}

// AddressOf returns keccak256(uncompressed public key without prefix)[12:].
func AddressOf(pub *secp256k1.PublicKey) types.Address {
	uncompressed := pub.SerializeUncompressed()

	var address types.Address
	copy(address[:], crypto.Keccak256(uncompressed[1:])[12:])
	return address
}
