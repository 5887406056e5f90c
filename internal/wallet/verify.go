package wallet

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/util"
	"github/chapool/go-hlsigner/internal/wallet/signer"
)

// ErrAddressMismatch is returned when the loaded key does not belong to the expected address.
var ErrAddressMismatch = errors.New("signer address does not match expected address")

// VerifySignerAddress compares the signer's address with expected. An empty expected address
// skips the check. A mismatch at startup usually means a wrong passphrase or derivation path.
func VerifySignerAddress(ctx context.Context, s signer.Service, expected string) error {
	log := util.ComponentLogger(ctx, "address_verification")

	if expected == "" {
		return nil
	}

	want, err := types.ParseAddress(expected)
	if err != nil {
		return errors.Wrap(err, "failed to parse expected address")
	}

	if s.Address() != want {
		log.Warn().
			Str("derived", s.Address().String()).
			Str("expected", want.String()).
			Msg("Address verification failed: addresses do not match")
		return ErrAddressMismatch
	}

	log.Debug().Msg("Address verification successful")
	return nil
}
