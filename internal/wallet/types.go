package wallet

import (
	"github/chapool/go-hlsigner/internal/config"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/wallet/multisig"
	"github/chapool/go-hlsigner/internal/wallet/nonce"
	"github/chapool/go-hlsigner/internal/wallet/signer"
)

// Wallet bundles the components built from one SignerConfig.
type Wallet struct {
	Signer   signer.Service
	Nonces   *nonce.Generator
	MultiSig multisig.Manager
	Config   config.SignerConfig
	Metrics  *metrics.Collectors
}

// Environment returns the configured network.
func (w *Wallet) Environment() types.Environment {
	return w.Config.Environment
}

// NextNonce issues the next nonce from the wallet's generator.
func (w *Wallet) NextNonce() uint64 {
	n := w.Nonces.Next()
	w.Metrics.NonceIssued()
	return n
}

// CheckNonce verifies n is no older than the configured NonceMaxAge.
func (w *Wallet) CheckNonce(n uint64) error {
	return nonce.VerifyNonceAge(n, w.Config.NonceMaxAge)
}

// Close destroys the signing key. The Wallet must not be used afterwards.
func (w *Wallet) Close() {
	w.Signer.Destroy()
}
