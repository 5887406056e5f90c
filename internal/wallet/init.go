package wallet

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github/chapool/go-hlsigner/internal/config"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/util"
	"github/chapool/go-hlsigner/internal/wallet/address"
	"github/chapool/go-hlsigner/internal/wallet/keystore"
	"github/chapool/go-hlsigner/internal/wallet/multisig"
	"github/chapool/go-hlsigner/internal/wallet/nonce"
	"github/chapool/go-hlsigner/internal/wallet/securekey"
	"github/chapool/go-hlsigner/internal/wallet/signer"
)

// ErrMemoryLockUnavailable is returned when RequireMemoryLock is set and the key region could
// not be locked.
var ErrMemoryLockUnavailable = errors.New("key memory could not be locked")

// Initialize loads the signing key at startup and assembles the signing components.
// This function handles:
// 1. Applying the configured log level and registering metrics
// 2. Loading the key from its configured source into a locked buffer
// 3. Enforcing RequireMemoryLock
// 4. Verifying the key against the configured expected address
//
// reg may be nil, in which case metrics are collected but not registered.
func Initialize(ctx context.Context, cfg config.SignerConfig, reg prometheus.Registerer) (*Wallet, error) {
	log := util.ComponentLogger(ctx, "wallet_init")

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid signer configuration")
	}

	zerolog.SetGlobalLevel(cfg.Log.Level)

	var collectors *metrics.Collectors
	if cfg.Metrics.Enabled {
		collectors = metrics.New(cfg.Metrics.Namespace)
		if reg != nil {
			if err := collectors.Register(reg); err != nil {
				return nil, errors.Wrap(err, "failed to register metrics")
			}
		}
	}

	buf, err := loadKey(ctx, cfg.Key)
	if err != nil {
		log.Error().Err(err).Str("key_source", string(cfg.Key.Source)).Msg("Failed to load signing key")
		return nil, errors.Wrap(err, "failed to load signing key")
	}

	if !buf.Locked() {
		log.Warn().Err(buf.LockError()).Msg("Key memory is not locked against swapping")
		if cfg.RequireMemoryLock {
			buf.Destroy()
			if lockErr := buf.LockError(); lockErr != nil {
				return nil, errors.Wrapf(ErrMemoryLockUnavailable, "mlock: %v", lockErr)
			}
			return nil, ErrMemoryLockUnavailable
		}
	}

	s, err := signer.NewService(buf, signer.WithMetrics(collectors))
	if err != nil {
		buf.Destroy()
		return nil, errors.Wrap(err, "failed to create signer")
	}

	if err := VerifySignerAddress(ctx, s, cfg.Key.ExpectedAddress); err != nil {
		s.Destroy()
		return nil, err
	}

	log.Info().
		Str("signer", s.Address().String()).
		Str("environment", cfg.Environment.String()).
		Bool("memory_locked", s.MemoryLocked()).
		Msg("Signer initialized")

	return &Wallet{
		Signer:   s,
		Nonces:   nonce.NewGenerator(),
		MultiSig: multisig.NewManager(cfg.Environment, multisig.WithMetrics(collectors)),
		Config:   cfg,
		Metrics:  collectors,
	}, nil
}

// loadKey reads the key from the configured source into a new buffer.
func loadKey(ctx context.Context, key config.Key) (*securekey.Buffer, error) {
	switch key.Source {
	case config.KeySourceHex:
		return securekey.FromHex(key.Hex)
	case config.KeySourceKeystore:
		return keystore.OpenFile(ctx, key.KeystorePath, key.KeystorePassword)
	case config.KeySourceMnemonic:
		return address.DeriveKey(ctx, key.Mnemonic, key.Passphrase, key.DerivationPath)
	default:
		return nil, errors.Errorf("unknown key source %q", key.Source)
	}
}
