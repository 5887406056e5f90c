package config

import (
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"github/chapool/go-hlsigner/internal/types"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "HLSIGNER"

// KeySource selects where the signing key is loaded from.
type KeySource string

const (
	KeySourceHex      KeySource = "hex"
	KeySourceKeystore KeySource = "keystore"
	KeySourceMnemonic KeySource = "mnemonic"
)

// Key locates the signing key. Secret values are never serialized.
type Key struct {
	Source           KeySource `json:"source"`
	Hex              string    `json:"-"`
	KeystorePath     string    `json:"keystorePath"`
	KeystorePassword string    `json:"-"`
	Mnemonic         string    `json:"-"`
	Passphrase       string    `json:"-"`
	DerivationPath   string    `json:"derivationPath"`
	// ExpectedAddress, when set, must match the address of the loaded key.
	ExpectedAddress string `json:"expectedAddress"`
}

type Log struct {
	Level zerolog.Level `json:"level"`
}

type Metrics struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace"`
}

// SignerConfig configures the signing engine.
type SignerConfig struct {
	Environment types.Environment `json:"environment"`
	// NonceMaxAge bounds how old a caller-supplied nonce may be when age checks are enabled.
	NonceMaxAge time.Duration `json:"nonceMaxAge"`
	// RequireMemoryLock makes startup fail when the key region cannot be locked.
	RequireMemoryLock bool    `json:"requireMemoryLock"`
	Key               Key     `json:"key"`
	Log               Log     `json:"log"`
	Metrics           Metrics `json:"metrics"`
}

var dotenvOnce sync.Once

// loadDotenv loads .env once per process. Variables already set in the environment win.
func loadDotenv() {
	dotenvOnce.Do(func() {
		if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msg("Failed to load .env file")
		}
	})
}

// NewViper returns a viper instance bound to HLSIGNER_* variables with all defaults set.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", types.Testnet.String())
	//nolint:mnd
	v.SetDefault("nonce_max_age", 5*time.Minute)
	v.SetDefault("require_memory_lock", false)
	v.SetDefault("key.source", string(KeySourceHex))
	v.SetDefault("key.hex", "")
	v.SetDefault("key.keystore_path", "")
	v.SetDefault("key.keystore_password", "")
	v.SetDefault("key.mnemonic", "")
	v.SetDefault("key.passphrase", "")
	v.SetDefault("key.derivation_path", "m/44'/60'/0'/0/0")
	v.SetDefault("key.expected_address", "")
	v.SetDefault("log.level", zerolog.InfoLevel.String())
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "hlsigner")

	return v
}

// Load reads a SignerConfig from v and validates it.
func Load(v *viper.Viper) (SignerConfig, error) {
	cfg, err := read(v)
	if err != nil {
		return SignerConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return SignerConfig{}, err
	}

	return cfg, nil
}

// read maps v onto a SignerConfig. On a parse error the returned config keeps the defaults
// for the fields not yet parsed.
func read(v *viper.Viper) (SignerConfig, error) {
	cfg := SignerConfig{
		Environment:       types.Testnet,
		NonceMaxAge:       v.GetDuration("nonce_max_age"),
		RequireMemoryLock: v.GetBool("require_memory_lock"),
		Key: Key{
			Source:           KeySource(strings.ToLower(v.GetString("key.source"))),
			Hex:              v.GetString("key.hex"),
			KeystorePath:     v.GetString("key.keystore_path"),
			KeystorePassword: v.GetString("key.keystore_password"),
			Mnemonic:         v.GetString("key.mnemonic"),
			Passphrase:       v.GetString("key.passphrase"),
			DerivationPath:   v.GetString("key.derivation_path"),
			ExpectedAddress:  v.GetString("key.expected_address"),
		},
		Log: Log{
			Level: zerolog.InfoLevel,
		},
		Metrics: Metrics{
			Enabled:   v.GetBool("metrics.enabled"),
			Namespace: v.GetString("metrics.namespace"),
		},
	}

	env, err := types.ParseEnvironment(v.GetString("environment"))
	if err != nil {
		return cfg, errors.Wrap(err, "failed to parse environment")
	}
	cfg.Environment = env

	level, err := zerolog.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return cfg, errors.Wrap(err, "failed to parse log level")
	}
	cfg.Log.Level = level

	return cfg, nil
}

// Validate checks that the configured key source has what it needs.
func (c SignerConfig) Validate() error {
	if !c.Environment.IsValid() {
		return errors.Errorf("unknown environment %d", int(c.Environment))
	}
	if c.NonceMaxAge <= 0 {
		return errors.New("nonce max age must be positive")
	}

	switch c.Key.Source {
	case KeySourceHex:
		if c.Key.Hex == "" {
			return errors.New("key source hex requires HLSIGNER_KEY_HEX")
		}
	case KeySourceKeystore:
		if c.Key.KeystorePath == "" {
			return errors.New("key source keystore requires HLSIGNER_KEY_KEYSTORE_PATH")
		}
	case KeySourceMnemonic:
		if c.Key.Mnemonic == "" {
			return errors.New("key source mnemonic requires HLSIGNER_KEY_MNEMONIC")
		}
	default:
		return errors.Errorf("unknown key source %q", c.Key.Source)
	}

	if c.Key.ExpectedAddress != "" {
		if _, err := types.ParseAddress(c.Key.ExpectedAddress); err != nil {
			return errors.Wrap(err, "failed to parse expected key address")
		}
	}

	return nil
}

// DefaultSignerConfigFromEnv reads .env and HLSIGNER_* variables. Missing key material is
// not an error here; Validate reports it.
func DefaultSignerConfigFromEnv() SignerConfig {
	loadDotenv()

	cfg, err := read(NewViper())
	if err != nil {
		log.Warn().Err(err).Msg("Invalid signer configuration, using defaults")
	}

	return cfg
}
