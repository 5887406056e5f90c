package types

import (
	"strings"

	"github.com/pkg/errors"
)

// Environment selects the network a signature is bound to.
type Environment int

const (
	Mainnet Environment = iota
	Testnet
)

// ParseEnvironment parses "mainnet" or "testnet" in any letter case.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	default:
		return 0, errors.Errorf("unknown environment %q", s)
	}
}

// IsValid reports whether e is a supported environment.
func (e Environment) IsValid() bool {
	return e == Mainnet || e == Testnet
}

// Source returns the phantom agent source tag: "a" for mainnet, "b" for testnet.
func (e Environment) Source() string {
	if e == Mainnet {
		return "a"
	}
	return "b"
}

// ChainName returns the hyperliquidChain value carried by user-signed actions.
func (e Environment) ChainName() string {
	if e == Mainnet {
		return "Mainnet"
	}
	return "Testnet"
}

// String implements fmt.Stringer.
func (e Environment) String() string {
	return strings.ToLower(e.ChainName())
}

// MarshalText implements encoding.TextMarshaler.
func (e Environment) MarshalText() ([]byte, error) {
	if !e.IsValid() {
		return nil, errors.Errorf("unknown environment %d", int(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Environment) UnmarshalText(text []byte) error {
	env, err := ParseEnvironment(string(text))
	if err != nil {
		return err
	}
	*e = env
	return nil
}
