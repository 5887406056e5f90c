package action

import (
	"github/chapool/go-hlsigner/internal/types"
)

// TokenDelegate stakes or unstakes with a validator. Wei is in the smallest token unit.
type TokenDelegate struct {
	Validator    types.Address
	Wei          uint64
	IsUndelegate bool
	Nonce        uint64
}

type tokenDelegateWire struct {
	Type         string `msgpack:"type"`
	Validator    string `msgpack:"validator"`
	Wei          uint64 `msgpack:"wei"`
	IsUndelegate bool   `msgpack:"isUndelegate"`
	Nonce        uint64 `msgpack:"nonce"`
}

func (TokenDelegate) Kind() Kind { return KindTokenDelegate }

func (TokenDelegate) sealed() {}

func (a TokenDelegate) Wire() any {
	return tokenDelegateWire{
		Type:         KindTokenDelegate.String(),
		Validator:    a.Validator.String(),
		Wei:          a.Wei,
		IsUndelegate: a.IsUndelegate,
		Nonce:        a.Nonce,
	}
}

func (a TokenDelegate) Validate() error {
	if err := requireAddress(KindTokenDelegate, "validator", a.Validator); err != nil {
		return err
	}
	if a.Wei == 0 {
		return invalid(KindTokenDelegate, "wei must be positive")
	}
	return nil
}

func (a TokenDelegate) TypedFields(Encoder) (map[string]any, error) {
	return map[string]any{
		"validator":    a.Validator.String(),
		"wei":          uint64Field(a.Wei),
		"isUndelegate": a.IsUndelegate,
		"nonce":        uint64Field(a.Nonce),
	}, nil
}
