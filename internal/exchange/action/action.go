package action

import (
	"fmt"
)

// Kind discriminates the closed set of action variants.
type Kind int

const (
	KindOrder Kind = iota
	KindCancel
	KindUpdateLeverage
	KindUsdTransfer
	KindSpotTransfer
	KindWithdraw
	KindUsdClassTransfer
	KindTokenDelegate
	KindSendAsset
	KindApproveBuilderFee
	KindUserDexAbstraction
	KindConvertToMultiSigUser
	KindMultiSig

	// KindCount is the number of known kinds; registry tables are sized by it.
	KindCount
)

var kindNames = [KindCount]string{
	KindOrder:                 "order",
	KindCancel:                "cancel",
	KindUpdateLeverage:        "updateLeverage",
	KindUsdTransfer:           "usdSend",
	KindSpotTransfer:          "spotSend",
	KindWithdraw:              "withdraw3",
	KindUsdClassTransfer:      "usdClassTransfer",
	KindTokenDelegate:         "tokenDelegate",
	KindSendAsset:             "sendAsset",
	KindApproveBuilderFee:     "approveBuilderFee",
	KindUserDexAbstraction:    "userDexAbstraction",
	KindConvertToMultiSigUser: "convertToMultiSigUser",
	KindMultiSig:              "multiSig",
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	return k >= 0 && k < KindCount
}

// String returns the wire type tag of the kind.
func (k Kind) String() string {
	if !k.IsValid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Action is an exchange action. The set of implementations is closed to this package.
type Action interface {
	// Kind returns the discriminant used for registry lookups.
	Kind() Kind

	// Wire returns the value whose msgpack encoding is the canonical form of the action.
	// Field order of the returned struct is the declared wire order.
	Wire() any

	// Validate checks required fields. It is called before any signing.
	Validate() error

	sealed()
}

// Encoder produces the canonical byte encoding of an action.
type Encoder func(Action) ([]byte, error)

// UserAction is implemented by actions that are signed directly over their own typed fields.
type UserAction interface {
	Action

	// TypedFields returns the structured-data message values keyed by field name, without the
	// environment-derived hyperliquidChain field.
	TypedFields(enc Encoder) (map[string]any, error)
}
