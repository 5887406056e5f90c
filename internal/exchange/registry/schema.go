package registry

import (
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/types"
)

// Mode is how an action kind is authorized.
type Mode int

const (
	// ModeAgent actions are hashed, wrapped in a phantom agent and signed against AgentDomain.
	ModeAgent Mode = iota + 1
	// ModeUser actions are signed directly over their own fields against DomainFor(env).
	ModeUser
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeAgent:
		return "agent"
	case ModeUser:
		return "user"
	default:
		return "unknown"
	}
}

// Field is one (name, type) pair of a structured-data type.
type Field struct {
	Name string
	Type string
}

// Schema is the structured-data type used to sign an action kind.
type Schema struct {
	Kind        action.Kind
	Mode        Mode
	PrimaryType string
	Fields      []Field
}

// ChainField is the environment-derived first field of every user-signed schema.
const ChainField = "hyperliquidChain"

const (
	agentPrimaryType = "Agent"
	userTypePrefix   = "HyperliquidTransaction:"
)

var agentFields = []Field{
	{Name: "source", Type: "string"},
	{Name: "connectionId", Type: "bytes32"},
}

func agent(kind action.Kind) Schema {
	return Schema{Kind: kind, Mode: ModeAgent, PrimaryType: agentPrimaryType, Fields: agentFields}
}

func user(kind action.Kind, name string, fields ...Field) Schema {
	return Schema{
		Kind:        kind,
		Mode:        ModeUser,
		PrimaryType: userTypePrefix + name,
		Fields:      append([]Field{{Name: ChainField, Type: "string"}}, fields...),
	}
}

// schemas is indexed by kind; a kind added to action without an entry here fails registry tests.
var schemas = [action.KindCount]Schema{
	action.KindOrder:          agent(action.KindOrder),
	action.KindCancel:         agent(action.KindCancel),
	action.KindUpdateLeverage: agent(action.KindUpdateLeverage),
	action.KindUsdTransfer: user(action.KindUsdTransfer, "UsdSend",
		Field{Name: "destination", Type: "string"},
		Field{Name: "amount", Type: "string"},
		Field{Name: "time", Type: "uint64"},
	),
	action.KindSpotTransfer: user(action.KindSpotTransfer, "SpotSend",
		Field{Name: "destination", Type: "string"},
		Field{Name: "token", Type: "string"},
		Field{Name: "amount", Type: "string"},
		Field{Name: "time", Type: "uint64"},
	),
	action.KindWithdraw: user(action.KindWithdraw, "Withdraw",
		Field{Name: "destination", Type: "string"},
		Field{Name: "amount", Type: "string"},
		Field{Name: "time", Type: "uint64"},
	),
	action.KindUsdClassTransfer: user(action.KindUsdClassTransfer, "UsdClassTransfer",
		Field{Name: "amount", Type: "string"},
		Field{Name: "toPerp", Type: "bool"},
		Field{Name: "nonce", Type: "uint64"},
	),
	action.KindTokenDelegate: user(action.KindTokenDelegate, "TokenDelegate",
		Field{Name: "validator", Type: "address"},
		Field{Name: "wei", Type: "uint64"},
		Field{Name: "isUndelegate", Type: "bool"},
		Field{Name: "nonce", Type: "uint64"},
	),
	action.KindSendAsset: user(action.KindSendAsset, "SendAsset",
		Field{Name: "destination", Type: "string"},
		Field{Name: "sourceDex", Type: "string"},
		Field{Name: "destinationDex", Type: "string"},
		Field{Name: "token", Type: "string"},
		Field{Name: "amount", Type: "string"},
		Field{Name: "fromSubAccount", Type: "string"},
		Field{Name: "nonce", Type: "uint64"},
	),
	action.KindApproveBuilderFee: user(action.KindApproveBuilderFee, "ApproveBuilderFee",
		Field{Name: "maxFeeRate", Type: "string"},
		Field{Name: "builder", Type: "address"},
		Field{Name: "nonce", Type: "uint64"},
	),
	action.KindUserDexAbstraction: user(action.KindUserDexAbstraction, "UserDexAbstraction",
		Field{Name: "user", Type: "address"},
		Field{Name: "enabled", Type: "bool"},
		Field{Name: "nonce", Type: "uint64"},
	),
	action.KindConvertToMultiSigUser: user(action.KindConvertToMultiSigUser, "ConvertToMultiSigUser",
		Field{Name: "signers", Type: "string"},
		Field{Name: "nonce", Type: "uint64"},
	),
	action.KindMultiSig: user(action.KindMultiSig, "SendMultiSig",
		Field{Name: "inner", Type: "bytes"},
		Field{Name: "multiSigUser", Type: "address"},
		Field{Name: "signatures", Type: "string[]"},
		Field{Name: "nonce", Type: "uint64"},
		Field{Name: "vaultAddress", Type: "address"},
	),
}

// SchemaFor returns the schema registered for kind.
func SchemaFor(kind action.Kind) (Schema, error) {
	if !kind.IsValid() || schemas[kind].Mode == 0 {
		return Schema{}, errors.Wrapf(types.ErrUnknownActionKind, "no schema for %s", kind)
	}

	schema := schemas[kind]
	schema.Fields = append([]Field(nil), schema.Fields...)
	return schema, nil
}

// AgentSchema returns the phantom agent schema.
func AgentSchema() Schema {
	return Schema{Mode: ModeAgent, PrimaryType: agentPrimaryType, Fields: append([]Field(nil), agentFields...)}
}

// RequireMode returns the schema of kind if it is signed in mode, ErrInvalidAction otherwise.
func RequireMode(kind action.Kind, mode Mode) (Schema, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return Schema{}, err
	}
	if schema.Mode != mode {
		return Schema{}, errors.Wrapf(types.ErrInvalidAction, "%s has no %s schema", kind, mode)
	}
	return schema, nil
}
