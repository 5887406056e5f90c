package hashing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/exchange/agent"
	"github/chapool/go-hlsigner/internal/exchange/registry"
	"github/chapool/go-hlsigner/internal/types"
)

const domainType = "EIP712Domain"

// TypedData assembles the EIP-712 document for a domain, schema and message.
func TypedData(domain registry.Domain, schema registry.Schema, message map[string]any) apitypes.TypedData {
	chainID := math.HexOrDecimal256(*new(big.Int).SetUint64(domain.ChainID))

	return apitypes.TypedData{
		Types: apitypes.Types{
			domainType:         toTypes(registry.DomainFields()),
			schema.PrimaryType: toTypes(schema.Fields),
		},
		PrimaryType: schema.PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainId:           &chainID,
			VerifyingContract: domain.VerifyingContract.String(),
		},
		Message: message,
	}
}

// Digest returns keccak256(0x19 0x01 || domainSeparator || hashStruct(message)).
func Digest(td apitypes.TypedData) (common.Hash, error) {
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return common.Hash{}, errors.Wrapf(types.ErrInvalidAction, "failed to hash %s: %v", td.PrimaryType, err)
	}
	return common.BytesToHash(hash), nil
}

// AgentDigest returns the digest signed for a phantom agent.
func AgentDigest(pa agent.PhantomAgent) (common.Hash, error) {
	return Digest(TypedData(registry.AgentDomain(), registry.AgentSchema(), pa.Message()))
}

// UserTypedData returns the EIP-712 document a user-signed action is signed over in env.
func UserTypedData(a action.Action, env types.Environment) (apitypes.TypedData, error) {
	if a == nil {
		return apitypes.TypedData{}, errors.Wrap(types.ErrInvalidAction, "action is nil")
	}

	schema, err := registry.RequireMode(a.Kind(), registry.ModeUser)
	if err != nil {
		return apitypes.TypedData{}, err
	}

	userAction, ok := a.(action.UserAction)
	if !ok {
		return apitypes.TypedData{}, errors.Wrapf(types.ErrInvalidAction, "%s carries no typed fields", a.Kind())
	}

	message, err := UserMessage(userAction, schema, env)
	if err != nil {
		return apitypes.TypedData{}, err
	}

	return TypedData(registry.DomainFor(env), schema, message), nil
}

// UserDigest returns the digest signed for a user-signed action in env.
func UserDigest(a action.Action, env types.Environment) (common.Hash, error) {
	td, err := UserTypedData(a, env)
	if err != nil {
		return common.Hash{}, err
	}
	return Digest(td)
}

// UserMessage builds the message of a user-signed action. Its keys must be exactly the
// schema fields.
func UserMessage(a action.UserAction, schema registry.Schema, env types.Environment) (apitypes.TypedDataMessage, error) {
	fields, err := a.TypedFields(Encode)
	if err != nil {
		return nil, err
	}

	message := make(apitypes.TypedDataMessage, len(schema.Fields))
	message[registry.ChainField] = env.ChainName()

	for _, field := range schema.Fields[1:] {
		value, ok := fields[field.Name]
		if !ok {
			return nil, errors.Wrapf(types.ErrInvalidAction, "%s is missing field %s", a.Kind(), field.Name)
		}
		message[field.Name] = value
	}

	if len(fields) != len(schema.Fields)-1 {
		return nil, errors.Wrapf(types.ErrInvalidAction, "%s carries fields outside its schema", a.Kind())
	}

	return message, nil
}

func toTypes(fields []registry.Field) []apitypes.Type {
	out := make([]apitypes.Type, 0, len(fields))
	for _, f := range fields {
		out = append(out, apitypes.Type{Name: f.Name, Type: f.Type})
	}
	return out
}
