package action

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/types"
)

// ApproveBuilderFee authorizes a builder to charge up to MaxFeeRate, e.g. "0.001%".
type ApproveBuilderFee struct {
	MaxFeeRate string
	Builder    types.Address
	Nonce      uint64
}

type approveBuilderFeeWire struct {
	Type       string `msgpack:"type"`
	MaxFeeRate string `msgpack:"maxFeeRate"`
	Builder    string `msgpack:"builder"`
	Nonce      uint64 `msgpack:"nonce"`
}

func (ApproveBuilderFee) Kind() Kind { return KindApproveBuilderFee }

func (ApproveBuilderFee) sealed() {}

func (a ApproveBuilderFee) Wire() any {
	return approveBuilderFeeWire{
		Type:       KindApproveBuilderFee.String(),
		MaxFeeRate: a.MaxFeeRate,
		Builder:    a.Builder.String(),
		Nonce:      a.Nonce,
	}
}

func (a ApproveBuilderFee) Validate() error {
	if err := requireAddress(KindApproveBuilderFee, "builder", a.Builder); err != nil {
		return err
	}
	rate, ok := strings.CutSuffix(a.MaxFeeRate, "%")
	if !ok {
		return invalid(KindApproveBuilderFee, "max fee rate %q must be a percentage", a.MaxFeeRate)
	}
	return requireDecimal(KindApproveBuilderFee, "max fee rate", rate)
}

func (a ApproveBuilderFee) TypedFields(Encoder) (map[string]any, error) {
	return map[string]any{
		"maxFeeRate": a.MaxFeeRate,
		"builder":    a.Builder.String(),
		"nonce":      uint64Field(a.Nonce),
	}, nil
}

// UserDexAbstraction toggles dex abstraction for a user.
type UserDexAbstraction struct {
	User    types.Address
	Enabled bool
	Nonce   uint64
}

type userDexAbstractionWire struct {
	Type    string `msgpack:"type"`
	User    string `msgpack:"user"`
	Enabled bool   `msgpack:"enabled"`
	Nonce   uint64 `msgpack:"nonce"`
}

func (UserDexAbstraction) Kind() Kind { return KindUserDexAbstraction }

func (UserDexAbstraction) sealed() {}

func (a UserDexAbstraction) Wire() any {
	return userDexAbstractionWire{
		Type:    KindUserDexAbstraction.String(),
		User:    a.User.String(),
		Enabled: a.Enabled,
		Nonce:   a.Nonce,
	}
}

func (a UserDexAbstraction) Validate() error {
	return requireAddress(KindUserDexAbstraction, "user", a.User)
}

func (a UserDexAbstraction) TypedFields(Encoder) (map[string]any, error) {
	return map[string]any{
		"user":    a.User.String(),
		"enabled": a.Enabled,
		"nonce":   uint64Field(a.Nonce),
	}, nil
}

// ConvertToMultiSigUser turns the signing account into a multi-sig user. An empty
// AuthorizedUsers with a zero Threshold converts it back to a regular user.
type ConvertToMultiSigUser struct {
	AuthorizedUsers []types.Address
	Threshold       uint32
	Nonce           uint64
}

type convertToMultiSigUserWire struct {
	Type    string `msgpack:"type"`
	Signers string `msgpack:"signers"`
	Nonce   uint64 `msgpack:"nonce"`
}

type multiSigSignersJSON struct {
	AuthorizedUsers []string `json:"authorizedUsers"`
	Threshold       uint32   `json:"threshold"`
}

// Signers returns the JSON signer set carried in the action: authorized users sorted in
// lowercase form, or "null" when reverting to a regular user.
func (a ConvertToMultiSigUser) Signers() (string, error) {
	if len(a.AuthorizedUsers) == 0 && a.Threshold == 0 {
		return "null", nil
	}

	users := make([]string, 0, len(a.AuthorizedUsers))
	for _, u := range a.AuthorizedUsers {
		users = append(users, u.String())
	}
	sort.Strings(users)

	data, err := json.Marshal(multiSigSignersJSON{AuthorizedUsers: users, Threshold: a.Threshold})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal multi-sig signers")
	}
	return string(data), nil
}

func (ConvertToMultiSigUser) Kind() Kind { return KindConvertToMultiSigUser }

func (ConvertToMultiSigUser) sealed() {}

func (a ConvertToMultiSigUser) Wire() any {
	// Validate guarantees Signers cannot fail for a signed action.
	signers, _ := a.Signers()
	return convertToMultiSigUserWire{
		Type:    KindConvertToMultiSigUser.String(),
		Signers: signers,
		Nonce:   a.Nonce,
	}
}

func (a ConvertToMultiSigUser) Validate() error {
	if len(a.AuthorizedUsers) == 0 && a.Threshold == 0 {
		return nil
	}
	if a.Threshold == 0 || int(a.Threshold) > len(a.AuthorizedUsers) {
		return invalid(KindConvertToMultiSigUser, "threshold %d out of range for %d users", a.Threshold, len(a.AuthorizedUsers))
	}

	seen := make(map[types.Address]struct{}, len(a.AuthorizedUsers))
	for _, u := range a.AuthorizedUsers {
		if u.IsZero() {
			return invalid(KindConvertToMultiSigUser, "authorized user must not be the zero address")
		}
		if _, ok := seen[u]; ok {
			return invalid(KindConvertToMultiSigUser, "authorized user %s listed twice", u)
		}
		seen[u] = struct{}{}
	}
	return nil
}

func (a ConvertToMultiSigUser) TypedFields(Encoder) (map[string]any, error) {
	signers, err := a.Signers()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"signers": signers,
		"nonce":   uint64Field(a.Nonce),
	}, nil
}
