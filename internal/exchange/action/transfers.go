package action

import (
	"math/big"

	"github/chapool/go-hlsigner/internal/types"
)

func uint64Field(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// UsdTransfer sends USDC between perp accounts.
type UsdTransfer struct {
	Destination types.Address
	Amount      string
	Time        uint64
}

type usdTransferWire struct {
	Type        string `msgpack:"type"`
	Destination string `msgpack:"destination"`
	Amount      string `msgpack:"amount"`
	Time        uint64 `msgpack:"time"`
}

func (UsdTransfer) Kind() Kind { return KindUsdTransfer }

func (UsdTransfer) sealed() {}

func (a UsdTransfer) Wire() any {
	return usdTransferWire{
		Type:        KindUsdTransfer.String(),
		Destination: a.Destination.String(),
		Amount:      a.Amount,
		Time:        a.Time,
	}
}

func (a UsdTransfer) Validate() error {
	if err := requireAddress(KindUsdTransfer, "destination", a.Destination); err != nil {
		return err
	}
	return requireDecimal(KindUsdTransfer, "amount", a.Amount)
}

func (a UsdTransfer) TypedFields(Encoder) (map[string]any, error) {
	return map[string]any{
		"destination": a.Destination.String(),
		"amount":      a.Amount,
		"time":        uint64Field(a.Time),
	}, nil
}

// SpotTransfer sends a spot token.
type SpotTransfer struct {
	Destination types.Address
	// Token is "<name>:<token id>", e.g. "PURR:0xc1fb593aeffbeb02f85e0308e9956a90".
	Token  string
	Amount string
	Time   uint64
}

type spotTransferWire struct {
	Type        string `msgpack:"type"`
	Destination string `msgpack:"destination"`
	Token       string `msgpack:"token"`
	Amount      string `msgpack:"amount"`
	Time        uint64 `msgpack:"time"`
}

func (SpotTransfer) Kind() Kind { return KindSpotTransfer }

func (SpotTransfer) sealed() {}

func (a SpotTransfer) Wire() any {
	return spotTransferWire{
		Type:        KindSpotTransfer.String(),
		Destination: a.Destination.String(),
		Token:       a.Token,
		Amount:      a.Amount,
		Time:        a.Time,
	}
}

func (a SpotTransfer) Validate() error {
	if err := requireAddress(KindSpotTransfer, "destination", a.Destination); err != nil {
		return err
	}
	if err := requireNonEmpty(KindSpotTransfer, "token", a.Token); err != nil {
		return err
	}
	return requireDecimal(KindSpotTransfer, "amount", a.Amount)
}

func (a SpotTransfer) TypedFields(Encoder) (map[string]any, error) {
	return map[string]any{
		"destination": a.Destination.String(),
		"token":       a.Token,
		"amount":      a.Amount,
		"time":        uint64Field(a.Time),
	}, nil
}

// Withdraw moves USDC from the exchange to the bridge destination.
type Withdraw struct {
	Destination types.Address
	Amount      string
	Time        uint64
}

type withdrawWire struct {
	Type        string `msgpack:"type"`
	Destination string `msgpack:"destination"`
	Amount      string `msgpack:"amount"`
	Time        uint64 `msgpack:"time"`
}

func (Withdraw) Kind() Kind { return KindWithdraw }

func (Withdraw) sealed() {}

func (a Withdraw) Wire() any {
	return withdrawWire{
		Type:        KindWithdraw.String(),
		Destination: a.Destination.String(),
		Amount:      a.Amount,
		Time:        a.Time,
	}
}

func (a Withdraw) Validate() error {
	if err := requireAddress(KindWithdraw, "destination", a.Destination); err != nil {
		return err
	}
	return requireDecimal(KindWithdraw, "amount", a.Amount)
}

func (a Withdraw) TypedFields(Encoder) (map[string]any, error) {
	return map[string]any{
		"destination": a.Destination.String(),
		"amount":      a.Amount,
		"time":        uint64Field(a.Time),
	}, nil
}

// UsdClassTransfer moves USDC between the spot and perp balances.
type UsdClassTransfer struct {
	Amount string
	ToPerp bool
	Nonce  uint64
}

type usdClassTransferWire struct {
	Type   string `msgpack:"type"`
	Amount string `msgpack:"amount"`
	ToPerp bool   `msgpack:"toPerp"`
	Nonce  uint64 `msgpack:"nonce"`
}

func (UsdClassTransfer) Kind() Kind { return KindUsdClassTransfer }

func (UsdClassTransfer) sealed() {}

func (a UsdClassTransfer) Wire() any {
	return usdClassTransferWire{
		Type:   KindUsdClassTransfer.String(),
		Amount: a.Amount,
		ToPerp: a.ToPerp,
		Nonce:  a.Nonce,
	}
}

func (a UsdClassTransfer) Validate() error {
	return requireDecimal(KindUsdClassTransfer, "amount", a.Amount)
}

func (a UsdClassTransfer) TypedFields(Encoder) (map[string]any, error) {
	return map[string]any{
		"amount": a.Amount,
		"toPerp": a.ToPerp,
		"nonce":  uint64Field(a.Nonce),
	}, nil
}

// SendAsset moves a token between dexes and sub-accounts.
type SendAsset struct {
	Destination    types.Address
	SourceDex      string
	DestinationDex string
	Token          string
	Amount         string
	// FromSubAccount is empty or the sub-account address text.
	FromSubAccount string
	Nonce          uint64
}

type sendAssetWire struct {
	Type           string `msgpack:"type"`
	Destination    string `msgpack:"destination"`
	SourceDex      string `msgpack:"sourceDex"`
	DestinationDex string `msgpack:"destinationDex"`
	Token          string `msgpack:"token"`
	Amount         string `msgpack:"amount"`
	FromSubAccount string `msgpack:"fromSubAccount"`
	Nonce          uint64 `msgpack:"nonce"`
}

func (SendAsset) Kind() Kind { return KindSendAsset }

func (SendAsset) sealed() {}

func (a SendAsset) Wire() any {
	return sendAssetWire{
		Type:           KindSendAsset.String(),
		Destination:    a.Destination.String(),
		SourceDex:      a.SourceDex,
		DestinationDex: a.DestinationDex,
		Token:          a.Token,
		Amount:         a.Amount,
		FromSubAccount: a.FromSubAccount,
		Nonce:          a.Nonce,
	}
}

func (a SendAsset) Validate() error {
	if err := requireAddress(KindSendAsset, "destination", a.Destination); err != nil {
		return err
	}
	if err := requireNonEmpty(KindSendAsset, "token", a.Token); err != nil {
		return err
	}
	if a.FromSubAccount != "" {
		if _, err := types.ParseAddress(a.FromSubAccount); err != nil {
			return invalid(KindSendAsset, "fromSubAccount %q is not an address", a.FromSubAccount)
		}
	}
	return requireDecimal(KindSendAsset, "amount", a.Amount)
}

func (a SendAsset) TypedFields(Encoder) (map[string]any, error) {
	return map[string]any{
		"destination":    a.Destination.String(),
		"sourceDex":      a.SourceDex,
		"destinationDex": a.DestinationDex,
		"token":          a.Token,
		"amount":         a.Amount,
		"fromSubAccount": a.FromSubAccount,
		"nonce":          uint64Field(a.Nonce),
	}, nil
}
