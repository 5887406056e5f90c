package action

import (
	"github/chapool/go-hlsigner/internal/types"
)

// TimeInForce of a limit order.
type TimeInForce string

const (
	TifAlo TimeInForce = "Alo"
	TifIoc TimeInForce = "Ioc"
	TifGtc TimeInForce = "Gtc"
)

// Grouping of a batch of orders.
type Grouping string

const (
	GroupingNA           Grouping = "na"
	GroupingNormalTpsl   Grouping = "normalTpsl"
	GroupingPositionTpsl Grouping = "positionTpsl"
)

// TriggerKind is the take-profit / stop-loss marker of a trigger order.
type TriggerKind string

const (
	TriggerTakeProfit TriggerKind = "tp"
	TriggerStopLoss   TriggerKind = "sl"
)

// LimitOrder parameters.
type LimitOrder struct {
	TIF TimeInForce
}

// TriggerOrder parameters.
type TriggerOrder struct {
	IsMarket  bool
	TriggerPx string
	TPSL      TriggerKind
}

// OrderType holds exactly one of Limit or Trigger.
type OrderType struct {
	Limit   *LimitOrder
	Trigger *TriggerOrder
}

// OrderRequest is one order of an Order action.
type OrderRequest struct {
	Asset      uint32
	IsBuy      bool
	LimitPx    string
	Size       string
	ReduceOnly bool
	Type       OrderType
	// Cloid is an optional 0x-prefixed 16-byte client order id.
	Cloid string
}

// BuilderFee routes part of the fee to a builder, in tenths of a basis point.
type BuilderFee struct {
	Builder types.Address
	Fee     uint64
}

// Order places one or more orders.
type Order struct {
	Orders   []OrderRequest
	Grouping Grouping
	Builder  *BuilderFee
}

type limitWire struct {
	Tif string `msgpack:"tif"`
}

type triggerWire struct {
	IsMarket  bool   `msgpack:"isMarket"`
	TriggerPx string `msgpack:"triggerPx"`
	Tpsl      string `msgpack:"tpsl"`
}

type orderTypeWire struct {
	Limit   *limitWire   `msgpack:"limit,omitempty"`
	Trigger *triggerWire `msgpack:"trigger,omitempty"`
}

type orderRequestWire struct {
	Asset      uint32        `msgpack:"a"`
	IsBuy      bool          `msgpack:"b"`
	LimitPx    string        `msgpack:"p"`
	Size       string        `msgpack:"s"`
	ReduceOnly bool          `msgpack:"r"`
	OrderType  orderTypeWire `msgpack:"t"`
	Cloid      string        `msgpack:"c,omitempty"`
}

type builderWire struct {
	Builder string `msgpack:"b"`
	Fee     uint64 `msgpack:"f"`
}

type orderWire struct {
	Type     string             `msgpack:"type"`
	Orders   []orderRequestWire `msgpack:"orders"`
	Grouping string             `msgpack:"grouping"`
	Builder  *builderWire       `msgpack:"builder,omitempty"`
}

func (Order) Kind() Kind { return KindOrder }

func (Order) sealed() {}

func (a Order) Wire() any {
	orders := make([]orderRequestWire, 0, len(a.Orders))
	for _, o := range a.Orders {
		w := orderRequestWire{
			Asset:      o.Asset,
			IsBuy:      o.IsBuy,
			LimitPx:    o.LimitPx,
			Size:       o.Size,
			ReduceOnly: o.ReduceOnly,
			Cloid:      o.Cloid,
		}
		if o.Type.Limit != nil {
			w.OrderType.Limit = &limitWire{Tif: string(o.Type.Limit.TIF)}
		}
		if o.Type.Trigger != nil {
			w.OrderType.Trigger = &triggerWire{
				IsMarket:  o.Type.Trigger.IsMarket,
				TriggerPx: o.Type.Trigger.TriggerPx,
				Tpsl:      string(o.Type.Trigger.TPSL),
			}
		}
		orders = append(orders, w)
	}

	grouping := a.Grouping
	if grouping == "" {
		grouping = GroupingNA
	}

	wire := orderWire{
		Type:     KindOrder.String(),
		Orders:   orders,
		Grouping: string(grouping),
	}
	if a.Builder != nil {
		wire.Builder = &builderWire{Builder: a.Builder.Builder.String(), Fee: a.Builder.Fee}
	}
	return wire
}

func (a Order) Validate() error {
	if len(a.Orders) == 0 {
		return invalid(KindOrder, "at least one order is required")
	}

	for i, o := range a.Orders {
		if err := requireDecimal(KindOrder, "limit price", o.LimitPx); err != nil {
			return err
		}
		if err := requireDecimal(KindOrder, "size", o.Size); err != nil {
			return err
		}
		if (o.Type.Limit == nil) == (o.Type.Trigger == nil) {
			return invalid(KindOrder, "order %d must be exactly one of limit or trigger", i)
		}
		if o.Type.Trigger != nil {
			if err := requireDecimal(KindOrder, "trigger price", o.Type.Trigger.TriggerPx); err != nil {
				return err
			}
		}
		//nolint:mnd // 0x prefix plus 16 bytes of hex
		if o.Cloid != "" && len(o.Cloid) != 34 {
			return invalid(KindOrder, "cloid %q must be 16 bytes of hex", o.Cloid)
		}
	}

	return nil
}

// CancelRequest identifies one resting order.
type CancelRequest struct {
	Asset   uint32
	OrderID uint64
}

// Cancel cancels resting orders by id.
type Cancel struct {
	Cancels []CancelRequest
}

type cancelRequestWire struct {
	Asset   uint32 `msgpack:"a"`
	OrderID uint64 `msgpack:"o"`
}

type cancelWire struct {
	Type    string              `msgpack:"type"`
	Cancels []cancelRequestWire `msgpack:"cancels"`
}

func (Cancel) Kind() Kind { return KindCancel }

func (Cancel) sealed() {}

func (a Cancel) Wire() any {
	cancels := make([]cancelRequestWire, 0, len(a.Cancels))
	for _, c := range a.Cancels {
		cancels = append(cancels, cancelRequestWire(c))
	}
	return cancelWire{Type: KindCancel.String(), Cancels: cancels}
}

func (a Cancel) Validate() error {
	if len(a.Cancels) == 0 {
		return invalid(KindCancel, "at least one cancel is required")
	}
	return nil
}

// UpdateLeverage changes the leverage of one asset.
type UpdateLeverage struct {
	Asset    uint32
	IsCross  bool
	Leverage uint32
}

type updateLeverageWire struct {
	Type     string `msgpack:"type"`
	Asset    uint32 `msgpack:"asset"`
	IsCross  bool   `msgpack:"isCross"`
	Leverage uint32 `msgpack:"leverage"`
}

func (UpdateLeverage) Kind() Kind { return KindUpdateLeverage }

func (UpdateLeverage) sealed() {}

func (a UpdateLeverage) Wire() any {
	return updateLeverageWire{
		Type:     KindUpdateLeverage.String(),
		Asset:    a.Asset,
		IsCross:  a.IsCross,
		Leverage: a.Leverage,
	}
}

func (a UpdateLeverage) Validate() error {
	if a.Leverage == 0 {
		return invalid(KindUpdateLeverage, "leverage must be positive")
	}
	return nil
}
