package spottypes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderKind is the side/execution-style of an order. The design collapses
// side and order-type into one tagged variant (spec §3 Order) rather than
// two orthogonal fields, since every combination but these four is invalid.
type OrderKind string

const (
	LimitBuy   OrderKind = "limit_buy"
	LimitSell  OrderKind = "limit_sell"
	MarketBuy  OrderKind = "market_buy"
	MarketSell OrderKind = "market_sell"
)

// IsBuy reports whether the kind is on the buy side.
func (k OrderKind) IsBuy() bool {
	return k == LimitBuy || k == MarketBuy
}

// IsLimit reports whether the kind rests on the book at a fixed price.
func (k OrderKind) IsLimit() bool {
	return k == LimitBuy || k == LimitSell
}

// Side is the coarse buy/sell direction of an order, independent of
// whether it is a limit or market order. The active-order index (spec
// §3 User.active_orders) is keyed by TradingPair x Side, not by the
// finer-grained OrderKind.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Side returns the coarse buy/sell direction of the order's kind.
func (k OrderKind) Side() Side {
	if k.IsBuy() {
		return Buy
	}
	return Sell
}

// OrderStatus is the order's lifecycle state. Transitions are monotone:
// Pending -> PartiallyFilled -> Filled, or Pending/PartiallyFilled ->
// Cancelled. Filled and Cancelled are terminal (spec §4.3).
type OrderStatus string

const (
	Pending         OrderStatus = "pending"
	PartiallyFilled OrderStatus = "partially_filled"
	Filled          OrderStatus = "filled"
	Cancelled       OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == Filled || s == Cancelled
}

// Order is a single resting or historical order. Fields under "intent" are
// frozen at construction; fields under "fill state" are mutated only by
// the matching engine as trades settle (spec §4.3, §9 — "frozen at
// construction vs mutable fill fields"). Exported fields are readable by
// any layer; the Apply*/Cancel methods below are the mutators the matching
// engine that owns this order's book calls. The engine also sets Status to
// Filled directly when an order's remaining target has decayed to at or
// below Epsilon (matching.finalizeNegligibleRemainder).
type Order struct {
	// ---- intent: immutable after construction ----
	ID           string
	UserID       string
	Kind         OrderKind
	TradingPair  TradingPair
	BaseAmount   *decimal.Decimal // target quantity in base asset, mutually exclusive with QuoteAmount
	QuoteAmount  *decimal.Decimal // target budget in quote asset, mutually exclusive with BaseAmount
	Price        *decimal.Decimal // set iff limit order
	Timestamp    time.Time

	// ---- fill state: mutated only by the matching engine ----
	FilledBaseAmount       decimal.Decimal
	FilledQuoteAmount      decimal.Decimal
	AverageExecutionPrice  decimal.Decimal
	Status                 OrderStatus
}

// NewOrderParams are the caller-supplied intent fields for NewOrder.
type NewOrderParams struct {
	UserID      string
	Kind        OrderKind
	TradingPair TradingPair
	BaseAmount  *decimal.Decimal
	QuoteAmount *decimal.Decimal
	Price       *decimal.Decimal
}

// NewOrder validates and constructs an Order (spec §4.3 construction
// invariants). now is injected by the caller (the engine) so tests can
// control timestamps and FIFO ordering deterministically.
func NewOrder(p NewOrderParams, now time.Time) (*Order, error) {
	if p.BaseAmount != nil && p.QuoteAmount != nil {
		return nil, &InvalidOrderParametersError{Reason: "base_amount and quote_amount are mutually exclusive"}
	}
	if p.BaseAmount == nil && p.QuoteAmount == nil {
		return nil, &InvalidOrderParametersError{Reason: "exactly one of base_amount or quote_amount is required"}
	}
	if p.BaseAmount != nil && !p.BaseAmount.IsPositive() {
		return nil, &InvalidOrderParametersError{Reason: "base_amount must be positive"}
	}
	if p.QuoteAmount != nil && !p.QuoteAmount.IsPositive() {
		return nil, &InvalidOrderParametersError{Reason: "quote_amount must be positive"}
	}
	if p.Kind.IsLimit() {
		if p.Price == nil || !p.Price.IsPositive() {
			return nil, &InvalidOrderParametersError{Reason: "limit orders require a positive price"}
		}
	} else {
		if p.Price != nil {
			return nil, &InvalidOrderParametersError{Reason: "market orders must not specify a price"}
		}
	}

	return &Order{
		ID:          uuid.NewString(),
		UserID:      p.UserID,
		Kind:        p.Kind,
		TradingPair: p.TradingPair,
		BaseAmount:  p.BaseAmount,
		QuoteAmount: p.QuoteAmount,
		Price:       p.Price,
		Timestamp:   now,
		Status:      Pending,
	}, nil
}

// RemainingBaseAmount returns base_amount - filled_base_amount. Zero if the
// order targets quote_amount instead (spec §3 derived queries).
func (o *Order) RemainingBaseAmount() decimal.Decimal {
	if o.BaseAmount == nil {
		return decimal.Zero
	}
	return o.BaseAmount.Sub(o.FilledBaseAmount)
}

// RemainingQuoteAmount returns quote_amount - filled_quote_amount. Zero if
// the order targets base_amount instead.
func (o *Order) RemainingQuoteAmount() decimal.Decimal {
	if o.QuoteAmount == nil {
		return decimal.Zero
	}
	return o.QuoteAmount.Sub(o.FilledQuoteAmount)
}

// RemainingBaseQuantity returns the order's remaining size in base units
// regardless of which target it was built against: RemainingBaseAmount
// directly when base_amount was specified, or RemainingQuoteAmount/price
// when quote_amount was (spec §4.2 allows either amount on any order
// kind, including limit orders, so the match loop needs a base-unit
// quantity to compare across both sides of a cross). price is the price
// to convert at — callers pass the order's own Price for limit orders
// (always set) or the trade price being evaluated for market orders.
func (o *Order) RemainingBaseQuantity(price decimal.Decimal) decimal.Decimal {
	if o.BaseAmount != nil {
		return o.RemainingBaseAmount()
	}
	if price.IsZero() {
		return decimal.Zero
	}
	return o.RemainingQuoteAmount().Div(price)
}

// IsFilled reports completion against whichever target (base or quote) was
// specified at construction.
func (o *Order) IsFilled() bool {
	if o.BaseAmount != nil {
		return o.FilledBaseAmount.GreaterThanOrEqual(*o.BaseAmount)
	}
	if o.QuoteAmount != nil {
		return o.FilledQuoteAmount.GreaterThanOrEqual(*o.QuoteAmount)
	}
	return false
}

// IsPartiallyFilled reports 0 < filled < target against whichever target
// was specified at construction.
func (o *Order) IsPartiallyFilled() bool {
	if o.BaseAmount != nil {
		return o.FilledBaseAmount.IsPositive() && o.FilledBaseAmount.LessThan(*o.BaseAmount)
	}
	if o.QuoteAmount != nil {
		return o.FilledQuoteAmount.IsPositive() && o.FilledQuoteAmount.LessThan(*o.QuoteAmount)
	}
	return false
}

// ApplyFill advances the order's fill state by quantity base at price, and
// transitions status per spec §4.5.3 step 2. It is the engine's job to
// call this symmetrically on both legs of a trade.
func (o *Order) ApplyFill(quantity, price decimal.Decimal) {
	o.FilledBaseAmount = o.FilledBaseAmount.Add(quantity)
	o.FilledQuoteAmount = o.FilledQuoteAmount.Add(quantity.Mul(price))
	if o.FilledBaseAmount.IsPositive() {
		o.AverageExecutionPrice = o.FilledQuoteAmount.Div(o.FilledBaseAmount)
	}

	switch {
	case o.IsFilled():
		o.Status = Filled
	case o.IsPartiallyFilled():
		o.Status = PartiallyFilled
	}
}

// Cancel transitions the order to Cancelled. Callers must first check
// CanCancel; Cancel itself does not re-validate the precondition.
func (o *Order) Cancel() {
	o.Status = Cancelled
}

// CanCancel reports whether the order is still eligible for cancellation
// (spec §4.5.4): Pending or PartiallyFilled, not yet terminal.
func (o *Order) CanCancel() bool {
	return o.Status == Pending || o.Status == PartiallyFilled
}
