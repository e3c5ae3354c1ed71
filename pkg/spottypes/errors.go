package spottypes

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidOrderParametersError is returned when an order's intent fields
// fail construction-time validation (spec §4.3, §7): both amounts set,
// neither amount set, price set on a market order, price missing/zero on
// a limit order, or a non-positive amount.
type InvalidOrderParametersError struct {
	Reason string
}

func (e *InvalidOrderParametersError) Error() string {
	return fmt.Sprintf("invalid order parameters: %s", e.Reason)
}

// InsufficientBalanceError is returned when an order or withdrawal would
// require more than the user's available balance of Asset.
type InsufficientBalanceError struct {
	Asset     Asset
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: required %s, available %s",
		e.Asset, e.Required.String(), e.Available.String())
}

// PriceCrossingError is returned when a limit order would create a
// self-cross: the user already holds a live order on the opposite side of
// the same pair whose price would configure a self-match (spec §4.5.1).
type PriceCrossingError struct {
	TradingPair   TradingPair
	IncomingPrice decimal.Decimal
	ConflictPrice decimal.Decimal
	IncomingIsBuy bool
}

func (e *PriceCrossingError) Error() string {
	side := "sell"
	if e.IncomingIsBuy {
		side = "buy"
	}
	return fmt.Sprintf("price crossing on %s: incoming %s at %s crosses existing resting order at %s",
		e.TradingPair, side, e.IncomingPrice.String(), e.ConflictPrice.String())
}

// DuplicateUsernameError is returned by user creation when the username is
// already registered.
type DuplicateUsernameError struct {
	Username string
}

func (e *DuplicateUsernameError) Error() string {
	return fmt.Sprintf("duplicate username: %s", e.Username)
}

// NonPositiveAmountError is returned by deposit/withdraw when amount <= 0.
type NonPositiveAmountError struct {
	Operation string
	Amount    decimal.Decimal
}

func (e *NonPositiveAmountError) Error() string {
	return fmt.Sprintf("%s amount must be positive, got %s", e.Operation, e.Amount.String())
}

// InternalInvariantError marks a violation of an execution invariant the
// design treats as fatal (spec §4.5.2 E1, §7 Internal): the match loop
// would have produced a trade at or below Epsilon, or a settlement would
// have driven a user's balance negative. It is never returned as
// a normal error — it is only ever the argument to panic, so that a
// precision bug upstream fails loud instead of silently under-filling
// orders.
type InternalInvariantError struct {
	Reason string
}

func (e *InternalInvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated: %s", e.Reason)
}

// PanicInvariant raises an InternalInvariantError. Call sites name the
// invariant that broke; this function never returns.
func PanicInvariant(reason string) {
	panic(&InternalInvariantError{Reason: reason})
}
