// Package ledger implements the per-user balance model (spec §4.2, C2) and
// the active/completed order index (C4) that backs derived locked-balance
// computation. The ledger never mutates total balances except on deposit,
// withdraw, and trade settlement (internal, engine-only) — placing or
// cancelling an order never touches total_assets, matching spec §3's
// "lifecycle summary": locking is purely derived.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spotexchange/pkg/spottypes"
)

// User holds one account's authoritative balances and order indices. All
// exported operations are mutex-protected; spotexchange serializes calls
// into a User the same way the engine serializes calls into a pair (spec
// §5: "An implementation may protect an Exchange with a single mutex").
// The User-level mutex additionally protects concurrent access from
// multiple pair engines resolving the same user_id during settlement.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time

	mu            sync.Mutex
	totalAssets   map[spottypes.Asset]decimal.Decimal
	activeOrders  map[spottypes.TradingPair]map[spottypes.Side][]*spottypes.Order
	completed     map[spottypes.TradingPair][]*spottypes.Order
}

// NewUser constructs a user with zero balances across all supported assets.
func NewUser(username, email string, now time.Time) *User {
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		CreatedAt:    now,
		totalAssets:  make(map[spottypes.Asset]decimal.Decimal),
		activeOrders: make(map[spottypes.TradingPair]map[spottypes.Side][]*spottypes.Order),
		completed:    make(map[spottypes.TradingPair][]*spottypes.Order),
	}
	for _, a := range spottypes.AllAssets() {
		u.totalAssets[a] = decimal.Zero
	}
	return u
}

// Deposit increases total balance of asset by amount (spec §4.2, §6).
func (u *User) Deposit(asset spottypes.Asset, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &spottypes.NonPositiveAmountError{Operation: "deposit", Amount: amount}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.totalAssets[asset] = u.totalAssets[asset].Add(amount)
	return nil
}

// Withdraw decreases total balance of asset by amount, failing if it would
// exceed available balance (spec §4.2, §6).
func (u *User) Withdraw(asset spottypes.Asset, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &spottypes.NonPositiveAmountError{Operation: "withdraw", Amount: amount}
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	locked := u.lockedBalanceLocked(asset, nil)
	available := u.availableBalanceLocked(asset, locked)
	if available.LessThan(amount) {
		return &spottypes.InsufficientBalanceError{Asset: asset, Required: amount, Available: available}
	}
	u.totalAssets[asset] = u.totalAssets[asset].Sub(amount)
	return nil
}

// UpdateTotalAsset adjusts total balance of asset by delta. It is the only
// entry point trade settlement uses to move assets between counterparties
// (spec §4.5.3 step 4) and is not exposed outside the matching/exchange
// packages' call graph. A correct settlement never drives a balance
// negative; one that does (for example a base_amount market buy whose
// placement-time estimate was checked against current_price but executes
// against a resting ask priced above it) is the execution invariant spec
// §7 calls Internal, and is surfaced loud rather than clamped to zero —
// clamping would silently break conservation (P1/I2) instead of reporting
// it.
func (u *User) UpdateTotalAsset(asset spottypes.Asset, delta decimal.Decimal) {
	u.mu.Lock()
	defer u.mu.Unlock()
	next := u.totalAssets[asset].Add(delta)
	if next.IsNegative() {
		spottypes.PanicInvariant(fmt.Sprintf("settlement drove %s balance negative for user %s (delta %s)", asset, u.ID, delta.String()))
	}
	u.totalAssets[asset] = next
}

// GetTotalBalance returns total_assets[asset] (spec §6).
func (u *User) GetTotalBalance(asset spottypes.Asset) decimal.Decimal {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalAssets[asset]
}

// GetLockedBalance derives locked_balance(asset) by walking every live
// order across every pair touching asset (spec §4.2). currentPrice
// resolves a pair's current price for the market-order estimate cases in
// spottypes.Order.LockedContribution; callers (the matching engine) supply
// it per pair.
func (u *User) GetLockedBalance(asset spottypes.Asset, currentPrice func(spottypes.TradingPair) decimal.Decimal) decimal.Decimal {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lockedBalanceLocked(asset, currentPrice)
}

func (u *User) lockedBalanceLocked(asset spottypes.Asset, currentPrice func(spottypes.TradingPair) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, pair := range asset.PairsContaining() {
		for _, side := range []spottypes.Side{spottypes.Buy, spottypes.Sell} {
			for _, order := range u.activeOrders[pair][side] {
				price := decimal.Zero
				if currentPrice != nil {
					price = currentPrice(pair)
				}
				contribAsset, amount := order.LockedContribution(price)
				if contribAsset == asset {
					total = total.Add(amount)
				}
			}
		}
	}
	return total
}

// GetAvailableBalance returns max(0, total - locked) (spec §3).
func (u *User) GetAvailableBalance(asset spottypes.Asset, currentPrice func(spottypes.TradingPair) decimal.Decimal) decimal.Decimal {
	u.mu.Lock()
	defer u.mu.Unlock()
	locked := u.lockedBalanceLocked(asset, currentPrice)
	return u.availableBalanceLocked(asset, locked)
}

// availableBalanceLocked assumes u.mu is already held and locked has
// already been derived by the caller (via lockedBalanceLocked).
func (u *User) availableBalanceLocked(asset spottypes.Asset, locked decimal.Decimal) decimal.Decimal {
	return spottypes.NonNegative(u.totalAssets[asset].Sub(locked))
}

// BalanceSnapshot is the additive convenience accessor from SPEC_FULL §5,
// folding total/locked/available into one read.
type BalanceSnapshot struct {
	Total     decimal.Decimal
	Locked    decimal.Decimal
	Available decimal.Decimal
}

// Snapshot returns total/locked/available for asset in one call.
func (u *User) Snapshot(asset spottypes.Asset, currentPrice func(spottypes.TradingPair) decimal.Decimal) BalanceSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	locked := u.lockedBalanceLocked(asset, currentPrice)
	return BalanceSnapshot{
		Total:     u.totalAssets[asset],
		Locked:    locked,
		Available: u.availableBalanceLocked(asset, locked),
	}
}

// AddActiveOrder records order as live on pair/side (spec §4.2).
func (u *User) AddActiveOrder(order *spottypes.Order) {
	u.mu.Lock()
	defer u.mu.Unlock()
	side := order.Kind.Side()
	if u.activeOrders[order.TradingPair] == nil {
		u.activeOrders[order.TradingPair] = make(map[spottypes.Side][]*spottypes.Order)
	}
	u.activeOrders[order.TradingPair][side] = append(u.activeOrders[order.TradingPair][side], order)
}

// MoveOrderToCompleted removes order from the active index and appends it
// to completed_orders (spec §4.2), for orders that reached Filled or
// Cancelled.
func (u *User) MoveOrderToCompleted(order *spottypes.Order) {
	u.mu.Lock()
	defer u.mu.Unlock()
	side := order.Kind.Side()
	bucket := u.activeOrders[order.TradingPair][side]
	for i, o := range bucket {
		if o.ID == order.ID {
			u.activeOrders[order.TradingPair][side] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	u.completed[order.TradingPair] = append(u.completed[order.TradingPair], order)
}

// GetActiveOrders returns a copy of the live orders for pair/side.
func (u *User) GetActiveOrders(pair spottypes.TradingPair, side spottypes.Side) []*spottypes.Order {
	u.mu.Lock()
	defer u.mu.Unlock()
	src := u.activeOrders[pair][side]
	out := make([]*spottypes.Order, len(src))
	copy(out, src)
	return out
}

// GetCompletedOrders returns a copy of completed_orders[pair].
func (u *User) GetCompletedOrders(pair spottypes.TradingPair) []*spottypes.Order {
	u.mu.Lock()
	defer u.mu.Unlock()
	src := u.completed[pair]
	out := make([]*spottypes.Order, len(src))
	copy(out, src)
	return out
}

// HasConflictingSide reports whether the user already has a live order on
// pair/side whose price would, combined with incomingPrice and
// incomingIsBuy, constitute a self-cross (spec §4.5.1 step 3). It returns
// the first conflicting resting price found, for error context.
func (u *User) HasConflictingSide(pair spottypes.TradingPair, incomingIsBuy bool, incomingPrice decimal.Decimal) (conflict decimal.Decimal, found bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	opposite := spottypes.Sell
	if !incomingIsBuy {
		opposite = spottypes.Buy
	}

	for _, order := range u.activeOrders[pair][opposite] {
		if !order.Kind.IsLimit() || order.Price == nil {
			continue
		}
		if incomingIsBuy && order.Price.LessThan(incomingPrice) {
			return *order.Price, true
		}
		if !incomingIsBuy && order.Price.GreaterThan(incomingPrice) {
			return *order.Price, true
		}
	}
	return decimal.Zero, false
}
