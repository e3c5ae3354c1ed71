// Package matching implements the per-pair matching engine (spec §4.5,
// C6): order validation, insertion, the match loop, and the settlement
// hand-off to the ledger.
package matching

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spotexchange/internal/ledger"
	"spotexchange/internal/orderbook"
	"spotexchange/pkg/spottypes"
)

// Clock abstracts time.Now so tests can drive deterministic timestamps,
// matching NewOrder's caller-injected now convention.
type Clock func() time.Time

// Engine is the matching engine for exactly one trading pair. It holds a
// reference to the exchange-wide user map (shared, per spec §4.6/§5 —
// "the user map is shared between the facade and every engine") rather
// than owning its own copy.
type Engine struct {
	Pair  spottypes.TradingPair
	users map[string]*ledger.User
	clock Clock
	log   *slog.Logger

	mu      sync.Mutex
	book    *orderbook.OrderBook
	history orderbook.TradeHistory
	orders  map[string]*spottypes.Order
}

// New constructs the engine for pair, seeded at its initial_price (spec §3
// Asset/TradingPair). users is the shared exchange-wide registry; the
// caller (the Exchange facade) owns its lifetime.
func New(pair spottypes.TradingPair, users map[string]*ledger.User, clock Clock, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	now := clock()
	return &Engine{
		Pair:   pair,
		users:  users,
		clock:  clock,
		log:    log.With("component", "matching.Engine", "pair", string(pair)),
		book:   orderbook.New(pair.InitialPrice(), now),
		orders: make(map[string]*spottypes.Order),
	}
}

// PlaceOrderParams are the caller-supplied arguments to PlaceOrder.
type PlaceOrderParams struct {
	UserID      string
	Kind        spottypes.OrderKind
	BaseAmount  *decimal.Decimal
	QuoteAmount *decimal.Decimal
	Price       *decimal.Decimal
}

// PlaceOrder runs spec §4.5.1 end to end: construct, validate balance,
// check self-cross, insert, match to quiescence, return.
func (e *Engine) PlaceOrder(p PlaceOrderParams) (*spottypes.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	user, ok := e.users[p.UserID]
	if !ok {
		return nil, &spottypes.InvalidOrderParametersError{Reason: "unknown user"}
	}

	now := e.clock()
	order, err := spottypes.NewOrder(spottypes.NewOrderParams{
		UserID:      p.UserID,
		Kind:        p.Kind,
		TradingPair: e.Pair,
		BaseAmount:  p.BaseAmount,
		QuoteAmount: p.QuoteAmount,
		Price:       p.Price,
	}, now)
	if err != nil {
		return nil, err
	}

	asset, required := order.LockedContribution(e.book.CurrentPrice)
	currentPriceFn := func(spottypes.TradingPair) decimal.Decimal { return e.book.CurrentPrice }
	available := user.GetAvailableBalance(asset, currentPriceFn)
	if available.LessThan(required) {
		return nil, &spottypes.InsufficientBalanceError{Asset: asset, Required: required, Available: available}
	}

	if order.Kind.IsLimit() {
		if conflict, found := user.HasConflictingSide(e.Pair, order.Kind.IsBuy(), *order.Price); found {
			return nil, &spottypes.PriceCrossingError{
				TradingPair:   e.Pair,
				IncomingPrice: *order.Price,
				ConflictPrice: conflict,
				IncomingIsBuy: order.Kind.IsBuy(),
			}
		}
	}

	e.book.Insert(order)
	e.orders[order.ID] = order
	user.AddActiveOrder(order)
	e.log.Info("order accepted", "order_id", order.ID, "kind", string(order.Kind), "user_id", p.UserID)

	e.runMatchLoop()

	return order, nil
}

// CancelOrder implements spec §4.5.4: returns false (non-fatal) if the
// order is unknown, already terminal, or owned by a different user.
func (e *Engine) CancelOrder(orderID, userID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.orders[orderID]
	if !ok || order.UserID != userID || !order.CanCancel() {
		return false
	}

	order.Cancel()
	e.book.Remove(order)
	if user, ok := e.users[order.UserID]; ok {
		user.MoveOrderToCompleted(order)
	}
	e.log.Info("order cancelled", "order_id", order.ID, "user_id", userID)
	return true
}

// GetOrderBook returns a read-only snapshot of the current book (spec §4.5.5).
func (e *Engine) GetOrderBook() orderbook.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Snapshot()
}

// GetRecentTrades returns up to limit of the most recent settled trades,
// oldest first; a limit of zero or less returns every retained trade.
func (e *Engine) GetRecentTrades(limit int) []*spottypes.TradeSettlement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Recent(limit)
}

// GetCurrentPrice returns the pair's last trade price (or initial_price if
// no trade has settled yet).
func (e *Engine) GetCurrentPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.CurrentPrice
}
