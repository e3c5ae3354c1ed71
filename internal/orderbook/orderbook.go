// Package orderbook implements the per-pair price-time priority book (spec
// §4.4, C5): two sorted limit sides plus two market-order staging queues.
package orderbook

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spotexchange/pkg/spottypes"
)

// PriceLevel is one aggregated rung of the book snapshot (spec §4.5.5).
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Snapshot is the read-only view returned by OrderBook.Snapshot.
type Snapshot struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

// OrderBook holds one trading pair's resting orders. Bids are kept sorted
// descending by price then ascending by timestamp; asks ascending by price
// then ascending by timestamp (spec §4.4's canonical ordering rule).
// Market orders never rest — they queue FIFO for the next match pass.
type OrderBook struct {
	bids        []*spottypes.Order
	asks        []*spottypes.Order
	marketBuys  []*spottypes.Order
	marketSells []*spottypes.Order

	CurrentPrice decimal.Decimal
	LastUpdate   time.Time
}

// New constructs an empty book seeded with the pair's initial price.
func New(initialPrice decimal.Decimal, now time.Time) *OrderBook {
	return &OrderBook{
		CurrentPrice: initialPrice,
		LastUpdate:   now,
	}
}

// bidLess reports whether a sorts before b on the bid side: higher price
// first, ties broken by earlier timestamp.
func bidLess(a, b *spottypes.Order) bool {
	if !a.Price.Equal(*b.Price) {
		return a.Price.GreaterThan(*b.Price)
	}
	return a.Timestamp.Before(b.Timestamp)
}

// askLess reports whether a sorts before b on the ask side: lower price
// first, ties broken by earlier timestamp.
func askLess(a, b *spottypes.Order) bool {
	if !a.Price.Equal(*b.Price) {
		return a.Price.LessThan(*b.Price)
	}
	return a.Timestamp.Before(b.Timestamp)
}

// Insert places order on the correct side or market queue (spec §4.5.1
// step 5).
func (ob *OrderBook) Insert(order *spottypes.Order) {
	switch order.Kind {
	case spottypes.LimitBuy:
		ob.bids = insertSorted(ob.bids, order, bidLess)
	case spottypes.LimitSell:
		ob.asks = insertSorted(ob.asks, order, askLess)
	case spottypes.MarketBuy:
		ob.marketBuys = append(ob.marketBuys, order)
	case spottypes.MarketSell:
		ob.marketSells = append(ob.marketSells, order)
	}
}

func insertSorted(side []*spottypes.Order, order *spottypes.Order, less func(a, b *spottypes.Order) bool) []*spottypes.Order {
	idx := sort.Search(len(side), func(i int) bool { return less(order, side[i]) })
	side = append(side, nil)
	copy(side[idx+1:], side[idx:])
	side[idx] = order
	return side
}

// Remove drops order from whichever resting side it occupies. A no-op if
// the order is not present (already removed, or was a market order that
// drained from its queue).
func (ob *OrderBook) Remove(order *spottypes.Order) {
	ob.bids = removeByID(ob.bids, order.ID)
	ob.asks = removeByID(ob.asks, order.ID)
	ob.marketBuys = removeByID(ob.marketBuys, order.ID)
	ob.marketSells = removeByID(ob.marketSells, order.ID)
}

func removeByID(side []*spottypes.Order, id string) []*spottypes.Order {
	for i, o := range side {
		if o.ID == id {
			return append(side[:i], side[i+1:]...)
		}
	}
	return side
}

// BestBid returns the highest-priced resting buy, or nil if the bid side
// is empty.
func (ob *OrderBook) BestBid() *spottypes.Order {
	if len(ob.bids) == 0 {
		return nil
	}
	return ob.bids[0]
}

// BestAsk returns the lowest-priced resting sell, or nil if the ask side
// is empty.
func (ob *OrderBook) BestAsk() *spottypes.Order {
	if len(ob.asks) == 0 {
		return nil
	}
	return ob.asks[0]
}

// NextMarketBuy returns the oldest queued market buy, or nil.
func (ob *OrderBook) NextMarketBuy() *spottypes.Order {
	if len(ob.marketBuys) == 0 {
		return nil
	}
	return ob.marketBuys[0]
}

// NextMarketSell returns the oldest queued market sell, or nil.
func (ob *OrderBook) NextMarketSell() *spottypes.Order {
	if len(ob.marketSells) == 0 {
		return nil
	}
	return ob.marketSells[0]
}

// Snapshot aggregates each resting side per price level (spec §4.5.5).
func (ob *OrderBook) Snapshot() Snapshot {
	return Snapshot{
		Bids: aggregate(ob.bids),
		Asks: aggregate(ob.asks),
	}
}

func aggregate(side []*spottypes.Order) []PriceLevel {
	var levels []PriceLevel
	for _, o := range side {
		qty := o.RemainingBaseQuantity(*o.Price)
		if len(levels) > 0 && levels[len(levels)-1].Price.Equal(*o.Price) {
			levels[len(levels)-1].Quantity = levels[len(levels)-1].Quantity.Add(qty)
			continue
		}
		levels = append(levels, PriceLevel{Price: *o.Price, Quantity: qty})
	}
	return levels
}
