package matching

import (
	"github.com/shopspring/decimal"

	"spotexchange/pkg/spottypes"
)

// runMatchLoop drives the book to quiescence (spec §4.5.2): Phase A drains
// queued market orders against the opposing limit side, Phase B crosses
// limit bids and asks while best_bid >= best_ask. Each phase is retried
// as long as any phase makes progress, since draining a market order can
// change the book, in principle, could let a previously-non-crossing
// limit configuration cross.
func (e *Engine) runMatchLoop() {
	for {
		progressed := false
		if e.matchMarketBuy() {
			progressed = true
		}
		if e.matchMarketSell() {
			progressed = true
		}
		if e.matchLimits() {
			progressed = true
		}
		if !progressed {
			return
		}
	}
}

// matchMarketBuy consumes one trade between the oldest queued market buy
// and the best resting ask, if both exist. Returns whether a trade
// occurred.
//
// A quote-budgeted market order's remaining target is derived by dividing
// by the counterparty's price (RemainingBaseQuantity), and repeated
// division leaves a sub-epsilon residue rather than an exact zero (the
// original's single bounded pass over the sell book,
// original_source/tmo/trading_pair.py:285-312, simply stops once
// remaining_amount <= 0 or the order reports filled, and never revisits
// that residue). When the computed quantity is sub-epsilon only because
// one side has already effectively exhausted its target, that side is
// finalized here instead of re-matching; the sub-epsilon panic stays
// reserved for a cross that produces a negligible trade for no such
// reason, which is the genuine upstream bug case spec §4.5.2 E1 describes.
func (e *Engine) matchMarketBuy() bool {
	buy := e.book.NextMarketBuy()
	ask := e.book.BestAsk()
	if buy == nil || ask == nil {
		return false
	}

	price := *ask.Price
	wantBase := buy.RemainingBaseQuantity(price)
	quantity := spottypes.MinDecimal(wantBase, ask.RemainingBaseQuantity(price))
	if !spottypes.AboveEpsilon(quantity) {
		doneBuy := e.finalizeNegligibleRemainder(buy)
		doneAsk := e.finalizeNegligibleRemainder(ask)
		if !doneBuy && !doneAsk {
			spottypes.PanicInvariant("market buy match produced a sub-epsilon trade")
		}
		return doneBuy || doneAsk
	}

	e.settle(buy, ask, quantity, price)
	e.finalizeNegligibleRemainder(buy)
	return true
}

// matchMarketSell is matchMarketBuy's mirror against the best resting bid.
func (e *Engine) matchMarketSell() bool {
	sell := e.book.NextMarketSell()
	bid := e.book.BestBid()
	if sell == nil || bid == nil {
		return false
	}

	price := *bid.Price
	wantBase := sell.RemainingBaseQuantity(price)
	quantity := spottypes.MinDecimal(wantBase, bid.RemainingBaseQuantity(price))
	if !spottypes.AboveEpsilon(quantity) {
		doneSell := e.finalizeNegligibleRemainder(sell)
		doneBid := e.finalizeNegligibleRemainder(bid)
		if !doneSell && !doneBid {
			spottypes.PanicInvariant("market sell match produced a sub-epsilon trade")
		}
		return doneSell || doneBid
	}

	e.settle(bid, sell, quantity, price)
	e.finalizeNegligibleRemainder(sell)
	return true
}

// finalizeNegligibleRemainder reports whether o's own remaining target
// (whichever of base_amount/quote_amount it was built against) has decayed
// to at or below Epsilon without having hit IsFilled's exact threshold,
// and if so drains it off the book as Filled instead of leaving it to be
// re-matched against a sub-epsilon quantity. A no-op, returning false, for
// an order with genuine remaining size above Epsilon.
func (e *Engine) finalizeNegligibleRemainder(o *spottypes.Order) bool {
	if o.Status == spottypes.Filled {
		return true
	}
	remaining := o.RemainingQuoteAmount()
	if o.BaseAmount != nil {
		remaining = o.RemainingBaseAmount()
	}
	if spottypes.AboveEpsilon(remaining) {
		return false
	}

	o.Status = spottypes.Filled
	e.book.Remove(o)
	delete(e.orders, o.ID)
	if user, ok := e.users[o.UserID]; ok {
		user.MoveOrderToCompleted(o)
	}
	return true
}

// matchLimits crosses the best bid and ask while best_bid.price >=
// best_ask.price (spec §4.5.2 Phase B), using the maker's (earlier
// timestamp) price per the tie-break rule.
func (e *Engine) matchLimits() bool {
	bid := e.book.BestBid()
	ask := e.book.BestAsk()
	if bid == nil || ask == nil {
		return false
	}
	if bid.Price.LessThan(*ask.Price) {
		return false
	}

	// Maker is whichever order rested first; ties (identical timestamp)
	// favor the ask side deterministically (spec §9 OQ3 leaves this
	// unspecified beyond "strict < on timestamp").
	var price decimal.Decimal
	if bid.Timestamp.Before(ask.Timestamp) {
		price = *bid.Price
	} else {
		price = *ask.Price
	}

	quantity := spottypes.MinDecimal(bid.RemainingBaseQuantity(*bid.Price), ask.RemainingBaseQuantity(*ask.Price))
	if !spottypes.AboveEpsilon(quantity) {
		spottypes.PanicInvariant("limit cross produced a sub-epsilon trade")
	}

	e.settle(bid, ask, quantity, price)
	return true
}

// settle implements spec §4.5.3: fill both legs, record the trade,
// transfer balances atomically, and migrate any now-Filled order out of
// the book and into its owner's completed index.
func (e *Engine) settle(buy, sell *spottypes.Order, quantity, price decimal.Decimal) {
	buy.ApplyFill(quantity, price)
	sell.ApplyFill(quantity, price)

	now := e.clock()
	trade := spottypes.NewTradeSettlement(e.Pair, buy.ID, sell.ID, quantity, price, now)
	e.history.Append(trade)

	base := e.Pair.BaseAsset()
	quote := e.Pair.QuoteAsset()
	quoteAmount := quantity.Mul(price)

	buyer := e.users[buy.UserID]
	seller := e.users[sell.UserID]
	buyer.UpdateTotalAsset(base, quantity)
	buyer.UpdateTotalAsset(quote, quoteAmount.Neg())
	seller.UpdateTotalAsset(quote, quoteAmount)
	seller.UpdateTotalAsset(base, quantity.Neg())

	e.log.Info("trade settled", "buy_order_id", buy.ID, "sell_order_id", sell.ID,
		"quantity", quantity.String(), "price", price.String())

	if buy.IsFilled() {
		e.book.Remove(buy)
		delete(e.orders, buy.ID)
		buyer.MoveOrderToCompleted(buy)
	}
	if sell.IsFilled() {
		e.book.Remove(sell)
		delete(e.orders, sell.ID)
		seller.MoveOrderToCompleted(sell)
	}

	e.book.CurrentPrice = price
	e.book.LastUpdate = now
}
