package orderbook

import "spotexchange/pkg/spottypes"

// tradeHistoryCap is the ring buffer bound from spec §3: "trades append to
// a per-pair ring buffer of bounded length (≤1000)".
const tradeHistoryCap = 1000

// TradeHistory is a fixed-capacity FIFO of settled trades, oldest dropped
// first on overflow.
type TradeHistory struct {
	trades []*spottypes.TradeSettlement
}

// Append records a trade, evicting the oldest entry once the buffer is at
// capacity.
func (h *TradeHistory) Append(t *spottypes.TradeSettlement) {
	h.trades = append(h.trades, t)
	if len(h.trades) > tradeHistoryCap {
		h.trades = h.trades[len(h.trades)-tradeHistoryCap:]
	}
}

// Recent returns up to limit of the most recently appended trades, newest
// last. A limit of zero or less returns every retained trade.
func (h *TradeHistory) Recent(limit int) []*spottypes.TradeSettlement {
	if limit <= 0 || limit > len(h.trades) {
		limit = len(h.trades)
	}
	start := len(h.trades) - limit
	out := make([]*spottypes.TradeSettlement, limit)
	copy(out, h.trades[start:])
	return out
}
