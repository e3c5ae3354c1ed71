package spottypes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSettlement is an immutable record of one match between a buy and a
// sell order (spec §3). Settlements reference orders by ID rather than
// owning them, breaking the Order<->TradeSettlement reference cycle the
// original carried (spec §9).
type TradeSettlement struct {
	ID          string
	BuyOrderID  string
	SellOrderID string
	TradingPair TradingPair
	BaseAmount  decimal.Decimal
	Price       decimal.Decimal
	Timestamp   time.Time
}

// NewTradeSettlement builds a trade record. now is caller-injected for
// deterministic tests, matching NewOrder's convention.
func NewTradeSettlement(pair TradingPair, buyOrderID, sellOrderID string, baseAmount, price decimal.Decimal, now time.Time) *TradeSettlement {
	return &TradeSettlement{
		ID:          uuid.NewString(),
		BuyOrderID:  buyOrderID,
		SellOrderID: sellOrderID,
		TradingPair: pair,
		BaseAmount:  baseAmount,
		Price:       price,
		Timestamp:   now,
	}
}
