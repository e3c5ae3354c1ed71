package spottypes

import "github.com/shopspring/decimal"

// LockedContribution returns the (asset, amount) a single live order would
// contribute to its owner's locked balance if fully filled, per spec §4.2's
// table. An order contributes to exactly one asset: the quote asset for
// buys, the base asset for sells.
//
// currentPrice is the pair's current_price and is consulted only for the
// two combinations the design's OQ2 and §4.5.1 step 2 describe as
// estimated-from-current-price: a MarketBuy that specifies base_amount
// (target quantity, budget unknown) and a MarketSell that specifies
// quote_amount (target proceeds, quantity unknown). Per OQ2 this spec
// adjusts the derived amount as fills happen rather than freezing the
// estimate: the contribution is computed from the order's filled-adjusted
// remaining amounts (RemainingBaseAmount/RemainingQuoteAmount), not its
// original target, so it always reflects what is still outstanding.
func (o *Order) LockedContribution(currentPrice decimal.Decimal) (asset Asset, amount decimal.Decimal) {
	base := o.TradingPair.BaseAsset()
	quote := o.TradingPair.QuoteAsset()

	switch o.Kind {
	case LimitBuy:
		if o.BaseAmount != nil {
			return quote, o.RemainingBaseAmount().Mul(*o.Price)
		}
		return quote, o.RemainingQuoteAmount()

	case LimitSell:
		if o.BaseAmount != nil {
			return base, o.RemainingBaseAmount()
		}
		return base, o.RemainingQuoteAmount().Div(*o.Price)

	case MarketBuy:
		if o.QuoteAmount != nil {
			return quote, o.RemainingQuoteAmount()
		}
		return quote, o.RemainingBaseAmount().Mul(currentPrice)

	case MarketSell:
		if o.BaseAmount != nil {
			return base, o.RemainingBaseAmount()
		}
		if currentPrice.IsZero() {
			return base, decimal.Zero
		}
		return base, o.RemainingQuoteAmount().Div(currentPrice)
	}
	return "", decimal.Zero
}
