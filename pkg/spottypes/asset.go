// Package spottypes is the common vocabulary for the exchange — assets,
// trading pairs, orders, trades, and the typed errors every layer returns.
// It has no dependency on internal packages, so it can be imported by any
// layer (ledger, orderbook, matching, exchange) without import cycles.
package spottypes

import "github.com/shopspring/decimal"

// Asset is a tagged variant over the closed set of assets the exchange
// supports. New assets are added here, not inferred from strings.
type Asset string

const (
	USDT Asset = "USDT"
	BTC  Asset = "BTC"
	ETH  Asset = "ETH"
)

// initialValues is the USDT-equivalent benchmark used only to seed each
// trading pair's initial price (spec §3 Asset).
var initialValues = map[Asset]decimal.Decimal{
	USDT: decimal.NewFromInt(1),
	BTC:  decimal.NewFromInt(50000),
	ETH:  decimal.NewFromInt(3000),
}

// InitialValue returns the asset's USDT-equivalent benchmark value.
func (a Asset) InitialValue() decimal.Decimal {
	return initialValues[a]
}

// Valid reports whether a is one of the supported assets.
func (a Asset) Valid() bool {
	_, ok := initialValues[a]
	return ok
}

// AllAssets returns the closed set of supported assets.
func AllAssets() []Asset {
	return []Asset{USDT, BTC, ETH}
}

// PairsContaining returns every trading pair in which a participates,
// base or quote side. Used to derive locked balances: a user's locked
// amount of an asset can only come from orders on pairs containing it.
func (a Asset) PairsContaining() []TradingPair {
	var out []TradingPair
	for _, p := range AllTradingPairs() {
		if p.BaseAsset() == a || p.QuoteAsset() == a {
			out = append(out, p)
		}
	}
	return out
}
