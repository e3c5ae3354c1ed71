package spottypes

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TradingPair is a tagged variant over the closed set of markets the
// exchange runs. Each pair has exactly one matching engine instance.
type TradingPair string

const (
	BTCUSDT TradingPair = "BTC/USDT"
	ETHUSDT TradingPair = "ETH/USDT"
	ETHBTC  TradingPair = "ETH/BTC"
)

// AllTradingPairs returns the closed set of supported trading pairs.
func AllTradingPairs() []TradingPair {
	return []TradingPair{BTCUSDT, ETHUSDT, ETHBTC}
}

// Valid reports whether p is one of the supported trading pairs.
func (p TradingPair) Valid() bool {
	for _, known := range AllTradingPairs() {
		if known == p {
			return true
		}
	}
	return false
}

// split returns the base and quote asset symbols encoded in the pair name.
func (p TradingPair) split() (string, string) {
	parts := strings.SplitN(string(p), "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// BaseAsset returns the asset being bought/sold, e.g. BTC in BTC/USDT.
func (p TradingPair) BaseAsset() Asset {
	base, _ := p.split()
	return Asset(base)
}

// QuoteAsset returns the asset price is denominated in, e.g. USDT in BTC/USDT.
func (p TradingPair) QuoteAsset() Asset {
	_, quote := p.split()
	return Asset(quote)
}

// InitialPrice is the ratio of the two assets' benchmark values, used to
// seed current_price on a fresh matching engine.
func (p TradingPair) InitialPrice() decimal.Decimal {
	quoteValue := p.QuoteAsset().InitialValue()
	if quoteValue.IsZero() {
		return decimal.Zero
	}
	return p.BaseAsset().InitialValue().Div(quoteValue)
}

// String renders the canonical "BASE/QUOTE" symbol.
func (p TradingPair) String() string {
	return string(p)
}

// NewTradingPair builds a pair from explicit base/quote assets and
// validates it's one of the supported symbols.
func NewTradingPair(base, quote Asset) (TradingPair, error) {
	p := TradingPair(fmt.Sprintf("%s/%s", base, quote))
	if !p.Valid() {
		return "", fmt.Errorf("unsupported trading pair %s/%s", base, quote)
	}
	return p, nil
}
