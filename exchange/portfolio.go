package exchange

import (
	"github.com/shopspring/decimal"

	"spotexchange/internal/ledger"
	"spotexchange/pkg/spottypes"
)

// Portfolio is the additive balance-snapshot convenience from SPEC_FULL §5:
// total/locked/available across every supported asset in one call, instead
// of one GetTotalBalance/GetLockedBalance/GetAvailableBalance round-trip
// per asset.
func (e *Exchange) Portfolio(userID string) (map[spottypes.Asset]ledger.BalanceSnapshot, bool) {
	user, ok := e.GetUser(userID)
	if !ok {
		return nil, false
	}

	priceFn := e.currentPriceFn()
	out := make(map[spottypes.Asset]ledger.BalanceSnapshot, len(spottypes.AllAssets()))
	for _, asset := range spottypes.AllAssets() {
		out[asset] = user.Snapshot(asset, priceFn)
	}
	return out, true
}

// currentPriceFn resolves a pair's current price without exposing the
// engine map outside the package.
func (e *Exchange) currentPriceFn() func(spottypes.TradingPair) decimal.Decimal {
	return func(pair spottypes.TradingPair) decimal.Decimal {
		e.mu.Lock()
		engine, ok := e.engines[pair]
		e.mu.Unlock()
		if !ok {
			return decimal.Zero
		}
		return engine.GetCurrentPrice()
	}
}
