package spottypes

import "testing"

func TestTradingPairDerivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pair      TradingPair
		wantBase  Asset
		wantQuote Asset
	}{
		{BTCUSDT, BTC, USDT},
		{ETHUSDT, ETH, USDT},
		{ETHBTC, ETH, BTC},
	}

	for _, tt := range tests {
		if got := tt.pair.BaseAsset(); got != tt.wantBase {
			t.Errorf("%s.BaseAsset() = %v, want %v", tt.pair, got, tt.wantBase)
		}
		if got := tt.pair.QuoteAsset(); got != tt.wantQuote {
			t.Errorf("%s.QuoteAsset() = %v, want %v", tt.pair, got, tt.wantQuote)
		}
	}
}

func TestInitialPrice(t *testing.T) {
	t.Parallel()

	// BTC initial_value 50000, USDT initial_value 1 -> 50000/1 = 50000.
	if got := BTCUSDT.InitialPrice(); !got.Equal(d("50000")) {
		t.Errorf("BTCUSDT.InitialPrice() = %s, want 50000", got)
	}
	// ETH initial_value 3000, BTC initial_value 50000 -> 3000/50000 = 0.06.
	if got := ETHBTC.InitialPrice(); !got.Equal(d("0.06")) {
		t.Errorf("ETHBTC.InitialPrice() = %s, want 0.06", got)
	}
}

func TestTradingPairValid(t *testing.T) {
	t.Parallel()
	if !BTCUSDT.Valid() {
		t.Error("BTCUSDT should be valid")
	}
	if TradingPair("DOGE/USDT").Valid() {
		t.Error("unsupported pair should be invalid")
	}
}

func TestPairsContaining(t *testing.T) {
	t.Parallel()
	pairs := USDT.PairsContaining()
	if len(pairs) != 2 {
		t.Fatalf("USDT.PairsContaining() = %v, want 2 pairs", pairs)
	}
	btcPairs := BTC.PairsContaining()
	found := false
	for _, p := range btcPairs {
		if p == ETHBTC {
			found = true
		}
	}
	if !found {
		t.Errorf("BTC.PairsContaining() = %v, want ETH/BTC included", btcPairs)
	}
}
