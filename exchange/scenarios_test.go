package exchange_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"spotexchange/exchange"
	"spotexchange/internal/matching"
	"spotexchange/pkg/spottypes"
)

// testClock returns a Clock that advances by a millisecond on every call,
// so orders placed in sequence within a test get strictly increasing
// timestamps — required for the price-time priority and maker/taker
// tie-break scenarios below to be deterministic.
func testClock() matching.Clock {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func newTestExchange(t *testing.T) *exchange.Exchange {
	t.Helper()
	return exchange.New(exchange.WithClock(testClock()))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fund(t *testing.T, ex *exchange.Exchange, username string, balances map[spottypes.Asset]string) string {
	t.Helper()
	u, err := ex.CreateUser(username, username+"@example.com")
	require.NoError(t, err)
	for asset, amount := range balances {
		require.NoError(t, u.Deposit(asset, dec(amount)))
	}
	return u.ID
}

func place(t *testing.T, ex *exchange.Exchange, pair spottypes.TradingPair, p matching.PlaceOrderParams) *spottypes.Order {
	t.Helper()
	engine, ok := ex.GetTradingPair(pair)
	require.True(t, ok)
	order, err := engine.PlaceOrder(p)
	require.NoError(t, err)
	return order
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// S1 — exact limit cross.
func TestScenarioExactLimitCross(t *testing.T) {
	ex := newTestExchange(t)
	alice := fund(t, ex, "Alice", map[spottypes.Asset]string{spottypes.USDT: "100000"})
	bob := fund(t, ex, "Bob", map[spottypes.Asset]string{spottypes.BTC: "10"})

	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: alice, Kind: spottypes.LimitBuy, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("50000")),
	})
	sell := place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: bob, Kind: spottypes.LimitSell, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("50000")),
	})

	require.Equal(t, spottypes.Filled, sell.Status)

	engine, _ := ex.GetTradingPair(spottypes.BTCUSDT)
	trades := engine.GetRecentTrades(10)
	require.Len(t, trades, 1)
	require.True(t, trades[0].BaseAmount.Equal(dec("1.0")))
	require.True(t, trades[0].Price.Equal(dec("50000")))

	aliceUser, _ := ex.GetUser(alice)
	bobUser, _ := ex.GetUser(bob)
	require.True(t, aliceUser.GetTotalBalance(spottypes.BTC).Equal(dec("1")))
	require.True(t, aliceUser.GetTotalBalance(spottypes.USDT).Equal(dec("50000")))
	require.True(t, bobUser.GetTotalBalance(spottypes.BTC).Equal(dec("9")))
	require.True(t, bobUser.GetTotalBalance(spottypes.USDT).Equal(dec("50000")))
	require.True(t, engine.GetCurrentPrice().Equal(dec("50000")))
}

// S2 — better price to taker: trade executes at the maker's (resting) price.
func TestScenarioMakerPriceWins(t *testing.T) {
	ex := newTestExchange(t)
	alice := fund(t, ex, "Alice", map[spottypes.Asset]string{spottypes.USDT: "100000"})
	bob := fund(t, ex, "Bob", map[spottypes.Asset]string{spottypes.BTC: "10"})

	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: alice, Kind: spottypes.LimitBuy, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("51000")),
	})
	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: bob, Kind: spottypes.LimitSell, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("50000")),
	})

	aliceUser, _ := ex.GetUser(alice)
	bobUser, _ := ex.GetUser(bob)
	require.True(t, aliceUser.GetTotalBalance(spottypes.BTC).Equal(dec("1")))
	require.True(t, aliceUser.GetTotalBalance(spottypes.USDT).Equal(dec("49000")))
	require.True(t, bobUser.GetTotalBalance(spottypes.BTC).Equal(dec("9")))
	require.True(t, bobUser.GetTotalBalance(spottypes.USDT).Equal(dec("51000")))

	engine, _ := ex.GetTradingPair(spottypes.BTCUSDT)
	require.True(t, engine.GetCurrentPrice().Equal(dec("51000")))
}

// S3 — partial fill: remaining order keeps resting, locked balance reflects
// only what the outstanding remainder would still consume.
func TestScenarioPartialFill(t *testing.T) {
	ex := newTestExchange(t)
	alice := fund(t, ex, "Alice", map[spottypes.Asset]string{spottypes.USDT: "100000"})
	bob := fund(t, ex, "Bob", map[spottypes.Asset]string{spottypes.BTC: "10"})

	buy := place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: alice, Kind: spottypes.LimitBuy, BaseAmount: ptr(dec("2.0")), Price: ptr(dec("50000")),
	})
	sell := place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: bob, Kind: spottypes.LimitSell, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("50000")),
	})

	require.Equal(t, spottypes.PartiallyFilled, buy.Status)
	require.True(t, buy.RemainingBaseAmount().Equal(dec("1.0")))
	require.Equal(t, spottypes.Filled, sell.Status)

	aliceUser, _ := ex.GetUser(alice)
	bobUser, _ := ex.GetUser(bob)
	require.True(t, aliceUser.GetTotalBalance(spottypes.BTC).Equal(dec("1")))
	require.True(t, bobUser.GetTotalBalance(spottypes.BTC).Equal(dec("9")))
	require.True(t, bobUser.GetTotalBalance(spottypes.USDT).Equal(dec("50000")))

	// total_USDT after paying for the first leg is 50000; the remaining
	// order still needs 1.0*50000 = 50000 to complete, so it locks the
	// entire remainder (available = 0). See DESIGN.md for why this
	// departs from the literal S3 numbers in the distilled scenario text.
	priceFn := func(spottypes.TradingPair) decimal.Decimal { return dec("50000") }
	snap := aliceUser.Snapshot(spottypes.USDT, priceFn)
	require.True(t, snap.Total.Equal(dec("50000")))
	require.True(t, snap.Locked.Equal(dec("50000")))
	require.True(t, snap.Available.Equal(dec("0")))
}

// S4 — self-cross rejected.
func TestScenarioSelfCrossRejected(t *testing.T) {
	ex := newTestExchange(t)
	charlie := fund(t, ex, "Charlie", map[spottypes.Asset]string{spottypes.BTC: "5", spottypes.USDT: "100000"})

	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: charlie, Kind: spottypes.LimitBuy, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("49000")),
	})

	engine, _ := ex.GetTradingPair(spottypes.BTCUSDT)
	_, err := engine.PlaceOrder(matching.PlaceOrderParams{
		UserID: charlie, Kind: spottypes.LimitSell, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("48000")),
	})
	require.Error(t, err)
	require.IsType(t, &spottypes.PriceCrossingError{}, err)

	snapshot := engine.GetOrderBook()
	require.Len(t, snapshot.Bids, 1)
	require.Empty(t, snapshot.Asks)
}

// S5 — simultaneous own-side allowed when it does not configure a cross.
func TestScenarioOwnSideBothAllowed(t *testing.T) {
	ex := newTestExchange(t)
	charlie := fund(t, ex, "Charlie", map[spottypes.Asset]string{spottypes.BTC: "5", spottypes.USDT: "100000"})

	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: charlie, Kind: spottypes.LimitBuy, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("49000")),
	})
	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: charlie, Kind: spottypes.LimitSell, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("51000")),
	})

	charlieUser, _ := ex.GetUser(charlie)
	require.Len(t, charlieUser.GetActiveOrders(spottypes.BTCUSDT, spottypes.Buy), 1)
	require.Len(t, charlieUser.GetActiveOrders(spottypes.BTCUSDT, spottypes.Sell), 1)

	priceFn := func(spottypes.TradingPair) decimal.Decimal { return dec("50000") }
	require.True(t, charlieUser.GetLockedBalance(spottypes.USDT, priceFn).Equal(dec("49000")))
	require.True(t, charlieUser.GetLockedBalance(spottypes.BTC, priceFn).Equal(dec("1")))
}

// S6 — market buy consumes two resting asks at their respective prices.
func TestScenarioMarketBuyConsumesTwoAsks(t *testing.T) {
	ex := newTestExchange(t)
	alice := fund(t, ex, "Alice", map[spottypes.Asset]string{spottypes.USDT: "200000"})
	bob := fund(t, ex, "Bob", map[spottypes.Asset]string{spottypes.BTC: "10"})

	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: bob, Kind: spottypes.LimitSell, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("50000")),
	})
	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: bob, Kind: spottypes.LimitSell, BaseAmount: ptr(dec("1.0")), Price: ptr(dec("51000")),
	})
	place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: alice, Kind: spottypes.MarketBuy, QuoteAmount: ptr(dec("75000")),
	})

	engine, _ := ex.GetTradingPair(spottypes.BTCUSDT)
	trades := engine.GetRecentTrades(10)
	require.Len(t, trades, 2)
	require.True(t, trades[0].BaseAmount.Equal(dec("1.0")))
	require.True(t, trades[0].Price.Equal(dec("50000")))
	require.True(t, trades[1].Price.Equal(dec("51000")))

	expectedSecondQty := dec("25000").Div(dec("51000"))
	require.True(t, trades[1].BaseAmount.Equal(expectedSecondQty))

	// Alice's quote debit is quantity*price per trade, the same division
	// residue as expectedSecondQty carries, not the nominal 75000 budget.
	aliceUser, _ := ex.GetUser(alice)
	expectedUSDT := dec("200000").Sub(dec("1.0").Mul(dec("50000"))).Sub(expectedSecondQty.Mul(dec("51000")))
	require.True(t, aliceUser.GetTotalBalance(spottypes.USDT).Equal(expectedUSDT))

	expectedBTC := dec("1.0").Add(expectedSecondQty)
	require.True(t, aliceUser.GetTotalBalance(spottypes.BTC).Equal(expectedBTC))
	require.True(t, engine.GetCurrentPrice().Equal(dec("51000")))
}

// S7 — cancellation releases the derived lock without touching total balance.
func TestScenarioCancellationReleasesLock(t *testing.T) {
	ex := newTestExchange(t)
	alice := fund(t, ex, "Alice", map[spottypes.Asset]string{spottypes.USDT: "1000"})

	order := place(t, ex, spottypes.BTCUSDT, matching.PlaceOrderParams{
		UserID: alice, Kind: spottypes.LimitBuy, BaseAmount: ptr(dec("0.01")), Price: ptr(dec("100000")),
	})

	aliceUser, _ := ex.GetUser(alice)
	priceFn := func(spottypes.TradingPair) decimal.Decimal { return dec("100000") }
	require.True(t, aliceUser.GetAvailableBalance(spottypes.USDT, priceFn).IsZero())

	engine, _ := ex.GetTradingPair(spottypes.BTCUSDT)
	require.True(t, engine.CancelOrder(order.ID, alice))

	require.True(t, aliceUser.GetAvailableBalance(spottypes.USDT, priceFn).Equal(dec("1000")))
	require.True(t, aliceUser.GetTotalBalance(spottypes.USDT).Equal(dec("1000")))
	require.Equal(t, spottypes.Cancelled, order.Status)

	snapshot := engine.GetOrderBook()
	require.Empty(t, snapshot.Bids)
	require.Empty(t, snapshot.Asks)
}
