package main

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"spotexchange/internal/config"
	"spotexchange/internal/matching"
	"spotexchange/pkg/spottypes"

	"spotexchange/exchange"
)

var demoUsernames = []string{"Alice", "Bob", "Charlie", "David", "Eva", "Frank", "Grace", "Henry", "Ivy", "Jack"}

func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Create users, fund them, and fire a sequence of random orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := loadConfig(*cfgPath)
			return runSimulation(cfg, log)
		},
	}
}

func runSimulation(cfg *config.Config, log *slog.Logger) error {
	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))

	ex := exchange.New(exchange.WithLogger(log))

	users, err := createDemoUsers(ex, cfg)
	if err != nil {
		return err
	}

	pairs := spottypes.AllTradingPairs()
	log.Info("simulation starting", "users", len(users), "orders", cfg.Simulation.Orders, "pairs", len(pairs))

	placed, rejected := 0, 0
	for i := 0; i < cfg.Simulation.Orders; i++ {
		user := users[rng.Intn(len(users))]
		pair := pairs[rng.Intn(len(pairs))]

		if err := placeRandomOrder(ex, rng, user.ID, pair, cfg.Simulation.MarketOrderPct); err != nil {
			rejected++
			log.Debug("order rejected", "user_id", user.ID, "pair", string(pair), "error", err)
			continue
		}
		placed++
	}

	log.Info("simulation complete", "placed", placed, "rejected", rejected)
	printSummary(ex, users)
	return nil
}

func createDemoUsers(ex *exchange.Exchange, cfg *config.Config) ([]*userRef, error) {
	count := cfg.Simulation.Users
	if count > len(demoUsernames) {
		count = len(demoUsernames)
	}

	initial := map[spottypes.Asset]float64{
		spottypes.USDT: cfg.Simulation.InitialUSDT,
		spottypes.BTC:  cfg.Simulation.InitialBTC,
		spottypes.ETH:  cfg.Simulation.InitialETH,
	}

	var users []*userRef
	for i := 0; i < count; i++ {
		u, err := ex.CreateUser(demoUsernames[i], fmt.Sprintf("user%d@example.com", i))
		if err != nil {
			return nil, fmt.Errorf("create user %s: %w", demoUsernames[i], err)
		}
		for asset, amount := range initial {
			if amount <= 0 {
				continue
			}
			if err := u.Deposit(asset, decimal.NewFromFloat(amount)); err != nil {
				return nil, fmt.Errorf("fund user %s: %w", demoUsernames[i], err)
			}
		}
		users = append(users, &userRef{ID: u.ID, Username: u.Username})
	}
	return users, nil
}

// userRef is a lightweight handle kept by the demo driver; it only needs
// the id for engine calls and the username for the printed summary.
type userRef struct {
	ID       string
	Username string
}

func placeRandomOrder(ex *exchange.Exchange, rng *rand.Rand, userID string, pair spottypes.TradingPair, marketOrderPct float64) error {
	engine, ok := ex.GetTradingPair(pair)
	if !ok {
		return fmt.Errorf("unknown pair %s", pair)
	}

	isBuy := rng.Intn(2) == 0
	isMarket := rng.Float64() < marketOrderPct
	quantity := decimal.NewFromFloat(0.01 + rng.Float64()*0.2)

	params := matching.PlaceOrderParams{UserID: userID}
	switch {
	case isMarket && isBuy:
		params.Kind = spottypes.MarketBuy
		budget := quantity.Mul(engine.GetCurrentPrice())
		params.QuoteAmount = &budget
	case isMarket && !isBuy:
		params.Kind = spottypes.MarketSell
		params.BaseAmount = &quantity
	case !isMarket && isBuy:
		params.Kind = spottypes.LimitBuy
		params.BaseAmount = &quantity
		price := engine.GetCurrentPrice().Mul(decimal.NewFromFloat(0.97 + rng.Float64()*0.03))
		params.Price = &price
	default:
		params.Kind = spottypes.LimitSell
		params.BaseAmount = &quantity
		price := engine.GetCurrentPrice().Mul(decimal.NewFromFloat(1.0 + rng.Float64()*0.03))
		params.Price = &price
	}

	_, err := engine.PlaceOrder(params)
	return err
}

func printSummary(ex *exchange.Exchange, users []*userRef) {
	fmt.Println()
	fmt.Println("=== Final balances ===")
	for _, u := range users {
		snapshot, ok := ex.Portfolio(u.ID)
		if !ok {
			continue
		}
		fmt.Printf("%s:\n", u.Username)
		for _, asset := range spottypes.AllAssets() {
			bal := snapshot[asset]
			fmt.Printf("  %-4s total=%-14s locked=%-14s available=%s\n",
				asset, humanize.CommafWithDigits(toFloat(bal.Total), 6),
				humanize.CommafWithDigits(toFloat(bal.Locked), 6),
				humanize.CommafWithDigits(toFloat(bal.Available), 6))
		}
	}

	fmt.Println()
	fmt.Println("=== Current prices ===")
	for _, pair := range spottypes.AllTradingPairs() {
		engine, ok := ex.GetTradingPair(pair)
		if !ok {
			continue
		}
		fmt.Printf("  %-9s %s\n", pair, humanize.CommafWithDigits(toFloat(engine.GetCurrentPrice()), 2))
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
