// Package exchange is the public facade (spec §4.6, C8): user registry
// plus dispatch to one matching engine per trading pair. Callers (the demo
// driver, tests) start here; orders are placed on the *matching.Engine
// returned by GetTradingPair, using matching.PlaceOrderParams and
// spottypes values.
package exchange

import (
	"log/slog"
	"sync"
	"time"

	"spotexchange/internal/ledger"
	"spotexchange/internal/matching"
	"spotexchange/pkg/spottypes"
)

// Exchange owns the user registry and one Engine per supported trading
// pair. A single mutex serializes every external call (spec §5: "An
// implementation may protect an Exchange with a single mutex to serialize
// external calls").
type Exchange struct {
	mu       sync.Mutex
	users    map[string]*ledger.User
	byName   map[string]string // username -> user id, for DuplicateUsername checks
	engines  map[spottypes.TradingPair]*matching.Engine
	clock    matching.Clock
	log      *slog.Logger
}

// Option customizes exchange construction.
type Option func(*Exchange)

// WithLogger injects a structured logger; defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Exchange) { e.log = log }
}

// WithClock overrides time.Now, for deterministic tests.
func WithClock(clock matching.Clock) Option {
	return func(e *Exchange) { e.clock = clock }
}

// New constructs an Exchange with one engine per spottypes.AllTradingPairs.
func New(opts ...Option) *Exchange {
	e := &Exchange{
		users:  make(map[string]*ledger.User),
		byName: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	e.log = e.log.With("component", "exchange.Exchange")

	e.engines = make(map[spottypes.TradingPair]*matching.Engine)
	for _, pair := range spottypes.AllTradingPairs() {
		e.engines[pair] = matching.New(pair, e.users, e.clock, e.log)
	}
	return e
}

// CreateUser registers a new user, failing with DuplicateUsernameError if
// username is already taken (spec §4.6, §6).
func (e *Exchange) CreateUser(username, email string) (*ledger.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.byName[username]; exists {
		return nil, &spottypes.DuplicateUsernameError{Username: username}
	}

	user := ledger.NewUser(username, email, e.clock())
	e.users[user.ID] = user
	e.byName[username] = user.ID
	e.log.Info("user created", "user_id", user.ID, "username", username)
	return user, nil
}

// GetUser looks up a user by id; ok is false if no such user exists.
func (e *Exchange) GetUser(userID string) (user *ledger.User, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	user, ok = e.users[userID]
	return user, ok
}

// GetTradingPair returns the engine for pair; ok is false for an
// unsupported pair.
func (e *Exchange) GetTradingPair(pair spottypes.TradingPair) (engine *matching.Engine, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	engine, ok = e.engines[pair]
	return engine, ok
}
