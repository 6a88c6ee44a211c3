package launchpad

import (
	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/exchange"
	"github.com/krazyTry/launchpad-go/store"
)

// NewExchange creates a curve exchange over a store.
//
// Example:
//
// ex, _ := NewExchange(DefaultConfig(), NewMemoryStore(), exchange.WithOperator(operator))
//
// ex.CreateCurve(ctx, auth.Assume(creator), mint, bc.TokenMetadata{Name: "Rekt", Symbol: "REKT"})
//
// ex.Buy(ctx, auth.Assume(trader), mint, exchange.TradeRequest{Amount: 1_000_000_000})
var NewExchange = exchange.New

// DefaultConfig returns the genesis parameters of existing deployments.
var DefaultConfig = bc.DefaultConfig

// NewMemoryStore creates a store that lives in process memory.
var NewMemoryStore = store.NewMemory

// OpenPebbleStore opens a persistent store at path.
//
// Example:
//
// s, _ := OpenPebbleStore("/var/lib/launchpad", store.PebbleOptions{Sync: true})
var OpenPebbleStore = store.OpenPebble
