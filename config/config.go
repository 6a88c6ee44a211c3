// Package config holds the deployment configuration: curve genesis
// parameters, storage, logging and well-known accounts.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/store"
)

type Config struct {
	Curve    CurveConfig    `toml:"curve"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
	Accounts AccountsConfig `toml:"accounts"`
}

// CurveConfig amounts are raw units: lamports for quote, atoms for base.
type CurveConfig struct {
	VirtualQuoteReserves uint64 `toml:"virtual_quote_reserves"`
	VirtualBaseReserves  uint64 `toml:"virtual_base_reserves"`
	RealQuoteReserves    uint64 `toml:"real_quote_reserves"`
	RealBaseReserves     uint64 `toml:"real_base_reserves"`
	TotalSupply          uint64 `toml:"total_supply"`

	FeeBps              uint64 `toml:"fee_bps"`
	MigrationFee        uint64 `toml:"migration_fee"`
	InitializationFee   uint64 `toml:"initialization_fee"`
	DefaultSlippageBps  uint64 `toml:"default_slippage_bps"`
	PoolCreationReserve uint64 `toml:"pool_creation_reserve"`

	// GraduationRule is "reserve_depleted" or "market_cap".
	GraduationRule     string `toml:"graduation_rule"`
	MarketCapThreshold uint64 `toml:"market_cap_threshold"`

	BaseDecimals  uint8 `toml:"base_decimals"`
	QuoteDecimals uint8 `toml:"quote_decimals"`
}

type StoreConfig struct {
	// Backend is "memory" or "pebble".
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	Sync    bool   `toml:"sync"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// AccountsConfig keys are base58.
type AccountsConfig struct {
	Operator string `toml:"operator"`
	// FeeSink defaults to the global fee vault.
	FeeSink string `toml:"fee_sink"`
}

func Defaults() Config {
	d := bc.DefaultConfig()
	return Config{
		Curve: CurveConfig{
			VirtualQuoteReserves: d.InitialVirtualQuoteReserves,
			VirtualBaseReserves:  d.InitialVirtualBaseReserves,
			RealQuoteReserves:    d.InitialRealQuoteReserves,
			RealBaseReserves:     d.InitialRealBaseReserves,
			TotalSupply:          d.TotalSupply,
			FeeBps:               d.FeeBps,
			MigrationFee:         d.MigrationFee,
			InitializationFee:    d.InitializationFee,
			DefaultSlippageBps:   d.DefaultSlippageBps,
			PoolCreationReserve:  d.PoolCreationReserve,
			GraduationRule:       d.GraduationRule.String(),
			MarketCapThreshold:   d.MarketCapThreshold,
			BaseDecimals:         d.BaseDecimals,
			QuoteDecimals:        d.QuoteDecimals,
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// CurveParams converts the [curve] section.
func (c *Config) CurveParams() (bc.Config, error) {
	rule, err := bc.ParseGraduationRule(strings.ToLower(c.Curve.GraduationRule))
	if err != nil {
		return bc.Config{}, err
	}
	cfg := bc.Config{
		InitialVirtualQuoteReserves: c.Curve.VirtualQuoteReserves,
		InitialVirtualBaseReserves:  c.Curve.VirtualBaseReserves,
		InitialRealQuoteReserves:    c.Curve.RealQuoteReserves,
		InitialRealBaseReserves:     c.Curve.RealBaseReserves,
		TotalSupply:                 c.Curve.TotalSupply,
		FeeBps:                      c.Curve.FeeBps,
		MigrationFee:                c.Curve.MigrationFee,
		InitializationFee:           c.Curve.InitializationFee,
		DefaultSlippageBps:          c.Curve.DefaultSlippageBps,
		PoolCreationReserve:         c.Curve.PoolCreationReserve,
		GraduationRule:              rule,
		MarketCapThreshold:          c.Curve.MarketCapThreshold,
		BaseDecimals:                c.Curve.BaseDecimals,
		QuoteDecimals:               c.Curve.QuoteDecimals,
	}
	return cfg, cfg.Validate()
}

func parseKey(name, s string) (solana.PublicKey, error) {
	if s == "" {
		return solana.PublicKey{}, nil
	}
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("accounts.%s: %w", name, err)
	}
	return key, nil
}

// Operator is the zero key when unset.
func (c *Config) Operator() (solana.PublicKey, error) {
	return parseKey("operator", c.Accounts.Operator)
}

func (c *Config) FeeSink() (solana.PublicKey, error) {
	key, err := parseKey("fee_sink", c.Accounts.FeeSink)
	if err != nil || !key.IsZero() {
		return key, err
	}
	return bc.DeriveGlobalFeeVaultPDA(), nil
}

func (c *Config) Validate() error {
	var errs []error

	if _, err := c.CurveParams(); err != nil {
		errs = append(errs, fmt.Errorf("curve: %w", err))
	}

	switch c.Store.Backend {
	case "memory":
	case "pebble":
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store: path is required for the pebble backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store: unknown backend %q (valid: memory, pebble)", c.Store.Backend))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	if _, err := c.Operator(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.FeeSink(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func (c *Config) OpenStore() (store.Store, error) {
	switch c.Store.Backend {
	case "pebble":
		return store.OpenPebble(c.Store.Path, store.PebbleOptions{Sync: c.Store.Sync})
	case "memory", "":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", c.Store.Backend)
}
