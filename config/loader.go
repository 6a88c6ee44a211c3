package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const envPrefix = "LAUNCHPAD_"

// Load decodes the TOML file at path over Defaults, loads .env if present and
// applies LAUNCHPAD_* overrides. An empty path skips the file. The result is
// not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setUint64(&cfg.Curve.VirtualQuoteReserves, "CURVE_VIRTUAL_QUOTE_RESERVES")
	setUint64(&cfg.Curve.VirtualBaseReserves, "CURVE_VIRTUAL_BASE_RESERVES")
	setUint64(&cfg.Curve.RealQuoteReserves, "CURVE_REAL_QUOTE_RESERVES")
	setUint64(&cfg.Curve.RealBaseReserves, "CURVE_REAL_BASE_RESERVES")
	setUint64(&cfg.Curve.TotalSupply, "CURVE_TOTAL_SUPPLY")
	setUint64(&cfg.Curve.FeeBps, "CURVE_FEE_BPS")
	setUint64(&cfg.Curve.MigrationFee, "CURVE_MIGRATION_FEE")
	setUint64(&cfg.Curve.InitializationFee, "CURVE_INITIALIZATION_FEE")
	setUint64(&cfg.Curve.DefaultSlippageBps, "CURVE_DEFAULT_SLIPPAGE_BPS")
	setUint64(&cfg.Curve.PoolCreationReserve, "CURVE_POOL_CREATION_RESERVE")
	setStr(&cfg.Curve.GraduationRule, "CURVE_GRADUATION_RULE")
	setUint64(&cfg.Curve.MarketCapThreshold, "CURVE_MARKET_CAP_THRESHOLD")

	setStr(&cfg.Store.Backend, "STORE_BACKEND")
	setStr(&cfg.Store.Path, "STORE_PATH")
	setBool(&cfg.Store.Sync, "STORE_SYNC")

	setStr(&cfg.Log.Level, "LOG_LEVEL")
	setBool(&cfg.Log.Development, "LOG_DEVELOPMENT")

	setStr(&cfg.Accounts.Operator, "ACCOUNTS_OPERATOR")
	setStr(&cfg.Accounts.FeeSink, "ACCOUNTS_FEE_SINK")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
