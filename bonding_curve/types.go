package bonding_curve

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Status is the lifecycle stage of a curve. It only moves forward.
type Status uint8

const (
	StatusActive Status = iota
	StatusComplete
	StatusMigrationPrepared
	StatusMigrated
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusComplete:
		return "complete"
	case StatusMigrationPrepared:
		return "migration_prepared"
	case StatusMigrated:
		return "migrated"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// GraduationRule selects the condition that completes a curve.
type GraduationRule uint8

const (
	// GraduationRuleReserveDepleted completes when real base reserves reach zero.
	GraduationRuleReserveDepleted GraduationRule = iota
	// GraduationRuleMarketCap completes when MarketCap reaches the threshold.
	GraduationRuleMarketCap
)

func (r GraduationRule) String() string {
	switch r {
	case GraduationRuleReserveDepleted:
		return "reserve_depleted"
	case GraduationRuleMarketCap:
		return "market_cap"
	default:
		return fmt.Sprintf("graduation_rule(%d)", uint8(r))
	}
}

func ParseGraduationRule(s string) (GraduationRule, error) {
	switch s {
	case "reserve_depleted", "":
		return GraduationRuleReserveDepleted, nil
	case "market_cap":
		return GraduationRuleMarketCap, nil
	}
	return 0, fmt.Errorf("%w: unknown graduation rule %q", ErrInvalidConfig, s)
}

// TradeDirection defines the direction of a trade
type TradeDirection uint8

const (
	TradeDirectionBuy TradeDirection = iota
	TradeDirectionSell
)

func (d TradeDirection) String() string {
	if d == TradeDirectionSell {
		return "sell"
	}
	return "buy"
}

// CurveState is the per-asset record. Reserves are in raw units.
type CurveState struct {
	Creator   solana.PublicKey
	Mint      solana.PublicKey
	Authority solana.PublicKey

	VirtualQuoteReserves uint64
	VirtualBaseReserves  uint64
	RealQuoteReserves    uint64
	RealBaseReserves     uint64
	TotalSupply          uint64

	Status      Status
	HasMigrated bool
}

func (s *CurveState) Clone() *CurveState {
	c := *s
	return &c
}

func (s *CurveState) IsActive() bool {
	return s.Status == StatusActive
}

func (s *CurveState) Reserves() Reserves {
	return Reserves{
		VirtualQuote: s.VirtualQuoteReserves,
		VirtualBase:  s.VirtualBaseReserves,
		RealQuote:    s.RealQuoteReserves,
		RealBase:     s.RealBaseReserves,
	}
}

// TokenMetadata describes the launched token. It is carried on the creation
// event and not stored with the curve.
type TokenMetadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

// Reserves is a snapshot of the four reserve fields.
type Reserves struct {
	VirtualQuote uint64 `json:"virtual_quote"`
	VirtualBase  uint64 `json:"virtual_base"`
	RealQuote    uint64 `json:"real_quote"`
	RealBase     uint64 `json:"real_base"`
}

// Config is the genesis parameter set of a deployment.
type Config struct {
	InitialVirtualQuoteReserves uint64
	InitialVirtualBaseReserves  uint64
	InitialRealQuoteReserves    uint64
	InitialRealBaseReserves     uint64
	TotalSupply                 uint64

	FeeBps              uint64
	MigrationFee        uint64
	InitializationFee   uint64
	DefaultSlippageBps  uint64
	PoolCreationReserve uint64

	GraduationRule     GraduationRule
	MarketCapThreshold uint64

	BaseDecimals  uint8
	QuoteDecimals uint8
}

func DefaultConfig() Config {
	return Config{
		InitialVirtualQuoteReserves: VirtualSolReserves,
		InitialVirtualBaseReserves:  VirtualTokenReserves,
		InitialRealQuoteReserves:    RealSolReserves,
		InitialRealBaseReserves:     RealTokenReserves,
		TotalSupply:                 TotalTokenSupply,
		FeeBps:                      FeeBps,
		MigrationFee:                MigrationFee,
		InitializationFee:           InitializationFee,
		DefaultSlippageBps:          DefaultSlippageBps,
		PoolCreationReserve:         PoolCreationReserve,
		GraduationRule:              GraduationRuleReserveDepleted,
		MarketCapThreshold:          MarketCapThreshold,
		BaseDecimals:                BaseDecimals,
		QuoteDecimals:               QuoteDecimals,
	}
}

func (c Config) Validate() error {
	switch {
	case c.InitialVirtualQuoteReserves == 0:
		return fmt.Errorf("%w: virtual quote reserves must be greater than 0", ErrInvalidConfig)
	case c.InitialVirtualBaseReserves == 0:
		return fmt.Errorf("%w: virtual base reserves must be greater than 0", ErrInvalidConfig)
	case c.InitialRealBaseReserves > c.InitialVirtualBaseReserves:
		return fmt.Errorf("%w: real base reserves exceed virtual base reserves", ErrInvalidConfig)
	case c.InitialRealBaseReserves > c.TotalSupply:
		return fmt.Errorf("%w: real base reserves exceed total supply", ErrInvalidConfig)
	case c.FeeBps >= 10_000:
		return fmt.Errorf("%w: fee bps must be below 10000", ErrInvalidConfig)
	case c.DefaultSlippageBps > 10_000:
		return fmt.Errorf("%w: default slippage bps must be at most 10000", ErrInvalidConfig)
	case c.GraduationRule > GraduationRuleMarketCap:
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.GraduationRule)
	case c.GraduationRule == GraduationRuleMarketCap && c.MarketCapThreshold == 0:
		return fmt.Errorf("%w: market cap threshold must be greater than 0", ErrInvalidConfig)
	}
	return nil
}

// NewCurveState builds the genesis record of a curve.
func NewCurveState(cfg Config, creator, mint, authority solana.PublicKey) *CurveState {
	return &CurveState{
		Creator:              creator,
		Mint:                 mint,
		Authority:            authority,
		VirtualQuoteReserves: cfg.InitialVirtualQuoteReserves,
		VirtualBaseReserves:  cfg.InitialVirtualBaseReserves,
		RealQuoteReserves:    cfg.InitialRealQuoteReserves,
		RealBaseReserves:     cfg.InitialRealBaseReserves,
		TotalSupply:          cfg.TotalSupply,
		Status:               StatusActive,
	}
}
