// Package event defines the immutable records emitted after every
// committed operation and the sinks that receive them.
package event

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
)

type Kind string

const (
	KindCurveCreated      Kind = "curve_created"
	KindTrade             Kind = "trade"
	KindMigrationPrepared Kind = "migration_prepared"
	KindPoolMigrated      Kind = "pool_migrated"
)

// Event carries exactly one payload matching Kind.
type Event struct {
	ID   uuid.UUID        `json:"id"`
	Kind Kind             `json:"kind"`
	Time time.Time        `json:"time"`
	Mint solana.PublicKey `json:"mint"`

	CurveCreated      *CurveCreated      `json:"curve_created,omitempty"`
	Trade             *Trade             `json:"trade,omitempty"`
	MigrationPrepared *MigrationPrepared `json:"migration_prepared,omitempty"`
	PoolMigrated      *PoolMigrated      `json:"pool_migrated,omitempty"`
}

type CurveCreated struct {
	Metadata          bc.TokenMetadata `json:"metadata"`
	Creator           solana.PublicKey `json:"creator"`
	Authority         solana.PublicKey `json:"authority"`
	TotalSupply       uint64           `json:"total_supply"`
	InitializationFee uint64           `json:"initialization_fee"`
	Reserves          bc.Reserves      `json:"reserves"`
}

type Trade struct {
	Trader      solana.PublicKey `json:"trader"`
	Direction   string           `json:"direction"`
	QuoteAmount uint64           `json:"quote_amount"`
	BaseAmount  uint64           `json:"base_amount"`
	Fee         uint64           `json:"fee"`
	Before      bc.Reserves      `json:"before"`
	After       bc.Reserves      `json:"after"`
	Status      string           `json:"status"`
	Complete    bool             `json:"complete"`
}

type MigrationPrepared struct {
	Holding     solana.PublicKey `json:"holding"`
	TokenAmount uint64           `json:"token_amount"`
	QuoteAmount uint64           `json:"quote_amount"`
	Fee         uint64           `json:"fee"`
	Before      bc.Reserves      `json:"before"`
}

type PoolMigrated struct {
	Pool        solana.PublicKey `json:"pool"`
	LpMint      solana.PublicKey `json:"lp_mint"`
	BaseAmount  uint64           `json:"base_amount"`
	QuoteAmount uint64           `json:"quote_amount"`
	CreationFee uint64           `json:"creation_fee"`
	Swept       uint64           `json:"swept"`
}

func newEvent(kind Kind, now time.Time, mint solana.PublicKey) *Event {
	return &Event{ID: uuid.New(), Kind: kind, Time: now.UTC(), Mint: mint}
}

func NewCurveCreated(now time.Time, state *bc.CurveState, meta bc.TokenMetadata, initializationFee uint64) *Event {
	e := newEvent(KindCurveCreated, now, state.Mint)
	e.CurveCreated = &CurveCreated{
		Metadata:          meta,
		Creator:           state.Creator,
		Authority:         state.Authority,
		TotalSupply:       state.TotalSupply,
		InitializationFee: initializationFee,
		Reserves:          state.Reserves(),
	}
	return e
}

func NewTrade(now time.Time, mint, trader solana.PublicKey, result *bc.TradeResult) *Event {
	e := newEvent(KindTrade, now, mint)
	e.Trade = &Trade{
		Trader:      trader,
		Direction:   result.Direction.String(),
		QuoteAmount: result.QuoteAmount,
		BaseAmount:  result.BaseAmount,
		Fee:         result.Fee,
		Before:      result.Before,
		After:       result.After,
		Status:      result.Status.String(),
		Complete:    result.Completed,
	}
	return e
}

func NewMigrationPrepared(now time.Time, mint, holding solana.PublicKey, result *bc.PrepareMigrationResult) *Event {
	e := newEvent(KindMigrationPrepared, now, mint)
	e.MigrationPrepared = &MigrationPrepared{
		Holding:     holding,
		TokenAmount: result.TokenAmount,
		QuoteAmount: result.QuoteAmount,
		Fee:         result.Fee,
		Before:      result.Before,
	}
	return e
}

func NewPoolMigrated(now time.Time, mint solana.PublicKey, payload PoolMigrated) *Event {
	e := newEvent(KindPoolMigrated, now, mint)
	e.PoolMigrated = &payload
	return e
}
