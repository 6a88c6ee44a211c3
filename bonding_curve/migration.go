package bonding_curve

import (
	"fmt"

	bcmath "github.com/krazyTry/launchpad-go/bonding_curve/math"
)

// PrepareMigrationResult is the split of the curve's custody on graduation.
type PrepareMigrationResult struct {
	// TokenAmount is the curve vault's whole token balance, including the
	// part of the supply that was never for sale.
	TokenAmount uint64
	// QuoteAmount is the real quote reserve minus the migration fee.
	QuoteAmount uint64
	Fee         uint64
	Before      Reserves
}

// PoolMigrationPlan is what ExecuteMigration hands the pool creator.
type PoolMigrationPlan struct {
	WrapAmount  uint64
	TokenAmount uint64
	// Reserve is the native quote left in the holding account for pool
	// creation costs; whatever survives is swept to the operator.
	Reserve uint64
}

func checkMigratable(state *CurveState) error {
	switch {
	case state.HasMigrated || state.Status == StatusMigrated:
		return ErrBondingCurveMigrated
	case state.Status == StatusActive:
		return ErrBondingCurveNotComplete
	}
	return nil
}

// PrepareMigration moves a Complete curve to MigrationPrepared. vaultTokens
// is the curve vault's current token balance.
func PrepareMigration(cfg Config, state *CurveState, vaultTokens uint64) (*CurveState, *PrepareMigrationResult, error) {
	if err := checkMigratable(state); err != nil {
		return nil, nil, err
	}
	if state.Status == StatusMigrationPrepared {
		return nil, nil, ErrMigrationPrepared
	}

	net, err := bcmath.CheckedSub64(state.RealQuoteReserves, cfg.MigrationFee)
	if err != nil {
		return nil, nil, fmt.Errorf("real quote reserves %d below migration fee %d: %w", state.RealQuoteReserves, cfg.MigrationFee, err)
	}

	before := state.Reserves()
	next := state.Clone()
	next.RealQuoteReserves = 0
	next.RealBaseReserves = 0
	next.Status = StatusMigrationPrepared

	return next, &PrepareMigrationResult{
		TokenAmount: vaultTokens,
		QuoteAmount: net,
		Fee:         cfg.MigrationFee,
		Before:      before,
	}, nil
}

// PlanPoolMigration validates a MigrationPrepared curve against the
// holding account balances.
func PlanPoolMigration(cfg Config, state *CurveState, holdingQuote, holdingTokens uint64) (*PoolMigrationPlan, error) {
	if err := checkMigratable(state); err != nil {
		return nil, err
	}
	if state.Status != StatusMigrationPrepared {
		return nil, ErrMigrationNotPrepared
	}

	wrap, err := bcmath.CheckedSub64(holdingQuote, cfg.PoolCreationReserve)
	if err != nil {
		return nil, fmt.Errorf("holding quote %d below pool creation reserve %d: %w", holdingQuote, cfg.PoolCreationReserve, ErrInsufficientFunds)
	}
	if wrap == 0 || holdingTokens == 0 {
		return nil, fmt.Errorf("nothing to deposit: %w", ErrInsufficientFunds)
	}

	return &PoolMigrationPlan{
		WrapAmount:  wrap,
		TokenAmount: holdingTokens,
		Reserve:     cfg.PoolCreationReserve,
	}, nil
}

// CompleteMigration is the terminal transition.
func CompleteMigration(state *CurveState) *CurveState {
	next := state.Clone()
	next.Status = StatusMigrated
	next.HasMigrated = true
	return next
}
