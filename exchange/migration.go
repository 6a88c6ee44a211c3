package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/auth"
	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/event"
	"github.com/krazyTry/launchpad-go/ledger"
	"github.com/krazyTry/launchpad-go/pool"
	"github.com/krazyTry/launchpad-go/store"
)

// MigrationResult describes the pool a curve migrated into.
type MigrationResult struct {
	Pool        *pool.Pool
	BaseAmount  uint64
	QuoteAmount uint64
	CreationFee uint64
	// Swept is the native quote returned to the operator.
	Swept uint64
}

func (e *Exchange) requireOperator(caller auth.Caller) error {
	if e.operator.IsZero() {
		return fmt.Errorf("no operator configured: %w", bc.ErrUnauthorized)
	}
	return caller.RequireKey(e.operator)
}

// PrepareMigration moves a complete curve's tokens and net quote into the
// migration holding account and pays the migration fee.
func (e *Exchange) PrepareMigration(ctx context.Context, caller auth.Caller, mint solana.PublicKey) (*bc.PrepareMigrationResult, error) {
	if err := e.requireOperator(caller); err != nil {
		return nil, e.reject("prepare_migration", mint, err)
	}

	e.locks.Lock(mint)
	defer e.locks.Unlock(mint)

	state, err := e.curve(ctx, mint)
	if err != nil {
		return nil, e.reject("prepare_migration", mint, err)
	}
	vault := state.Authority
	vaultTokens, err := e.store.Balance(ctx, ledger.TokenAccount(vault, mint))
	if err != nil {
		return nil, e.reject("prepare_migration", mint, err)
	}
	next, result, err := bc.PrepareMigration(e.cfg, state, vaultTokens)
	if err != nil {
		return nil, e.reject("prepare_migration", mint, err)
	}

	holding := bc.DeriveMigrationAuthorityPDA(mint)
	err = e.store.Commit(ctx, &store.Batch{
		Curves: []*bc.CurveState{next},
		Transfers: []ledger.Transfer{
			ledger.NewTransferTokens(mint, vault, holding, vault, result.TokenAmount),
			ledger.NewTransferQuote(vault, holding, result.QuoteAmount),
			ledger.NewTransferQuote(vault, e.feeSink, result.Fee),
		},
	})
	if err != nil {
		return nil, e.reject("prepare_migration", mint, ledgerError(err))
	}

	e.metrics.Fee(result.Fee)
	e.metrics.Migration("prepare")
	e.log.Info("migration prepared",
		zap.Stringer("mint", mint),
		zap.Stringer("holding", holding),
		zap.Uint64("tokens", result.TokenAmount),
		zap.Uint64("quote", result.QuoteAmount),
		zap.Uint64("fee", result.Fee),
	)
	e.emit(ctx, event.NewMigrationPrepared(e.now(), mint, holding, result))
	return result, nil
}

// ExecuteMigration wraps the held quote, creates the external pool, deposits
// both sides and sweeps what is left to the operator. The pool is quoted and
// every transfer validated first; the pool is created only when nothing but
// the write can still fail.
func (e *Exchange) ExecuteMigration(ctx context.Context, caller auth.Caller, mint solana.PublicKey) (*MigrationResult, error) {
	if err := e.requireOperator(caller); err != nil {
		return nil, e.reject("execute_migration", mint, err)
	}
	if e.pools == nil {
		return nil, e.reject("execute_migration", mint, ErrNoPoolCreator)
	}

	e.locks.Lock(mint)
	defer e.locks.Unlock(mint)

	state, err := e.curve(ctx, mint)
	if err != nil {
		return nil, e.reject("execute_migration", mint, err)
	}
	holding := bc.DeriveMigrationAuthorityPDA(mint)
	holdingQuote, err := e.store.Balance(ctx, ledger.QuoteAccount(holding))
	if err != nil {
		return nil, e.reject("execute_migration", mint, err)
	}
	holdingTokens, err := e.store.Balance(ctx, ledger.TokenAccount(holding, mint))
	if err != nil {
		return nil, e.reject("execute_migration", mint, err)
	}
	plan, err := bc.PlanPoolMigration(e.cfg, state, holdingQuote, holdingTokens)
	if err != nil {
		return nil, e.reject("execute_migration", mint, err)
	}

	req := pool.Request{
		BaseMint:    mint,
		QuoteMint:   solana.WrappedSol,
		BaseAmount:  plan.TokenAmount,
		QuoteAmount: plan.WrapAmount,
		OpenTime:    uint64(e.now().Unix()),
	}
	quoted, err := e.pools.Quote(ctx, req)
	if err != nil {
		return nil, e.reject("execute_migration", mint, fmt.Errorf("quote pool: %w", err))
	}
	if quoted.CreationFee > plan.Reserve {
		err := fmt.Errorf("pool creation fee %d exceeds reserve %d: %w", quoted.CreationFee, plan.Reserve, bc.ErrInsufficientFunds)
		return nil, e.reject("execute_migration", mint, err)
	}

	result := &MigrationResult{
		Pool:        quoted,
		BaseAmount:  plan.TokenAmount,
		QuoteAmount: plan.WrapAmount,
		CreationFee: quoted.CreationFee,
		Swept:       plan.Reserve - quoted.CreationFee,
	}
	createPool := func(ctx context.Context) error {
		p, err := e.pools.CreatePool(ctx, req)
		if err != nil {
			return fmt.Errorf("create pool: %w", err)
		}
		result.Pool = p
		return nil
	}

	err = e.store.Commit(ctx, &store.Batch{
		Curves: []*bc.CurveState{bc.CompleteMigration(state)},
		Transfers: []ledger.Transfer{
			ledger.NewWrap(solana.WrappedSol, holding, plan.WrapAmount),
			ledger.NewTransferTokens(solana.WrappedSol, holding, quoted.QuoteVault, holding, plan.WrapAmount),
			ledger.NewTransferTokens(mint, holding, quoted.BaseVault, holding, plan.TokenAmount),
			ledger.NewTransferQuote(holding, quoted.FeeReceiver, quoted.CreationFee),
			ledger.NewTransferQuote(holding, caller.PublicKey(), result.Swept),
		},
		Precommit: createPool,
	})
	if err != nil {
		return nil, e.reject("execute_migration", mint, ledgerError(err))
	}

	e.metrics.Migration("execute")
	e.log.Info("curve migrated",
		zap.Stringer("mint", mint),
		zap.Stringer("pool", result.Pool.Address),
		zap.Uint64("base", result.BaseAmount),
		zap.Uint64("quote", result.QuoteAmount),
		zap.Uint64("swept", result.Swept),
	)
	e.emit(ctx, event.NewPoolMigrated(e.now(), mint, event.PoolMigrated{
		Pool:        result.Pool.Address,
		LpMint:      result.Pool.LpMint,
		BaseAmount:  result.BaseAmount,
		QuoteAmount: result.QuoteAmount,
		CreationFee: result.CreationFee,
		Swept:       result.Swept,
	}))
	return result, nil
}
