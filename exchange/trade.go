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
	"github.com/krazyTry/launchpad-go/store"
)

// TradeRequest is a buy or sell against one curve.
type TradeRequest struct {
	Direction bc.TradeDirection
	// Amount is gross quote for buys; tokens, or basis points of the
	// caller's balance when IsPercentage is set, for sells.
	Amount            uint64
	IsPercentage      bool
	SlippageBps       *uint64
	ExpectedAmountOut uint64
	MinimumAmountOut  uint64
}

func (r TradeRequest) params() bc.TradeParams {
	return bc.TradeParams{
		Amount:            r.Amount,
		IsPercentage:      r.IsPercentage,
		SlippageBps:       r.SlippageBps,
		ExpectedAmountOut: r.ExpectedAmountOut,
		MinimumAmountOut:  r.MinimumAmountOut,
	}
}

// CreateCurve launches a curve for mint with the caller as creator. The
// whole supply is minted into the curve vault and the initialization fee is
// charged to the creator. meta is only reported on the creation event.
func (e *Exchange) CreateCurve(ctx context.Context, caller auth.Caller, mint solana.PublicKey, meta bc.TokenMetadata) (*bc.CurveState, error) {
	if err := caller.Require(); err != nil {
		return nil, e.reject("create", mint, err)
	}
	if mint.IsZero() {
		return nil, e.reject("create", mint, fmt.Errorf("empty mint: %w", bc.ErrInvalidAmount))
	}

	e.locks.Lock(mint)
	defer e.locks.Unlock(mint)

	creator := caller.PublicKey()
	state := bc.NewCurveState(e.cfg, creator, mint, bc.DeriveBondingCurvePDA(mint))

	err := e.store.Commit(ctx, &store.Batch{
		NewCurves: []*bc.CurveState{state},
		Transfers: []ledger.Transfer{
			ledger.NewTransferQuote(creator, e.feeSink, e.cfg.InitializationFee),
			ledger.NewMintTo(mint, state.Authority, e.cfg.TotalSupply),
		},
	})
	if err != nil {
		return nil, e.reject("create", mint, ledgerError(err))
	}

	e.metrics.Fee(e.cfg.InitializationFee)
	e.log.Info("curve created",
		zap.Stringer("mint", mint),
		zap.Stringer("creator", creator),
		zap.String("symbol", meta.Symbol),
		zap.Uint64("supply", e.cfg.TotalSupply),
	)
	e.emit(ctx, event.NewCurveCreated(e.now(), state, meta, e.cfg.InitializationFee))
	return state, nil
}

// Trade dispatches on req.Direction.
func (e *Exchange) Trade(ctx context.Context, caller auth.Caller, mint solana.PublicKey, req TradeRequest) (*bc.TradeResult, error) {
	if req.Direction == bc.TradeDirectionSell {
		return e.Sell(ctx, caller, mint, req)
	}
	return e.Buy(ctx, caller, mint, req)
}

// Buy spends req.Amount gross quote of the caller on tokens. A zero amount
// returns a no-op result and commits nothing.
func (e *Exchange) Buy(ctx context.Context, caller auth.Caller, mint solana.PublicKey, req TradeRequest) (*bc.TradeResult, error) {
	if err := caller.Require(); err != nil {
		return nil, e.reject("buy", mint, err)
	}

	e.locks.Lock(mint)
	defer e.locks.Unlock(mint)

	state, err := e.curve(ctx, mint)
	if err != nil {
		return nil, e.reject("buy", mint, err)
	}
	next, result, err := bc.ApplyBuy(e.cfg, state, req.params())
	if err != nil {
		return nil, e.reject("buy", mint, err)
	}
	if result.IsNoop() {
		return result, nil
	}

	trader := caller.PublicKey()
	vault := state.Authority
	err = e.store.Commit(ctx, &store.Batch{
		Curves: []*bc.CurveState{next},
		Transfers: []ledger.Transfer{
			ledger.NewTransferQuote(trader, vault, result.ReserveQuote),
			ledger.NewTransferQuote(trader, e.feeSink, result.Fee),
			ledger.NewTransferTokens(mint, vault, trader, vault, result.BaseAmount),
		},
	})
	if err != nil {
		return nil, e.reject("buy", mint, ledgerError(err))
	}

	e.accepted(ctx, mint, trader, result)
	return result, nil
}

// Sell returns tokens of the caller to the curve for quote.
func (e *Exchange) Sell(ctx context.Context, caller auth.Caller, mint solana.PublicKey, req TradeRequest) (*bc.TradeResult, error) {
	if err := caller.Require(); err != nil {
		return nil, e.reject("sell", mint, err)
	}

	e.locks.Lock(mint)
	defer e.locks.Unlock(mint)

	state, err := e.curve(ctx, mint)
	if err != nil {
		return nil, e.reject("sell", mint, err)
	}
	trader := caller.PublicKey()
	balance, err := e.store.Balance(ctx, ledger.TokenAccount(trader, mint))
	if err != nil {
		return nil, e.reject("sell", mint, err)
	}
	next, result, err := bc.ApplySell(e.cfg, state, balance, req.params())
	if err != nil {
		return nil, e.reject("sell", mint, err)
	}

	vault := state.Authority
	err = e.store.Commit(ctx, &store.Batch{
		Curves: []*bc.CurveState{next},
		Transfers: []ledger.Transfer{
			ledger.NewTransferTokens(mint, trader, vault, trader, result.BaseAmount),
			ledger.NewTransferQuote(vault, trader, result.QuoteAmount),
			ledger.NewTransferQuote(vault, e.feeSink, result.Fee),
		},
	})
	if err != nil {
		return nil, e.reject("sell", mint, ledgerError(err))
	}

	e.accepted(ctx, mint, trader, result)
	return result, nil
}

func (e *Exchange) accepted(ctx context.Context, mint, trader solana.PublicKey, result *bc.TradeResult) {
	direction := result.Direction.String()
	e.metrics.Trade(direction, result.QuoteAmount, result.Fee)
	e.log.Debug("trade",
		zap.Stringer("mint", mint),
		zap.Stringer("trader", trader),
		zap.String("direction", direction),
		zap.Uint64("quote", result.QuoteAmount),
		zap.Uint64("base", result.BaseAmount),
		zap.Uint64("fee", result.Fee),
		zap.Bool("complete", result.Completed),
	)
	if result.Completed {
		e.metrics.Graduated()
		e.log.Info("curve complete",
			zap.Stringer("mint", mint),
			zap.Uint64("realQuote", result.After.RealQuote),
		)
	}
	e.emit(ctx, event.NewTrade(e.now(), mint, trader, result))
}
