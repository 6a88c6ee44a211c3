package exchange

import (
	"context"

	"github.com/gagliardetto/solana-go"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
)

func (e *Exchange) GetCurve(ctx context.Context, mint solana.PublicKey) (*bc.CurveState, error) {
	e.locks.RLock(mint)
	defer e.locks.RUnlock(mint)
	return e.curve(ctx, mint)
}

// BuyQuote prices a buy of quoteIn gross quote against the current curve.
func (e *Exchange) BuyQuote(ctx context.Context, mint solana.PublicKey, quoteIn uint64, slippageBps *uint64) (*bc.QuoteResult, error) {
	state, err := e.GetCurve(ctx, mint)
	if err != nil {
		return nil, err
	}
	return bc.BuyQuote(e.cfg, state, quoteIn, slippageBps)
}

// SellQuote prices a sell of baseIn tokens against the current curve.
func (e *Exchange) SellQuote(ctx context.Context, mint solana.PublicKey, baseIn uint64, slippageBps *uint64) (*bc.QuoteResult, error) {
	state, err := e.GetCurve(ctx, mint)
	if err != nil {
		return nil, err
	}
	return bc.SellQuote(e.cfg, state, baseIn, slippageBps)
}

func (e *Exchange) MarketPrice(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	state, err := e.GetCurve(ctx, mint)
	if err != nil {
		return 0, err
	}
	return bc.MarketPrice(state)
}

func (e *Exchange) MarketCap(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	state, err := e.GetCurve(ctx, mint)
	if err != nil {
		return 0, err
	}
	return bc.MarketCap(state)
}
