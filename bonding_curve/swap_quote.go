package bonding_curve

import (
	binary "github.com/gagliardetto/binary"
	"github.com/shopspring/decimal"

	dmath "github.com/krazyTry/launchpad-go/decimal_math"
	bcmath "github.com/krazyTry/launchpad-go/bonding_curve/math"
	"github.com/krazyTry/launchpad-go/u128"
)

type QuoteResult struct {
	Direction        TradeDirection
	AmountIn         uint64
	AmountOut        uint64
	MinimumAmountOut uint64
	Fee              uint64
	Reserves         ReservesInfo
	Invariant        InvariantInfo
	Price            PriceInfo
	// Completes is set when the trade would graduate the curve.
	Completes bool
}

type ReservesInfo struct {
	BeforeSwap Reserves
	AfterSwap  Reserves
}

// InvariantInfo carries k = virtual quote * virtual base.
type InvariantInfo struct {
	BeforeSwap binary.Uint128
	AfterSwap  binary.Uint128
}

// PriceInfo is the spot price in whole quote units per whole base unit.
type PriceInfo struct {
	BeforeSwap decimal.Decimal
	AfterSwap  decimal.Decimal
}

func uiPrice(cfg Config, r Reserves) decimal.Decimal {
	return dmath.ToUIPrice(r.VirtualQuote, r.VirtualBase, cfg.QuoteDecimals, cfg.BaseDecimals)
}

func newQuoteResult(cfg Config, result *TradeResult, amountIn, amountOut, slippageBps uint64) (*QuoteResult, error) {
	minOut, err := bcmath.MinWithSlippage(amountOut, slippageBps)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{
		Direction:        result.Direction,
		AmountIn:         amountIn,
		AmountOut:        amountOut,
		MinimumAmountOut: minOut,
		Fee:              result.Fee,
		Reserves: ReservesInfo{
			BeforeSwap: result.Before,
			AfterSwap:  result.After,
		},
		Invariant: InvariantInfo{
			BeforeSwap: u128.Mul64(result.Before.VirtualQuote, result.Before.VirtualBase),
			AfterSwap:  u128.Mul64(result.After.VirtualQuote, result.After.VirtualBase),
		},
		Price: PriceInfo{
			BeforeSwap: uiPrice(cfg, result.Before),
			AfterSwap:  uiPrice(cfg, result.After),
		},
		Completes: result.Completed,
	}, nil
}

// BuyQuote prices a buy of quoteIn gross quote without touching state.
func BuyQuote(cfg Config, state *CurveState, quoteIn uint64, slippageBps *uint64) (*QuoteResult, error) {
	slippage, err := resolveSlippage(cfg, slippageBps)
	if err != nil {
		return nil, err
	}
	_, result, err := ApplyBuy(cfg, state, TradeParams{Amount: quoteIn, SlippageBps: &slippage})
	if err != nil {
		return nil, err
	}
	return newQuoteResult(cfg, result, quoteIn, result.BaseAmount, slippage)
}

// SellQuote prices a sell of baseIn tokens without touching state. The
// seller is assumed to hold exactly baseIn.
func SellQuote(cfg Config, state *CurveState, baseIn uint64, slippageBps *uint64) (*QuoteResult, error) {
	slippage, err := resolveSlippage(cfg, slippageBps)
	if err != nil {
		return nil, err
	}
	_, result, err := ApplySell(cfg, state, baseIn, TradeParams{Amount: baseIn, SlippageBps: &slippage})
	if err != nil {
		return nil, err
	}
	return newQuoteResult(cfg, result, baseIn, result.QuoteAmount, slippage)
}
