package bonding_curve

import (
	bcmath "github.com/krazyTry/launchpad-go/bonding_curve/math"
)

// TradeParams are the caller-controlled inputs of a buy or sell.
type TradeParams struct {
	// Amount is quote in for buys; base tokens, or basis points of the
	// seller's balance when IsPercentage is set, for sells.
	Amount       uint64
	IsPercentage bool
	// SlippageBps falls back to Config.DefaultSlippageBps when nil.
	SlippageBps *uint64
	// ExpectedAmountOut, when set, is the amount the slippage tolerance is
	// measured against, usually taken from an earlier quote.
	ExpectedAmountOut uint64
	// MinimumAmountOut is an absolute floor on the output.
	MinimumAmountOut uint64
}

// TradeResult describes an applied trade.
type TradeResult struct {
	Direction TradeDirection
	// QuoteAmount is what the trader paid (buy, gross) or received (sell, net).
	QuoteAmount uint64
	// ReserveQuote is what entered (buy, net) or left (sell, gross) the reserves.
	ReserveQuote uint64
	BaseAmount   uint64
	Fee          uint64
	Before       Reserves
	After        Reserves
	Status       Status
	// Completed is set when this trade graduated the curve.
	Completed bool
}

// IsNoop reports a zero buy, which leaves the curve untouched.
func (r *TradeResult) IsNoop() bool {
	return r.QuoteAmount == 0 && r.BaseAmount == 0
}

func Bps(v uint64) *uint64 {
	return &v
}

func resolveSlippage(cfg Config, slippageBps *uint64) (uint64, error) {
	if slippageBps == nil {
		return cfg.DefaultSlippageBps, nil
	}
	if *slippageBps > bcmath.BasisPointMax {
		return 0, ErrInvalidSlippage
	}
	return *slippageBps, nil
}

func checkSlippage(amountOut uint64, params TradeParams, slippageBps uint64) error {
	reference := amountOut
	if params.ExpectedAmountOut > 0 {
		reference = params.ExpectedAmountOut
	}
	minOut, err := bcmath.MinWithSlippage(reference, slippageBps)
	if err != nil {
		return err
	}
	minOut = max(minOut, params.MinimumAmountOut)
	if amountOut < minOut {
		return ErrSlippageExceeded
	}
	return nil
}

// SplitFee returns fee = amount * feeBps / 10000 and amount - fee.
func SplitFee(amount, feeBps uint64) (fee, net uint64, err error) {
	fee, err = bcmath.ApplyBps(amount, feeBps)
	if err != nil {
		return 0, 0, err
	}
	net, err = bcmath.CheckedSub64(amount, fee)
	if err != nil {
		return 0, 0, err
	}
	return fee, net, nil
}

// ApplyBuy prices a buy of params.Amount gross quote and returns the
// post-trade state. The input state is never modified.
func ApplyBuy(cfg Config, state *CurveState, params TradeParams) (*CurveState, *TradeResult, error) {
	if !state.IsActive() {
		return nil, nil, ErrBondingCurveComplete
	}
	slippageBps, err := resolveSlippage(cfg, params.SlippageBps)
	if err != nil {
		return nil, nil, err
	}

	before := state.Reserves()
	if params.Amount == 0 {
		return state.Clone(), &TradeResult{
			Direction: TradeDirectionBuy,
			Before:    before,
			After:     before,
			Status:    state.Status,
		}, nil
	}

	fee, net, err := SplitFee(params.Amount, cfg.FeeBps)
	if err != nil {
		return nil, nil, err
	}
	baseOut, err := GetBuyPrice(state, net)
	if err != nil {
		return nil, nil, err
	}
	if baseOut == 0 {
		return nil, nil, ErrInvalidAmount
	}
	if err := checkSlippage(baseOut, params, slippageBps); err != nil {
		return nil, nil, err
	}

	next := state.Clone()
	if next.VirtualQuoteReserves, err = bcmath.CheckedAdd64(next.VirtualQuoteReserves, net); err != nil {
		return nil, nil, err
	}
	if next.RealBaseReserves, err = bcmath.CheckedSub64(next.RealBaseReserves, baseOut); err != nil {
		return nil, nil, err
	}
	if next.VirtualBaseReserves, err = bcmath.CheckedSub64(next.VirtualBaseReserves, baseOut); err != nil {
		return nil, nil, err
	}
	if next.RealQuoteReserves, err = bcmath.CheckedAdd64(next.RealQuoteReserves, net); err != nil {
		return nil, nil, err
	}

	graduated, err := IsGraduated(next, cfg.GraduationRule, cfg.MarketCapThreshold)
	if err != nil {
		return nil, nil, err
	}
	if graduated {
		next.Status = StatusComplete
	}

	return next, &TradeResult{
		Direction:    TradeDirectionBuy,
		QuoteAmount:  params.Amount,
		ReserveQuote: net,
		BaseAmount:   baseOut,
		Fee:          fee,
		Before:       before,
		After:        next.Reserves(),
		Status:       next.Status,
		Completed:    graduated,
	}, nil
}

// ResolveSellAmount turns a sell request into a token quantity.
func ResolveSellAmount(amount uint64, isPercentage bool, balance uint64) (uint64, error) {
	tokens := amount
	if isPercentage {
		if amount > bcmath.BasisPointMax {
			return 0, ErrInvalidPercentage
		}
		var err error
		if tokens, err = bcmath.ApplyBps(balance, amount); err != nil {
			return 0, err
		}
	}
	if tokens == 0 {
		return 0, ErrInvalidAmount
	}
	if tokens > balance {
		return 0, ErrInsufficientTokenBalance
	}
	return tokens, nil
}

// GrossFromNet recovers the pre-fee quote of a sell: net * 10000 / (10000 - feeBps).
func GrossFromNet(net, feeBps uint64) (gross, fee uint64, err error) {
	denominator, err := bcmath.CheckedSub64(bcmath.BasisPointMax, feeBps)
	if err != nil {
		return 0, 0, err
	}
	gross, err = bcmath.MulDiv64(net, bcmath.BasisPointMax, denominator, bcmath.RoundingDown)
	if err != nil {
		return 0, 0, err
	}
	fee, err = bcmath.CheckedSub64(gross, net)
	if err != nil {
		return 0, 0, err
	}
	return gross, fee, nil
}

// ApplySell prices a sell against a seller holding balance base tokens and
// returns the post-trade state. Sells never change the status.
func ApplySell(cfg Config, state *CurveState, balance uint64, params TradeParams) (*CurveState, *TradeResult, error) {
	if !state.IsActive() {
		return nil, nil, ErrBondingCurveComplete
	}
	slippageBps, err := resolveSlippage(cfg, params.SlippageBps)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := ResolveSellAmount(params.Amount, params.IsPercentage, balance)
	if err != nil {
		return nil, nil, err
	}

	net, err := GetSellPrice(state, tokens, cfg.FeeBps)
	if err != nil {
		return nil, nil, err
	}
	if net == 0 {
		return nil, nil, ErrInvalidAmount
	}
	if err := checkSlippage(net, params, slippageBps); err != nil {
		return nil, nil, err
	}

	gross, fee, err := GrossFromNet(net, cfg.FeeBps)
	if err != nil {
		return nil, nil, err
	}
	if state.RealQuoteReserves < gross {
		return nil, nil, ErrInsufficientReserves
	}

	before := state.Reserves()
	next := state.Clone()
	if next.VirtualBaseReserves, err = bcmath.CheckedAdd64(next.VirtualBaseReserves, tokens); err != nil {
		return nil, nil, err
	}
	if next.RealBaseReserves, err = bcmath.CheckedAdd64(next.RealBaseReserves, tokens); err != nil {
		return nil, nil, err
	}
	if next.VirtualQuoteReserves, err = bcmath.CheckedSub64(next.VirtualQuoteReserves, gross); err != nil {
		return nil, nil, err
	}
	if next.RealQuoteReserves, err = bcmath.CheckedSub64(next.RealQuoteReserves, gross); err != nil {
		return nil, nil, err
	}

	return next, &TradeResult{
		Direction:    TradeDirectionSell,
		QuoteAmount:  net,
		ReserveQuote: gross,
		BaseAmount:   tokens,
		Fee:          fee,
		Before:       before,
		After:        next.Reserves(),
		Status:       next.Status,
	}, nil
}
