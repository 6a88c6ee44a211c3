package bonding_curve

import (
	"fmt"
	"math/big"

	bcmath "github.com/krazyTry/launchpad-go/bonding_curve/math"
)

// GetBuyPrice returns the base tokens bought by quoteIn, already net of fee.
//
// base_out = vb - (vq * vb / (vq + quoteIn) + 1), capped at the real base
// reserves. The +1 keeps the remaining reserve rounded up so the buyer is
// never under-charged by a fractional unit.
func GetBuyPrice(state *CurveState, quoteIn uint64) (uint64, error) {
	if !state.IsActive() {
		return 0, ErrBondingCurveComplete
	}
	if quoteIn == 0 {
		return 0, nil
	}

	vq := bcmath.U64(state.VirtualQuoteReserves)
	vb := bcmath.U64(state.VirtualBaseReserves)

	// n = vq * vb
	n, err := bcmath.ToU128(bcmath.Mul(vq, vb))
	if err != nil {
		return 0, err
	}
	// i = vq + quoteIn
	i := bcmath.Add(vq, bcmath.U64(quoteIn))
	q, err := bcmath.Div(n, i)
	if err != nil {
		return 0, err
	}
	// r = n / i + 1
	r := bcmath.Add(q, big.NewInt(1))
	// s = vb - r
	s, err := bcmath.Sub(vb, r)
	if err != nil {
		return 0, err
	}
	out, err := bcmath.ToU64(s)
	if err != nil {
		return 0, err
	}
	return min(out, state.RealBaseReserves), nil
}

// getSellGross is the symmetric constant-product output before fee.
func getSellGross(state *CurveState, baseIn uint64) (*big.Int, error) {
	vq := bcmath.U64(state.VirtualQuoteReserves)
	vb := bcmath.U64(state.VirtualBaseReserves)
	in := bcmath.U64(baseIn)

	// quote_gross = baseIn * vq / (vb + baseIn)
	n, err := bcmath.ToU128(bcmath.Mul(in, vq))
	if err != nil {
		return nil, err
	}
	return bcmath.Div(n, bcmath.Add(vb, in))
}

// GetSellPrice returns the quote paid out for baseIn, net of a feeBps fee.
func GetSellPrice(state *CurveState, baseIn uint64, feeBps uint64) (uint64, error) {
	if !state.IsActive() {
		return 0, ErrBondingCurveComplete
	}
	if baseIn == 0 {
		return 0, nil
	}

	gross, err := getSellGross(state, baseIn)
	if err != nil {
		return 0, err
	}
	fee, err := bcmath.MulDiv(gross, bcmath.U64(feeBps), bcmath.U64(bcmath.BasisPointMax), bcmath.RoundingDown)
	if err != nil {
		return 0, err
	}
	net, err := bcmath.Sub(gross, fee)
	if err != nil {
		return 0, err
	}
	return bcmath.ToU64(net)
}

// MarketPrice is vq * PriceScale / vb.
func MarketPrice(state *CurveState) (uint64, error) {
	if !state.IsActive() {
		return 0, ErrBondingCurveComplete
	}
	if state.VirtualBaseReserves == 0 {
		return 0, fmt.Errorf("%w: virtual base reserves are zero", ErrMathOverflow)
	}
	return bcmath.MulDiv64(state.VirtualQuoteReserves, PriceScale, state.VirtualBaseReserves, bcmath.RoundingDown)
}

// MarketCap is vq * total_supply / vb, in quote units.
func MarketCap(state *CurveState) (uint64, error) {
	if state.VirtualBaseReserves == 0 {
		return 0, fmt.Errorf("%w: virtual base reserves are zero", ErrMathOverflow)
	}
	return bcmath.MulDiv64(state.VirtualQuoteReserves, state.TotalSupply, state.VirtualBaseReserves, bcmath.RoundingDown)
}

// IsGraduated reports whether the curve is, or should now be, complete.
// Under GraduationRuleMarketCap a depleted real reserve still completes the
// curve, since nothing is left to sell.
func IsGraduated(state *CurveState, rule GraduationRule, threshold uint64) (bool, error) {
	if !state.IsActive() {
		return true, nil
	}
	if state.RealBaseReserves == 0 {
		return true, nil
	}

	switch rule {
	case GraduationRuleReserveDepleted:
		return false, nil
	case GraduationRuleMarketCap:
		mc, err := MarketCap(state)
		if err != nil {
			return false, err
		}
		return mc >= threshold, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrInvalidConfig, rule)
	}
}
