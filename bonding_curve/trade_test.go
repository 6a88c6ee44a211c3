package bonding_curve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyBuy(t *testing.T) {
	cfg := DefaultConfig()
	state := testGenesis()

	next, result, err := ApplyBuy(cfg, state, TradeParams{Amount: 1_000_000_000})
	require.NoError(t, err)

	require.Equal(t, uint64(1_000_000_000), result.QuoteAmount)
	require.Equal(t, uint64(990_000_000), result.ReserveQuote)
	require.Equal(t, uint64(10_000_000), result.Fee)
	require.Equal(t, uint64(34_277_831_558_567), result.BaseAmount)
	require.False(t, result.Completed)

	require.Equal(t, uint64(30_990_000_000), next.VirtualQuoteReserves)
	require.Equal(t, uint64(1_038_722_168_441_433), next.VirtualBaseReserves)
	require.Equal(t, uint64(990_000_000), next.RealQuoteReserves)
	require.Equal(t, uint64(758_822_168_441_433), next.RealBaseReserves)
	require.Equal(t, StatusActive, next.Status)

	// Input is untouched.
	require.Equal(t, VirtualSolReserves, state.VirtualQuoteReserves)
	require.Equal(t, result.Before, state.Reserves())
	require.Equal(t, result.After, next.Reserves())
}

func TestApplyBuyZeroIsNoop(t *testing.T) {
	state := testGenesis()
	next, result, err := ApplyBuy(DefaultConfig(), state, TradeParams{})
	require.NoError(t, err)
	require.True(t, result.IsNoop())
	require.Equal(t, state.Reserves(), next.Reserves())
}

func TestApplyBuyDust(t *testing.T) {
	// A steep curve where one lamport buys nothing.
	state := testGenesis()
	state.VirtualQuoteReserves = 1_000_000_000
	state.VirtualBaseReserves = 10
	state.RealBaseReserves = 10

	_, _, err := ApplyBuy(DefaultConfig(), state, TradeParams{Amount: 1})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApplyBuyGraduates(t *testing.T) {
	cfg := DefaultConfig()
	next, result, err := ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 100_000_000_000})
	require.NoError(t, err)
	require.True(t, result.Completed)
	require.Equal(t, RealTokenReserves, result.BaseAmount)
	require.Zero(t, next.RealBaseReserves)
	require.Equal(t, StatusComplete, next.Status)

	_, _, err = ApplyBuy(cfg, next, TradeParams{Amount: 1_000_000_000})
	require.ErrorIs(t, err, ErrBondingCurveComplete)
	_, _, err = ApplySell(cfg, next, 1_000, TradeParams{Amount: 1_000})
	require.ErrorIs(t, err, ErrBondingCurveComplete)
}

func TestApplyBuyMarketCapRule(t *testing.T) {
	cfg := DefaultConfig()
	next, result, err := ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 85_000_000_000})
	require.NoError(t, err)
	require.False(t, result.Completed)
	require.Equal(t, uint64(2_097_371_879_107), next.RealBaseReserves)

	cfg.GraduationRule = GraduationRuleMarketCap
	next, result, err = ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 85_000_000_000})
	require.NoError(t, err)
	require.True(t, result.Completed)
	require.Equal(t, StatusComplete, next.Status)
	require.Equal(t, uint64(2_097_371_879_107), next.RealBaseReserves)
}

func TestApplyBuySlippage(t *testing.T) {
	cfg := DefaultConfig()

	_, _, err := ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 1_000_000_000, SlippageBps: Bps(10_001)})
	require.ErrorIs(t, err, ErrInvalidSlippage)

	// Expected 5% more than what the curve gives, 1% tolerance.
	expected := uint64(34_277_831_558_567) * 105 / 100
	_, _, err = ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 1_000_000_000, SlippageBps: Bps(100), ExpectedAmountOut: expected})
	require.ErrorIs(t, err, ErrSlippageExceeded)

	// The same expectation passes with 10% tolerance.
	_, _, err = ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 1_000_000_000, SlippageBps: Bps(1_000), ExpectedAmountOut: expected})
	require.NoError(t, err)

	_, _, err = ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 1_000_000_000, MinimumAmountOut: 34_277_831_558_568})
	require.ErrorIs(t, err, ErrSlippageExceeded)

	_, _, err = ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 1_000_000_000, MinimumAmountOut: 34_277_831_558_567})
	require.NoError(t, err)
}

func TestApplySellRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	genesis := testGenesis()

	bought, buy, err := ApplyBuy(cfg, genesis, TradeParams{Amount: 1_000_000_000})
	require.NoError(t, err)

	sold, sell, err := ApplySell(cfg, bought, buy.BaseAmount, TradeParams{Amount: buy.BaseAmount})
	require.NoError(t, err)
	require.Equal(t, uint64(980_100_000), sell.QuoteAmount)
	require.Equal(t, uint64(990_000_000), sell.ReserveQuote)
	require.Equal(t, uint64(9_900_000), sell.Fee)
	require.Less(t, sell.QuoteAmount, buy.QuoteAmount)

	require.Equal(t, genesis.Reserves(), sold.Reserves())
	require.Equal(t, StatusActive, sold.Status)
}

func TestApplySellPercentage(t *testing.T) {
	cfg := DefaultConfig()
	bought, buy, err := ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 1_000_000_000})
	require.NoError(t, err)

	_, sell, err := ApplySell(cfg, bought, buy.BaseAmount, TradeParams{Amount: 5_000, IsPercentage: true})
	require.NoError(t, err)
	require.Equal(t, buy.BaseAmount/2, sell.BaseAmount)
	require.Equal(t, uint64(498_004_574), sell.QuoteAmount)
	require.Equal(t, uint64(503_034_923), sell.ReserveQuote)
	require.Equal(t, uint64(5_030_349), sell.Fee)

	_, _, err = ApplySell(cfg, bought, buy.BaseAmount, TradeParams{Amount: 10_001, IsPercentage: true})
	require.ErrorIs(t, err, ErrInvalidPercentage)
}

func TestApplySellErrors(t *testing.T) {
	cfg := DefaultConfig()
	bought, buy, err := ApplyBuy(cfg, testGenesis(), TradeParams{Amount: 1_000_000_000})
	require.NoError(t, err)

	_, _, err = ApplySell(cfg, bought, buy.BaseAmount, TradeParams{Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = ApplySell(cfg, bought, 0, TradeParams{Amount: 5_000, IsPercentage: true})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = ApplySell(cfg, bought, buy.BaseAmount, TradeParams{Amount: buy.BaseAmount + 1})
	require.ErrorIs(t, err, ErrInsufficientTokenBalance)

	// Tokens that never came from the curve cannot drain more than it holds.
	_, _, err = ApplySell(cfg, bought, 10*buy.BaseAmount, TradeParams{Amount: 10 * buy.BaseAmount})
	require.ErrorIs(t, err, ErrInsufficientReserves)

	_, _, err = ApplySell(cfg, bought, buy.BaseAmount, TradeParams{Amount: buy.BaseAmount, MinimumAmountOut: 980_100_001})
	require.ErrorIs(t, err, ErrSlippageExceeded)
}

func TestGrossFromNet(t *testing.T) {
	gross, fee, err := GrossFromNet(980_100_000, FeeBps)
	require.NoError(t, err)
	require.Equal(t, uint64(990_000_000), gross)
	require.Equal(t, uint64(9_900_000), fee)

	_, _, err = GrossFromNet(1, 10_001)
	require.ErrorIs(t, err, ErrMathOverflow)
}
