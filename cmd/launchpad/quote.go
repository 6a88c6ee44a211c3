package main

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	dmath "github.com/krazyTry/launchpad-go/decimal_math"
	"github.com/krazyTry/launchpad-go/u128"
)

type quoteOutput struct {
	Direction        string          `json:"direction"`
	AmountIn         uint64          `json:"amount_in"`
	AmountOut        uint64          `json:"amount_out"`
	UIAmountOut      decimal.Decimal `json:"ui_amount_out"`
	MinimumAmountOut uint64          `json:"minimum_amount_out"`
	Fee              uint64          `json:"fee"`
	PriceBefore      decimal.Decimal `json:"price_before"`
	PriceAfter       decimal.Decimal `json:"price_after"`
	InvariantBefore  string          `json:"invariant_before"`
	InvariantAfter   string          `json:"invariant_after"`
	Completes        bool            `json:"completes"`
}

func NewQuoteCmd() *cobra.Command {
	var (
		slippage uint64
		after    string
	)
	cmd := &cobra.Command{
		Use:   "quote [buy|sell] [amount]",
		Short: "Quote a trade against a fresh curve",
		Long: `Quote a buy or sell against a genesis curve built from the config.
Buy amounts are in SOL, sell amounts in whole tokens.

Example:
  $ launchpad quote buy 1.5
  $ launchpad quote sell 1000000 --after 10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			curve, err := cfg.CurveParams()
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			mint := solana.NewWallet().PublicKey()
			state := bc.NewCurveState(curve, solana.PublicKey{}, mint, bc.DeriveBondingCurvePDA(mint))
			if after != "" {
				prior, err := decimal.NewFromString(after)
				if err != nil {
					return fmt.Errorf("invalid --after %q: %w", after, err)
				}
				raw, err := dmath.FromUIAmount(prior, curve.QuoteDecimals)
				if err != nil {
					return fmt.Errorf("invalid --after %q: %w", after, err)
				}
				state, _, err = bc.ApplyBuy(curve, state, bc.TradeParams{
					Amount:      raw,
					SlippageBps: bc.Bps(10_000),
				})
				if err != nil {
					return fmt.Errorf("prior buy: %w", err)
				}
			}

			var (
				quote       *bc.QuoteResult
				raw         uint64
				outDecimals uint8
			)
			switch args[0] {
			case "buy":
				if raw, err = dmath.FromUIAmount(amount, curve.QuoteDecimals); err != nil {
					return fmt.Errorf("invalid amount %q: %w", args[1], err)
				}
				quote, err = bc.BuyQuote(curve, state, raw, bc.Bps(slippage))
				outDecimals = curve.BaseDecimals
			case "sell":
				if raw, err = dmath.FromUIAmount(amount, curve.BaseDecimals); err != nil {
					return fmt.Errorf("invalid amount %q: %w", args[1], err)
				}
				quote, err = bc.SellQuote(curve, state, raw, bc.Bps(slippage))
				outDecimals = curve.QuoteDecimals
			default:
				return fmt.Errorf("unknown direction %q (valid: buy, sell)", args[0])
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(quoteOutput{
				Direction:        quote.Direction.String(),
				AmountIn:         quote.AmountIn,
				AmountOut:        quote.AmountOut,
				UIAmountOut:      dmath.ToUIAmount(quote.AmountOut, outDecimals),
				MinimumAmountOut: quote.MinimumAmountOut,
				Fee:              quote.Fee,
				PriceBefore:      quote.Price.BeforeSwap,
				PriceAfter:       quote.Price.AfterSwap,
				InvariantBefore:  u128.ToBig(quote.Invariant.BeforeSwap).String(),
				InvariantAfter:   u128.ToBig(quote.Invariant.AfterSwap).String(),
				Completes:        quote.Completes,
			})
		},
	}
	cmd.Flags().Uint64Var(&slippage, "slippage", bc.DefaultSlippageBps, "slippage tolerance in basis points")
	cmd.Flags().StringVar(&after, "after", "", "SOL bought before quoting")
	return cmd
}
