package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/auth"
	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	dmath "github.com/krazyTry/launchpad-go/decimal_math"
	"github.com/krazyTry/launchpad-go/event"
	"github.com/krazyTry/launchpad-go/exchange"
	"github.com/krazyTry/launchpad-go/ledger"
	"github.com/krazyTry/launchpad-go/metrics"
	"github.com/krazyTry/launchpad-go/pool"
	"github.com/krazyTry/launchpad-go/store"
)

func NewSimulateCmd() *cobra.Command {
	var (
		buys uint64
		size uint64
		meta bc.TokenMetadata
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a curve from creation to migration",
		Long: `Create a curve in the configured store, buy until it graduates or the
buy count runs out, then run both migration steps against a local pool
creator. Events are written to stdout as JSON lines.

Example:
  $ launchpad simulate --buys 20 --size 5000000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			curve, err := cfg.CurveParams()
			if err != nil {
				return err
			}
			log, err := cfg.Logger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			s, err := cfg.OpenStore()
			if err != nil {
				return err
			}
			defer s.Close()

			operator, err := cfg.Operator()
			if err != nil {
				return err
			}
			if operator.IsZero() {
				operator = solana.NewWallet().PublicKey()
			}
			feeSink, err := cfg.FeeSink()
			if err != nil {
				return err
			}
			m, err := metrics.New(prometheus.NewRegistry())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ex, err := exchange.New(curve, s,
				exchange.WithLogger(log),
				exchange.WithSink(event.NewJSONSink(out)),
				exchange.WithPoolCreator(pool.NewRaydium()),
				exchange.WithMetrics(m),
				exchange.WithOperator(operator),
				exchange.WithFeeSink(feeSink),
			)
			if err != nil {
				return err
			}
			return simulate(cmd.Context(), ex, s, auth.Assume(operator), meta, buys, size, log, func(format string, a ...any) {
				fmt.Fprintf(out, format, a...)
			})
		},
	}
	cmd.Flags().Uint64Var(&buys, "buys", 100, "maximum number of buys")
	cmd.Flags().Uint64Var(&size, "size", 5_000_000_000, "gross lamports per buy")
	cmd.Flags().StringVar(&meta.Name, "name", "Simulated", "token name")
	cmd.Flags().StringVar(&meta.Symbol, "symbol", "SIM", "token symbol")
	cmd.Flags().StringVar(&meta.URI, "uri", "", "token metadata uri")
	return cmd
}

func simulate(
	ctx context.Context,
	ex *exchange.Exchange,
	s store.Store,
	operator auth.Caller,
	meta bc.TokenMetadata,
	buys, size uint64,
	log *zap.Logger,
	printf func(format string, a ...any),
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := ex.Config()
	creator := auth.Assume(solana.NewWallet().PublicKey())
	trader := auth.Assume(solana.NewWallet().PublicKey())
	mint := solana.NewWallet().PublicKey()

	if err := store.Deposit(ctx, s, creator.PublicKey(), cfg.InitializationFee); err != nil {
		return err
	}
	if err := store.Deposit(ctx, s, trader.PublicKey(), buys*size); err != nil {
		return err
	}
	if _, err := ex.CreateCurve(ctx, creator, mint, meta); err != nil {
		return err
	}

	var done uint64
	for ; done < buys; done++ {
		result, err := ex.Buy(ctx, trader, mint, exchange.TradeRequest{Amount: size, SlippageBps: bc.Bps(10_000)})
		if errors.Is(err, bc.ErrBondingCurveComplete) {
			break
		}
		if err != nil {
			return err
		}
		if result.Completed {
			done++
			break
		}
	}

	state, err := ex.GetCurve(ctx, mint)
	if err != nil {
		return err
	}
	tokens, err := ex.Balance(ctx, ledger.TokenAccount(trader.PublicKey(), mint))
	if err != nil {
		return err
	}
	printf("buys: %d\n", done)
	printf("status: %s\n", state.Status)
	printf("tokens bought: %s\n", dmath.ToUIAmount(tokens, cfg.BaseDecimals))
	printf("real quote reserves: %s SOL\n", dmath.ToUIAmount(state.RealQuoteReserves, cfg.QuoteDecimals))

	if state.Status != bc.StatusComplete {
		log.Info("curve did not graduate", zap.Stringer("mint", mint))
		return nil
	}
	if _, err := ex.PrepareMigration(ctx, operator, mint); err != nil {
		return err
	}
	migrated, err := ex.ExecuteMigration(ctx, operator, mint)
	if err != nil {
		return err
	}
	printf("pool: %s\n", migrated.Pool.Address)
	printf("pool deposit: %s tokens, %s SOL\n",
		dmath.ToUIAmount(migrated.BaseAmount, cfg.BaseDecimals),
		dmath.ToUIAmount(migrated.QuoteAmount, cfg.QuoteDecimals),
	)
	return nil
}
