package exchange

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/krazyTry/launchpad-go/auth"
	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/event"
	"github.com/krazyTry/launchpad-go/ledger"
	"github.com/krazyTry/launchpad-go/metrics"
	"github.com/krazyTry/launchpad-go/pool"
	"github.com/krazyTry/launchpad-go/store"
)

var testMetadata = bc.TokenMetadata{Name: "Rekt", Symbol: "REKT", URI: "https://example.com/rekt.json"}

type testEnv struct {
	ex       *Exchange
	store    *store.Memory
	registry *prometheus.Registry
	events   chan *event.Event
	pools    *pool.Raydium
	operator auth.Caller
	creator  auth.Caller
	trader   auth.Caller
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	ctx := context.Background()
	env := &testEnv{
		store:    store.NewMemory(),
		registry: prometheus.NewRegistry(),
		events:   make(chan *event.Event, 64),
		pools:    pool.NewRaydium(),
		operator: auth.Assume(solana.NewWallet().PublicKey()),
		creator:  auth.Assume(solana.NewWallet().PublicKey()),
		trader:   auth.Assume(solana.NewWallet().PublicKey()),
	}
	m, err := metrics.New(env.registry)
	require.NoError(t, err)

	opts = append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithSink(event.NewChannelSink(env.events)),
		WithPoolCreator(env.pools),
		WithMetrics(m),
		WithOperator(env.operator.PublicKey()),
	}, opts...)
	env.ex, err = New(bc.DefaultConfig(), env.store, opts...)
	require.NoError(t, err)

	require.NoError(t, store.Deposit(ctx, env.store, env.creator.PublicKey(), 1_000_000_000))
	require.NoError(t, store.Deposit(ctx, env.store, env.trader.PublicKey(), 200_000_000_000))
	return env
}

func (env *testEnv) balance(t *testing.T, account ledger.Account) uint64 {
	bal, err := env.ex.Balance(context.Background(), account)
	require.NoError(t, err)
	return bal
}

func (env *testEnv) create(t *testing.T) solana.PublicKey {
	mint := solana.NewWallet().PublicKey()
	_, err := env.ex.CreateCurve(context.Background(), env.creator, mint, testMetadata)
	require.NoError(t, err)
	return mint
}

func (env *testEnv) kinds() []event.Kind {
	var kinds []event.Kind
	for {
		select {
		case e := <-env.events:
			kinds = append(kinds, e.Kind)
		default:
			return kinds
		}
	}
}

func counter(t *testing.T, r *prometheus.Registry, name string, labels map[string]string) float64 {
	families, err := r.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if labels[l.GetName()] != l.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ex := env.ex
	trader := env.trader.PublicKey()

	mint := env.create(t)
	vault := bc.DeriveBondingCurvePDA(mint)
	feeSink := ex.FeeSink()
	require.Equal(t, uint64(980_000_000), env.balance(t, ledger.QuoteAccount(env.creator.PublicKey())))
	require.Equal(t, bc.InitializationFee, env.balance(t, ledger.QuoteAccount(feeSink)))
	require.Equal(t, bc.TotalTokenSupply, env.balance(t, ledger.TokenAccount(vault, mint)))

	buy, err := ex.Buy(ctx, env.trader, mint, TradeRequest{Amount: 1_000_000_000})
	require.NoError(t, err)
	require.Equal(t, uint64(34_277_831_558_567), buy.BaseAmount)
	require.Equal(t, uint64(199_000_000_000), env.balance(t, ledger.QuoteAccount(trader)))
	require.Equal(t, buy.BaseAmount, env.balance(t, ledger.TokenAccount(trader, mint)))
	require.Equal(t, uint64(990_000_000), env.balance(t, ledger.QuoteAccount(vault)))
	require.Equal(t, uint64(30_000_000), env.balance(t, ledger.QuoteAccount(feeSink)))

	sell, err := ex.Sell(ctx, env.trader, mint, TradeRequest{Direction: bc.TradeDirectionSell, Amount: 10_000, IsPercentage: true})
	require.NoError(t, err)
	require.Equal(t, uint64(980_100_000), sell.QuoteAmount)
	require.Zero(t, env.balance(t, ledger.TokenAccount(trader, mint)))
	require.Zero(t, env.balance(t, ledger.QuoteAccount(vault)))

	state, err := ex.GetCurve(ctx, mint)
	require.NoError(t, err)
	require.Equal(t, bc.NewCurveState(bc.DefaultConfig(), env.creator.PublicKey(), mint, vault).Reserves(), state.Reserves())

	graduate, err := ex.Trade(ctx, env.trader, mint, TradeRequest{Direction: bc.TradeDirectionBuy, Amount: 100_000_000_000})
	require.NoError(t, err)
	require.True(t, graduate.Completed)
	require.Equal(t, bc.RealTokenReserves, env.balance(t, ledger.TokenAccount(trader, mint)))
	require.Equal(t, uint64(99_000_000_000), env.balance(t, ledger.QuoteAccount(vault)))

	_, err = ex.Buy(ctx, env.trader, mint, TradeRequest{Amount: 1_000_000_000})
	require.ErrorIs(t, err, bc.ErrBondingCurveComplete)
	_, err = ex.Sell(ctx, env.trader, mint, TradeRequest{Amount: 1_000})
	require.ErrorIs(t, err, bc.ErrBondingCurveComplete)

	_, err = ex.ExecuteMigration(ctx, env.operator, mint)
	require.ErrorIs(t, err, bc.ErrMigrationNotPrepared)

	prepared, err := ex.PrepareMigration(ctx, env.operator, mint)
	require.NoError(t, err)
	holding := bc.DeriveMigrationAuthorityPDA(mint)
	require.Equal(t, uint64(93_000_000_000), prepared.QuoteAmount)
	require.Equal(t, bc.TotalTokenSupply-bc.RealTokenReserves, prepared.TokenAmount)
	require.Equal(t, prepared.QuoteAmount, env.balance(t, ledger.QuoteAccount(holding)))
	require.Equal(t, prepared.TokenAmount, env.balance(t, ledger.TokenAccount(holding, mint)))
	require.Zero(t, env.balance(t, ledger.QuoteAccount(vault)))
	require.Zero(t, env.balance(t, ledger.TokenAccount(vault, mint)))
	require.Equal(t, uint64(7_039_900_000), env.balance(t, ledger.QuoteAccount(feeSink)))

	_, err = ex.PrepareMigration(ctx, env.operator, mint)
	require.ErrorIs(t, err, bc.ErrMigrationPrepared)

	migrated, err := ex.ExecuteMigration(ctx, env.operator, mint)
	require.NoError(t, err)
	require.Equal(t, uint64(92_800_000_000), migrated.QuoteAmount)
	require.Equal(t, prepared.TokenAmount, migrated.BaseAmount)
	require.Equal(t, pool.DefaultCreationFee, migrated.CreationFee)
	require.Equal(t, uint64(50_000_000), migrated.Swept)

	p := migrated.Pool
	require.Equal(t, migrated.QuoteAmount, env.balance(t, ledger.TokenAccount(p.QuoteVault, solana.WrappedSol)))
	require.Equal(t, migrated.BaseAmount, env.balance(t, ledger.TokenAccount(p.BaseVault, mint)))
	require.Equal(t, pool.DefaultCreationFee, env.balance(t, ledger.QuoteAccount(p.FeeReceiver)))
	require.Equal(t, uint64(50_000_000), env.balance(t, ledger.QuoteAccount(env.operator.PublicKey())))
	require.Zero(t, env.balance(t, ledger.QuoteAccount(holding)))
	require.Zero(t, env.balance(t, ledger.TokenAccount(holding, solana.WrappedSol)))
	require.Zero(t, env.balance(t, ledger.TokenAccount(holding, mint)))

	state, err = ex.GetCurve(ctx, mint)
	require.NoError(t, err)
	require.Equal(t, bc.StatusMigrated, state.Status)
	require.True(t, state.HasMigrated)

	_, err = ex.ExecuteMigration(ctx, env.operator, mint)
	require.ErrorIs(t, err, bc.ErrBondingCurveMigrated)
	_, err = ex.PrepareMigration(ctx, env.operator, mint)
	require.ErrorIs(t, err, bc.ErrBondingCurveMigrated)

	require.Equal(t, []event.Kind{
		event.KindCurveCreated,
		event.KindTrade,
		event.KindTrade,
		event.KindTrade,
		event.KindMigrationPrepared,
		event.KindPoolMigrated,
	}, env.kinds())

	require.Equal(t, 2.0, counter(t, env.registry, "launchpad_trades_total", map[string]string{"direction": "buy"}))
	require.Equal(t, 1.0, counter(t, env.registry, "launchpad_graduations_total", nil))
	require.Equal(t, 1.0, counter(t, env.registry, "launchpad_migrations_total", map[string]string{"stage": "execute"}))
	require.Equal(t, 7_039_900_000.0, counter(t, env.registry, "launchpad_fees_quote_total", nil))
}

func TestBuyZeroIsNoop(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mint := env.create(t)
	env.kinds()

	result, err := env.ex.Buy(ctx, env.trader, mint, TradeRequest{})
	require.NoError(t, err)
	require.True(t, result.IsNoop())
	require.Equal(t, uint64(200_000_000_000), env.balance(t, ledger.QuoteAccount(env.trader.PublicKey())))
	require.Empty(t, env.kinds())
}

func TestFailedTradeLeavesNoState(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mint := env.create(t)
	poor := auth.Assume(solana.NewWallet().PublicKey())
	require.NoError(t, store.Deposit(ctx, env.store, poor.PublicKey(), 500_000_000))

	before, err := env.ex.GetCurve(ctx, mint)
	require.NoError(t, err)

	_, err = env.ex.Buy(ctx, poor, mint, TradeRequest{Amount: 1_000_000_000})
	require.ErrorIs(t, err, bc.ErrInsufficientFunds)
	require.ErrorIs(t, err, ledger.ErrInsufficientQuote)

	after, err := env.ex.GetCurve(ctx, mint)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Equal(t, uint64(500_000_000), env.balance(t, ledger.QuoteAccount(poor.PublicKey())))
	require.Zero(t, env.balance(t, ledger.TokenAccount(poor.PublicKey(), mint)))
	require.Equal(t, 1.0, counter(t, env.registry, "launchpad_rejections_total", map[string]string{"op": "buy"}))

	_, err = env.ex.Sell(ctx, poor, mint, TradeRequest{Amount: 1})
	require.ErrorIs(t, err, bc.ErrInsufficientTokenBalance)

	_, err = env.ex.Buy(ctx, env.trader, mint, TradeRequest{Amount: 1_000_000_000, MinimumAmountOut: 34_277_831_558_568})
	require.ErrorIs(t, err, bc.ErrSlippageExceeded)
	after, err = env.ex.GetCurve(ctx, mint)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCreateCurveErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mint := env.create(t)
	created := <-env.events
	require.Equal(t, event.KindCurveCreated, created.Kind)
	require.Equal(t, testMetadata, created.CurveCreated.Metadata)

	_, err := env.ex.CreateCurve(ctx, env.creator, mint, testMetadata)
	require.ErrorIs(t, err, store.ErrCurveExists)

	broke := auth.Assume(solana.NewWallet().PublicKey())
	other := solana.NewWallet().PublicKey()
	_, err = env.ex.CreateCurve(ctx, broke, other, testMetadata)
	require.ErrorIs(t, err, bc.ErrInsufficientFunds)
	_, err = env.ex.GetCurve(ctx, other)
	require.ErrorIs(t, err, store.ErrCurveNotFound)

	_, err = env.ex.Buy(ctx, env.trader, other, TradeRequest{Amount: 1})
	require.ErrorIs(t, err, store.ErrCurveNotFound)
}

func TestAuthorization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mint := env.create(t)

	var nobody auth.Caller
	_, err := env.ex.CreateCurve(ctx, nobody, solana.NewWallet().PublicKey(), testMetadata)
	require.ErrorIs(t, err, bc.ErrUnauthorized)
	_, err = env.ex.Buy(ctx, nobody, mint, TradeRequest{Amount: 1})
	require.ErrorIs(t, err, bc.ErrUnauthorized)
	_, err = env.ex.Sell(ctx, nobody, mint, TradeRequest{Amount: 1})
	require.ErrorIs(t, err, bc.ErrUnauthorized)

	_, err = env.ex.Buy(ctx, env.trader, mint, TradeRequest{Amount: 100_000_000_000})
	require.NoError(t, err)

	_, err = env.ex.PrepareMigration(ctx, env.trader, mint)
	require.ErrorIs(t, err, bc.ErrUnauthorized)
	_, err = env.ex.ExecuteMigration(ctx, env.creator, mint)
	require.ErrorIs(t, err, bc.ErrUnauthorized)

	// Without a configured operator nobody may migrate.
	unowned := newTestEnv(t, WithOperator(solana.PublicKey{}))
	_, err = unowned.ex.PrepareMigration(ctx, unowned.operator, unowned.create(t))
	require.ErrorIs(t, err, bc.ErrUnauthorized)

	// Signed callers work like assumed ones.
	wallet := solana.NewWallet()
	signed, err := auth.Sign(wallet.PrivateKey, []byte("buy"))
	require.NoError(t, err)
	require.NoError(t, store.Deposit(ctx, env.store, wallet.PublicKey(), 1_000_000_000))
	_, err = env.ex.CreateCurve(ctx, signed, solana.NewWallet().PublicKey(), testMetadata)
	require.NoError(t, err)
}

type failingCreator struct {
	*pool.Raydium
	quoteErr  error
	createErr error
}

func (c *failingCreator) Quote(ctx context.Context, req pool.Request) (*pool.Pool, error) {
	if c.quoteErr != nil {
		return nil, c.quoteErr
	}
	return c.Raydium.Quote(ctx, req)
}

func (c *failingCreator) CreatePool(ctx context.Context, req pool.Request) (*pool.Pool, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	return c.Raydium.CreatePool(ctx, req)
}

func (env *testEnv) prepared(t *testing.T) (solana.PublicKey, *bc.PrepareMigrationResult) {
	ctx := context.Background()
	mint := env.create(t)
	_, err := env.ex.Buy(ctx, env.trader, mint, TradeRequest{Amount: 100_000_000_000})
	require.NoError(t, err)
	prepared, err := env.ex.PrepareMigration(ctx, env.operator, mint)
	require.NoError(t, err)
	return mint, prepared
}

func (env *testEnv) requireUnmigrated(t *testing.T, mint solana.PublicKey, prepared *bc.PrepareMigrationResult) {
	holding := bc.DeriveMigrationAuthorityPDA(mint)
	require.Equal(t, prepared.QuoteAmount, env.balance(t, ledger.QuoteAccount(holding)))
	require.Equal(t, prepared.TokenAmount, env.balance(t, ledger.TokenAccount(holding, mint)))
	require.Zero(t, env.balance(t, ledger.TokenAccount(holding, solana.WrappedSol)))
	state, err := env.ex.GetCurve(context.Background(), mint)
	require.NoError(t, err)
	require.Equal(t, bc.StatusMigrationPrepared, state.Status)
	require.False(t, state.HasMigrated)
}

func TestExecuteMigrationPoolFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("pool program unavailable")
	creator := &failingCreator{Raydium: pool.NewRaydium(), quoteErr: boom}
	env := newTestEnv(t, WithPoolCreator(creator))
	mint, prepared := env.prepared(t)

	_, err := env.ex.ExecuteMigration(ctx, env.operator, mint)
	require.ErrorIs(t, err, boom)
	env.requireUnmigrated(t, mint, prepared)

	creator.quoteErr = nil
	creator.createErr = boom
	_, err = env.ex.ExecuteMigration(ctx, env.operator, mint)
	require.ErrorIs(t, err, boom)
	env.requireUnmigrated(t, mint, prepared)
	_, ok := creator.Pool(mint, solana.WrappedSol)
	require.False(t, ok)

	creator.createErr = nil
	migrated, err := env.ex.ExecuteMigration(ctx, env.operator, mint)
	require.NoError(t, err)
	require.Equal(t, uint64(92_800_000_000), migrated.QuoteAmount)

	noPools, err := New(bc.DefaultConfig(), env.store, WithOperator(env.operator.PublicKey()))
	require.NoError(t, err)
	_, err = noPools.ExecuteMigration(ctx, env.operator, mint)
	require.ErrorIs(t, err, ErrNoPoolCreator)
}

func TestExecuteMigrationFeeAboveReserve(t *testing.T) {
	ctx := context.Background()
	receiver := solana.NewWallet().PublicKey()
	pools := pool.NewRaydium(pool.WithCreationFee(300_000_000, receiver))
	env := newTestEnv(t, WithPoolCreator(pools))
	mint, prepared := env.prepared(t)

	_, err := env.ex.ExecuteMigration(ctx, env.operator, mint)
	require.ErrorIs(t, err, bc.ErrInsufficientFunds)
	env.requireUnmigrated(t, mint, prepared)
	_, ok := pools.Pool(mint, solana.WrappedSol)
	require.False(t, ok)
	require.Zero(t, env.balance(t, ledger.QuoteAccount(receiver)))

	pools.SetCreationFee(pool.DefaultCreationFee, receiver)
	migrated, err := env.ex.ExecuteMigration(ctx, env.operator, mint)
	require.NoError(t, err)
	require.Equal(t, pool.DefaultCreationFee, migrated.CreationFee)
	require.Equal(t, uint64(50_000_000), migrated.Swept)
	require.Equal(t, pool.DefaultCreationFee, env.balance(t, ledger.QuoteAccount(receiver)))

	got, ok := pools.Pool(mint, solana.WrappedSol)
	require.True(t, ok)
	require.Equal(t, migrated.Pool, got)
	state, err := env.ex.GetCurve(ctx, mint)
	require.NoError(t, err)
	require.Equal(t, bc.StatusMigrated, state.Status)
}

func TestQuotesMatchTrades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mint := env.create(t)

	quote, err := env.ex.BuyQuote(ctx, mint, 1_000_000_000, nil)
	require.NoError(t, err)
	buy, err := env.ex.Buy(ctx, env.trader, mint, TradeRequest{Amount: 1_000_000_000, MinimumAmountOut: quote.MinimumAmountOut})
	require.NoError(t, err)
	require.Equal(t, quote.AmountOut, buy.BaseAmount)
	require.Equal(t, quote.Reserves.AfterSwap, buy.After)

	sellQuote, err := env.ex.SellQuote(ctx, mint, buy.BaseAmount, bc.Bps(100))
	require.NoError(t, err)
	sell, err := env.ex.Sell(ctx, env.trader, mint, TradeRequest{Amount: buy.BaseAmount, ExpectedAmountOut: sellQuote.AmountOut, SlippageBps: bc.Bps(100)})
	require.NoError(t, err)
	require.Equal(t, sellQuote.AmountOut, sell.QuoteAmount)

	price, err := env.ex.MarketPrice(ctx, mint)
	require.NoError(t, err)
	require.Equal(t, uint64(27_958), price)
	mc, err := env.ex.MarketCap(ctx, mint)
	require.NoError(t, err)
	require.Equal(t, uint64(27_958_993_476), mc)
}

func TestConcurrentTrades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	const (
		mints   = 4
		traders = 8
		buys    = 5
	)
	var keys []solana.PublicKey
	for i := 0; i < mints; i++ {
		keys = append(keys, env.create(t))
	}
	callers := make([]auth.Caller, traders)
	for i := range callers {
		callers[i] = auth.Assume(solana.NewWallet().PublicKey())
		require.NoError(t, store.Deposit(ctx, env.store, callers[i].PublicKey(), 100_000_000_000))
	}

	var wg sync.WaitGroup
	errs := make(chan error, mints*traders*buys)
	for _, mint := range keys {
		for _, caller := range callers {
			wg.Add(1)
			go func(mint solana.PublicKey, caller auth.Caller) {
				defer wg.Done()
				for i := 0; i < buys; i++ {
					if _, err := env.ex.Buy(ctx, caller, mint, TradeRequest{Amount: 1_000_000_000, SlippageBps: bc.Bps(10_000)}); err != nil {
						errs <- err
					}
				}
			}(mint, caller)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var sold uint64
	for _, mint := range keys {
		state, err := env.ex.GetCurve(ctx, mint)
		require.NoError(t, err)
		require.Equal(t, uint64(traders*buys*990_000_000), state.RealQuoteReserves)
		require.Equal(t, state.RealQuoteReserves, env.balance(t, ledger.QuoteAccount(state.Authority)))
		require.Equal(t, state.VirtualQuoteReserves, bc.VirtualSolReserves+state.RealQuoteReserves)

		var held uint64
		for _, caller := range callers {
			held += env.balance(t, ledger.TokenAccount(caller.PublicKey(), mint))
		}
		require.Equal(t, bc.RealTokenReserves-state.RealBaseReserves, held)
		sold += held
	}
	require.NotZero(t, sold)
	require.Equal(t, mints*bc.InitializationFee+uint64(mints*traders*buys)*10_000_000, env.balance(t, ledger.QuoteAccount(env.ex.FeeSink())))
}
