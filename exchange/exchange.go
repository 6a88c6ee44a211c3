// Package exchange runs curve operations against a store: it reads the
// current record, applies the pure transition from bonding_curve, and
// commits the new record and every balance movement in one batch.
package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/event"
	"github.com/krazyTry/launchpad-go/ledger"
	"github.com/krazyTry/launchpad-go/lockmap"
	"github.com/krazyTry/launchpad-go/metrics"
	"github.com/krazyTry/launchpad-go/pool"
	"github.com/krazyTry/launchpad-go/store"
)

var ErrNoPoolCreator = errors.New("no pool creator configured")

type Exchange struct {
	cfg      bc.Config
	store    store.Store
	log      *zap.Logger
	sink     event.Sink
	pools    pool.Creator
	metrics  *metrics.Metrics
	now      func() time.Time
	operator solana.PublicKey
	feeSink  solana.PublicKey
	locks    *lockmap.Lockmap
}

type Option func(*Exchange)

func WithLogger(log *zap.Logger) Option {
	return func(e *Exchange) { e.log = log }
}

func WithSink(sink event.Sink) Option {
	return func(e *Exchange) { e.sink = sink }
}

func WithPoolCreator(c pool.Creator) Option {
	return func(e *Exchange) { e.pools = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Exchange) { e.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(e *Exchange) { e.now = now }
}

// WithOperator sets the only key allowed to run migrations.
func WithOperator(key solana.PublicKey) Option {
	return func(e *Exchange) { e.operator = key }
}

func WithFeeSink(key solana.PublicKey) Option {
	return func(e *Exchange) { e.feeSink = key }
}

func New(cfg bc.Config, s store.Store, opts ...Option) (*Exchange, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Exchange{
		cfg:     cfg,
		store:   s,
		log:     zap.NewNop(),
		sink:    event.Nop(),
		now:     time.Now,
		feeSink: bc.DeriveGlobalFeeVaultPDA(),
		locks:   lockmap.New(64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Exchange) Config() bc.Config {
	return e.cfg
}

func (e *Exchange) FeeSink() solana.PublicKey {
	return e.feeSink
}

func (e *Exchange) Operator() solana.PublicKey {
	return e.operator
}

// Balance reads a committed ledger balance.
func (e *Exchange) Balance(ctx context.Context, account ledger.Account) (uint64, error) {
	return e.store.Balance(ctx, account)
}

func (e *Exchange) emit(ctx context.Context, ev *event.Event) {
	if err := e.sink.Emit(ctx, ev); err != nil {
		e.log.Warn("event delivery failed",
			zap.String("kind", string(ev.Kind)),
			zap.Stringer("id", ev.ID),
			zap.Error(err),
		)
	}
}

func (e *Exchange) reject(op string, mint solana.PublicKey, err error) error {
	e.metrics.Reject(op)
	e.log.Debug("rejected",
		zap.String("op", op),
		zap.Stringer("mint", mint),
		zap.Error(err),
	)
	return err
}

// ledgerError ties a ledger failure to the matching curve error.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientQuote):
		return errors.Join(bc.ErrInsufficientFunds, err)
	case errors.Is(err, ledger.ErrInsufficientTokens):
		return errors.Join(bc.ErrInsufficientTokenBalance, err)
	case errors.Is(err, ledger.ErrUnauthorized):
		return errors.Join(bc.ErrUnauthorized, err)
	case errors.Is(err, ledger.ErrOverflow):
		return errors.Join(bc.ErrMathOverflow, err)
	}
	return err
}

// curve reads the record for mint. The caller holds the mint lock.
func (e *Exchange) curve(ctx context.Context, mint solana.PublicKey) (*bc.CurveState, error) {
	state, err := e.store.GetCurve(ctx, mint)
	if err != nil {
		return nil, err
	}
	return state, nil
}
