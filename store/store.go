// Package store keeps curve records and ledger balances. Every mutation goes
// through Commit, which validates the whole batch before anything is written.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/ledger"
)

var (
	ErrCurveNotFound = errors.New("curve not found")
	ErrCurveExists   = errors.New("curve already exists")
	ErrClosed        = errors.New("store closed")
)

type Store interface {
	GetCurve(ctx context.Context, mint solana.PublicKey) (*bc.CurveState, error)
	Balance(ctx context.Context, account ledger.Account) (uint64, error)
	// Commit writes the batch atomically. Commits are serialized.
	Commit(ctx context.Context, batch *Batch) error
	Close() error
}

// Batch is one atomic unit of work.
type Batch struct {
	// NewCurves must not exist yet.
	NewCurves []*bc.CurveState
	// Curves must already exist and are overwritten.
	Curves    []*bc.CurveState
	Transfers []ledger.Transfer
	// Precommit runs once the whole batch has been validated. Only the
	// write follows it. An error aborts the batch.
	Precommit func(ctx context.Context) error
}

// backend is the storage a commit runs against. Callers of its methods hold
// the backend's commit lock.
type backend interface {
	curve(mint solana.PublicKey) (*bc.CurveState, error)
	balance(account ledger.Account) (uint64, error)
	write(curves []*bc.CurveState, balances map[ledger.Account]uint64) error
}

func commit(ctx context.Context, b backend, batch *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, c := range batch.NewCurves {
		_, err := b.curve(c.Mint)
		switch {
		case err == nil:
			return fmt.Errorf("%s: %w", c.Mint, ErrCurveExists)
		case !errors.Is(err, ErrCurveNotFound):
			return err
		}
	}
	for _, c := range batch.Curves {
		if _, err := b.curve(c.Mint); err != nil {
			return fmt.Errorf("%s: %w", c.Mint, err)
		}
	}

	balances, err := ledger.Apply(b.balance, batch.Transfers)
	if err != nil {
		return err
	}
	curves := make([]*bc.CurveState, 0, len(batch.NewCurves)+len(batch.Curves))
	for _, c := range batch.NewCurves {
		curves = append(curves, c.Clone())
	}
	for _, c := range batch.Curves {
		curves = append(curves, c.Clone())
	}

	if batch.Precommit != nil {
		if err := batch.Precommit(ctx); err != nil {
			return err
		}
	}
	return b.write(curves, balances)
}

// Deposit credits owner with native quote from outside the system.
func Deposit(ctx context.Context, s Store, owner solana.PublicKey, amount uint64) error {
	return s.Commit(ctx, &Batch{
		Transfers: []ledger.Transfer{ledger.NewMintTo(ledger.NativeQuote, owner, amount)},
	})
}
