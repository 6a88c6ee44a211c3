package store

import (
	"context"
	stdbinary "encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/gagliardetto/solana-go"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/ledger"
)

var _ Store = (*Pebble)(nil)

const (
	curvePrefix   = "curve/"
	balancePrefix = "bal/"
)

type PebbleOptions struct {
	// FS overrides the filesystem, vfs.NewMem() in tests.
	FS vfs.FS
	// Sync makes every commit durable before it returns.
	Sync bool
}

// Pebble stores borsh-encoded curve records and little-endian balances.
type Pebble struct {
	mu     sync.RWMutex
	closed bool
	db     *pebble.DB
	sync   bool
}

func OpenPebble(path string, opts PebbleOptions) (*Pebble, error) {
	popts := &pebble.Options{}
	if opts.FS != nil {
		popts.FS = opts.FS
	}
	db, err := pebble.Open(path, popts)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %q: %w", path, err)
	}
	return &Pebble{db: db, sync: opts.Sync}, nil
}

func curveKey(mint solana.PublicKey) []byte {
	return []byte(curvePrefix + mint.String())
}

func balanceKey(account ledger.Account) []byte {
	return []byte(balancePrefix + account.Owner.String() + "/" + account.Mint.String())
}

func (p *Pebble) get(key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte{}, value...), nil
}

func (p *Pebble) GetCurve(_ context.Context, mint solana.PublicKey) (*bc.CurveState, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}
	return p.curve(mint)
}

func (p *Pebble) Balance(_ context.Context, account ledger.Account) (uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return 0, ErrClosed
	}
	return p.balance(account)
}

func (p *Pebble) Commit(ctx context.Context, batch *Batch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return commit(ctx, p, batch)
}

// Close is idempotent.
func (p *Pebble) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}

func (p *Pebble) curve(mint solana.PublicKey) (*bc.CurveState, error) {
	data, err := p.get(curveKey(mint))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrCurveNotFound
	}
	if err != nil {
		return nil, err
	}
	return bc.ParseCurveState(data)
}

func (p *Pebble) balance(account ledger.Account) (uint64, error) {
	data, err := p.get(balanceKey(account))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt balance for %s: %d bytes", account, len(data))
	}
	return stdbinary.LittleEndian.Uint64(data), nil
}

func (p *Pebble) write(curves []*bc.CurveState, balances map[ledger.Account]uint64) error {
	b := p.db.NewBatch()
	defer b.Close()

	for _, c := range curves {
		data, err := bc.EncodeCurveState(c)
		if err != nil {
			return err
		}
		if err := b.Set(curveKey(c.Mint), data, nil); err != nil {
			return err
		}
	}
	for a, v := range balances {
		var buf [8]byte
		stdbinary.LittleEndian.PutUint64(buf[:], v)
		if err := b.Set(balanceKey(a), buf[:], nil); err != nil {
			return err
		}
	}

	opts := pebble.NoSync
	if p.sync {
		opts = pebble.Sync
	}
	return b.Commit(opts)
}
