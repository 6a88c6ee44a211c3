package store

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/ledger"
)

var _ Store = (*Memory)(nil)

type Memory struct {
	mu       sync.RWMutex
	closed   bool
	curves   map[solana.PublicKey]*bc.CurveState
	balances map[ledger.Account]uint64
}

func NewMemory() *Memory {
	return &Memory{
		curves:   make(map[solana.PublicKey]*bc.CurveState),
		balances: make(map[ledger.Account]uint64),
	}
}

func (m *Memory) GetCurve(_ context.Context, mint solana.PublicKey) (*bc.CurveState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.curve(mint)
}

func (m *Memory) Balance(_ context.Context, account ledger.Account) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	return m.balance(account)
}

func (m *Memory) Commit(ctx context.Context, batch *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return commit(ctx, m, batch)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) curve(mint solana.PublicKey) (*bc.CurveState, error) {
	c, ok := m.curves[mint]
	if !ok {
		return nil, ErrCurveNotFound
	}
	return c.Clone(), nil
}

func (m *Memory) balance(account ledger.Account) (uint64, error) {
	return m.balances[account], nil
}

func (m *Memory) write(curves []*bc.CurveState, balances map[ledger.Account]uint64) error {
	for _, c := range curves {
		m.curves[c.Mint] = c
	}
	for a, v := range balances {
		m.balances[a] = v
	}
	return nil
}
