// Package pool is the boundary to the external AMM that receives a graduated
// curve's liquidity.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrPoolExists    = errors.New("pool already exists")
	ErrInvalidAmount = errors.New("pool deposit amounts must be greater than 0")
)

type Request struct {
	BaseMint    solana.PublicKey
	QuoteMint   solana.PublicKey
	BaseAmount  uint64
	QuoteAmount uint64
	// OpenTime is a unix timestamp.
	OpenTime uint64
}

// Pool is a created pool. The caller deposits Request amounts into the
// vaults and pays CreationFee to FeeReceiver.
type Pool struct {
	Address     solana.PublicKey
	AmmConfig   solana.PublicKey
	Authority   solana.PublicKey
	Token0Mint  solana.PublicKey
	Token1Mint  solana.PublicKey
	BaseVault   solana.PublicKey
	QuoteVault  solana.PublicKey
	LpMint      solana.PublicKey
	Observation solana.PublicKey
	CreationFee uint64
	FeeReceiver solana.PublicKey
	OpenTime    uint64
}

// Creator creates the external pool in two steps. Quote returns the pool a
// request would create, creation fee included, and has no side effects.
// CreatePool creates that pool or fails without side effects.
type Creator interface {
	Quote(ctx context.Context, req Request) (*Pool, error)
	CreatePool(ctx context.Context, req Request) (*Pool, error)
}

// Raydium derives constant-product pool accounts locally and remembers the
// pools it created.
type Raydium struct {
	ammConfig   solana.PublicKey
	creationFee uint64
	feeReceiver solana.PublicKey

	mu    sync.Mutex
	pools map[solana.PublicKey]*Pool
}

type Option func(*Raydium)

func WithAmmConfigIndex(index uint16) Option {
	return func(r *Raydium) { r.ammConfig = DeriveAmmConfigAddress(index) }
}

func WithCreationFee(fee uint64, receiver solana.PublicKey) Option {
	return func(r *Raydium) {
		r.creationFee = fee
		r.feeReceiver = receiver
	}
}

func NewRaydium(opts ...Option) *Raydium {
	r := &Raydium{
		ammConfig:   DeriveAmmConfigAddress(DefaultAmmConfigIndex),
		creationFee: DefaultCreationFee,
		feeReceiver: CreatePoolFeeReceiver,
		pools:       make(map[solana.PublicKey]*Pool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetCreationFee changes the fee charged for pools created from now on.
func (r *Raydium) SetCreationFee(fee uint64, receiver solana.PublicKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creationFee = fee
	r.feeReceiver = receiver
}

func (r *Raydium) Quote(ctx context.Context, req Request) (*Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quote(ctx, req)
}

func (r *Raydium) CreatePool(ctx context.Context, req Request) (*Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.quote(ctx, req)
	if err != nil {
		return nil, err
	}
	r.pools[p.Address] = p
	return p, nil
}

// quote is called with r.mu held.
func (r *Raydium) quote(ctx context.Context, req Request) (*Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.BaseAmount == 0 || req.QuoteAmount == 0 {
		return nil, ErrInvalidAmount
	}

	address := DerivePoolAddress(r.ammConfig, req.BaseMint, req.QuoteMint)
	if _, ok := r.pools[address]; ok {
		return nil, fmt.Errorf("%s: %w", address, ErrPoolExists)
	}

	token0, token1 := SortMints(req.BaseMint, req.QuoteMint)
	return &Pool{
		Address:     address,
		AmmConfig:   r.ammConfig,
		Authority:   DeriveAuthority(),
		Token0Mint:  token0,
		Token1Mint:  token1,
		BaseVault:   DeriveVaultAddress(address, req.BaseMint),
		QuoteVault:  DeriveVaultAddress(address, req.QuoteMint),
		LpMint:      DeriveLpMintAddress(address),
		Observation: DeriveObservationAddress(address),
		CreationFee: r.creationFee,
		FeeReceiver: r.feeReceiver,
		OpenTime:    req.OpenTime,
	}, nil
}

// Pool returns the pool for a pair, if one was created.
func (r *Raydium) Pool(mintA, mintB solana.PublicKey) (*Pool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[DerivePoolAddress(r.ammConfig, mintA, mintB)]
	return p, ok
}
