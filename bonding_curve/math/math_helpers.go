package math

import (
	"errors"
	"math/big"
)

var (
	// ErrMathOverflow is returned for any overflow, underflow or lossy narrowing.
	ErrMathOverflow = errors.New("math overflow occurred")
	// ErrDivisionByZero is returned when a denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

type Rounding uint8

const (
	RoundingDown Rounding = iota
	RoundingUp
)

const BasisPointMax = uint64(10_000)

var (
	U64Max  = new(big.Int).SetUint64(^uint64(0))
	U128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

func U64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// Sub fails instead of going negative; reserves are unsigned.
func Sub(a, b *big.Int) (*big.Int, error) {
	if b.Cmp(a) > 0 {
		return nil, ErrMathOverflow
	}
	return new(big.Int).Sub(a, b), nil
}

func Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

// Div truncates toward zero.
func Div(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	return new(big.Int).Quo(a, b), nil
}

func MulDiv(x, y, denominator *big.Int, rounding Rounding) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	prod := Mul(x, y)
	if rounding == RoundingUp {
		// (x*y + denominator - 1) / denominator
		numerator := new(big.Int).Add(prod, new(big.Int).Sub(denominator, big.NewInt(1)))
		return new(big.Int).Quo(numerator, denominator), nil
	}
	return new(big.Int).Quo(prod, denominator), nil
}

// ToU64 narrows v back to 64 bits.
func ToU64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, ErrMathOverflow
	}
	return v.Uint64(), nil
}

// ToU128 checks that v fits in an unsigned 128-bit word.
func ToU128(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 || v.Cmp(U128Max) > 0 {
		return nil, ErrMathOverflow
	}
	return v, nil
}

// CheckedAdd64 adds two reserve quantities.
func CheckedAdd64(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, ErrMathOverflow
	}
	return s, nil
}

// CheckedSub64 subtracts two reserve quantities.
func CheckedSub64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}

// MulDiv64 computes a*b/denominator with a 128-bit intermediate.
func MulDiv64(a, b, denominator uint64, rounding Rounding) (uint64, error) {
	out, err := MulDiv(U64(a), U64(b), U64(denominator), rounding)
	if err != nil {
		return 0, err
	}
	return ToU64(out)
}

// ApplyBps returns amount * bps / 10000, rounded down.
func ApplyBps(amount, bps uint64) (uint64, error) {
	return MulDiv64(amount, bps, BasisPointMax, RoundingDown)
}

// MinWithSlippage returns amount * (10000 - slippageBps) / 10000.
func MinWithSlippage(amount, slippageBps uint64) (uint64, error) {
	factor, err := CheckedSub64(BasisPointMax, slippageBps)
	if err != nil {
		return 0, err
	}
	return MulDiv64(amount, factor, BasisPointMax, RoundingDown)
}
