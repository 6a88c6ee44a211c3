package u128

import (
	"errors"
	"math/big"

	binary "github.com/gagliardetto/binary"
)

var ErrOverflow = errors.New("value overflows Uint128")

// FromBig converts a non-negative integer of at most 128 bits.
func FromBig(i *big.Int) (binary.Uint128, error) {
	if i.Sign() < 0 {
		return binary.Uint128{}, errors.New("value cannot be negative")
	}
	if i.BitLen() > 128 {
		return binary.Uint128{}, ErrOverflow
	}
	out := binary.NewUint128LittleEndian()
	lo := new(big.Int).And(i, new(big.Int).SetUint64(^uint64(0)))
	out.Lo = lo.Uint64()
	out.Hi = new(big.Int).Rsh(i, 64).Uint64()
	return *out, nil
}

// Mul64 is the full 128-bit product of two 64-bit reserves; it cannot overflow.
func Mul64(a, b uint64) binary.Uint128 {
	out, _ := FromBig(new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b)))
	return out
}

func ToBig(u binary.Uint128) *big.Int {
	return u.BigInt()
}
