package decimal_math

import (
	"github.com/shopspring/decimal"

	bcmath "github.com/krazyTry/launchpad-go/bonding_curve/math"
)

// ToUIAmount converts raw units into whole units with the given decimals.
func ToUIAmount(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(amount).Shift(-int32(decimals))
}

// FromUIAmount converts whole units into raw units, truncating dust.
// Negative amounts and amounts past the u64 range fail with ErrMathOverflow.
func FromUIAmount(amount decimal.Decimal, decimals uint8) (uint64, error) {
	return bcmath.ToU64(amount.Shift(int32(decimals)).Truncate(0).BigInt())
}

// ToUIPrice is quote whole units per base whole unit for reserves
// quoteReserve/baseReserve held in raw units.
func ToUIPrice(quoteReserve, baseReserve uint64, quoteDecimals, baseDecimals uint8) decimal.Decimal {
	if baseReserve == 0 {
		return decimal.Zero
	}
	q := ToUIAmount(quoteReserve, quoteDecimals)
	b := ToUIAmount(baseReserve, baseDecimals)
	return q.DivRound(b, 18)
}
