package bonding_curve

import (
	"errors"

	bcmath "github.com/krazyTry/launchpad-go/bonding_curve/math"
)

var (
	ErrInsufficientFunds        = errors.New("insufficient funds for the operation")
	ErrBondingCurveComplete     = errors.New("bonding curve complete")
	ErrBondingCurveNotComplete  = errors.New("bonding curve not complete")
	ErrBondingCurveMigrated     = errors.New("bonding curve has been migrated")
	ErrSlippageExceeded         = errors.New("slippage tolerance exceeded")
	ErrMathOverflow             = bcmath.ErrMathOverflow
	ErrInvalidPercentage        = errors.New("invalid percentage, must be between 0-10000 basis points")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInsufficientTokenBalance = errors.New("insufficient token balance")
	ErrInsufficientReserves     = errors.New("insufficient reserves")

	ErrInvalidSlippage      = errors.New("invalid slippage, must be between 0-10000 basis points")
	ErrMigrationPrepared    = errors.New("bonding curve migration already prepared")
	ErrMigrationNotPrepared = errors.New("bonding curve migration not prepared")
	ErrUnauthorized         = errors.New("caller is not authorized")
	ErrInvalidConfig        = errors.New("invalid curve config")
)
