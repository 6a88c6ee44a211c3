package bonding_curve

import (
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the address the curve PDAs are derived under.
var ProgramID = solana.MustPublicKeyFromBase58("rekthB7rsdX7nCT8aQi977noT72AtkqVDWt1Y9VmZFG")

// Genesis constants shared with existing deployments.
const (
	TotalTokenSupply     = uint64(1_000_000_000 * 1_000_000) // 1B tokens, 6 decimals
	VirtualTokenReserves = uint64(1_073_000_000 * 1_000_000) // 1.073B tokens
	VirtualSolReserves   = uint64(30 * 1_000_000_000)        // 30 SOL
	RealTokenReserves    = uint64(793_100_000 * 1_000_000)   // 793.1M tokens
	RealSolReserves      = uint64(0)

	FeeBps             = uint64(100)           // 1%
	MigrationFee       = uint64(6_000_000_000) // 6 SOL
	InitializationFee  = uint64(20_000_000)    // 0.02 SOL
	DefaultSlippageBps = uint64(500)           // 5%

	// PoolCreationReserve stays in the migration holding account to pay
	// pool rent and the pool creation fee.
	PoolCreationReserve = uint64(200_000_000)

	// MarketCapThreshold is used by GraduationRuleMarketCap.
	MarketCapThreshold = uint64(400 * 1_000_000_000) // 400 SOL

	// PriceScale is the fixed-point scale of MarketPrice.
	PriceScale = uint64(1_000_000_000)

	BaseDecimals  = uint8(6)
	QuoteDecimals = uint8(9)
)
