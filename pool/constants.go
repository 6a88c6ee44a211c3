package pool

import "github.com/gagliardetto/solana-go"

var (
	RaydiumCPProgramID = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	// CreatePoolFeeReceiver collects the pool creation fee.
	CreatePoolFeeReceiver = solana.MustPublicKeyFromBase58("DNXgeM9EiiaAbaWvwjHj9fQQLAX5ZsfHyvmYUNRAdNC8")
)

const (
	DefaultAmmConfigIndex = uint16(0)
	// DefaultCreationFee is 0.15 SOL.
	DefaultCreationFee = uint64(150_000_000)
)
