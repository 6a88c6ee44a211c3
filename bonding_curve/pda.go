package bonding_curve

import (
	"github.com/gagliardetto/solana-go"
)

var seed = struct {
	BondingCurve       []byte
	MintAuthority      []byte
	GlobalFeeVault     []byte
	MigrationAuthority []byte
}{
	BondingCurve:       []byte("bonding_curve"),
	MintAuthority:      []byte("mint_authority"),
	GlobalFeeVault:     []byte("global_fee_vault"),
	MigrationAuthority: []byte("migration_authority"),
}

// DeriveBondingCurvePDA is the curve's own account; it owns the curve vault.
func DeriveBondingCurvePDA(mint solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.BondingCurve, mint.Bytes()}, ProgramID)
	return pub
}

func DeriveMintAuthorityPDA() solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.MintAuthority}, ProgramID)
	return pub
}

func DeriveGlobalFeeVaultPDA() solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.GlobalFeeVault}, ProgramID)
	return pub
}

// DeriveMigrationAuthorityPDA holds a graduated curve's liquidity between
// PrepareMigration and ExecuteMigration.
func DeriveMigrationAuthorityPDA(mint solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.MigrationAuthority, mint.Bytes()}, ProgramID)
	return pub
}
