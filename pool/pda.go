package pool

import (
	"bytes"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// SortMints orders a pair the way the pool program requires: token 0 has the
// smaller key.
func SortMints(a, b solana.PublicKey) (token0, token1 solana.PublicKey) {
	if bytes.Compare(a.Bytes(), b.Bytes()) < 0 {
		return a, b
	}
	return b, a
}

func DeriveAmmConfigAddress(index uint16) solana.PublicKey {
	indexBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(indexBytes, index)
	pub, _, _ := solana.FindProgramAddress([][]byte{[]byte("amm_config"), indexBytes}, RaydiumCPProgramID)
	return pub
}

func DeriveAuthority() solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{[]byte("vault_and_lp_mint_auth_seed")}, RaydiumCPProgramID)
	return pub
}

func DerivePoolAddress(ammConfig, mintA, mintB solana.PublicKey) solana.PublicKey {
	token0, token1 := SortMints(mintA, mintB)
	pub, _, _ := solana.FindProgramAddress([][]byte{
		[]byte("pool"),
		ammConfig.Bytes(),
		token0.Bytes(),
		token1.Bytes(),
	}, RaydiumCPProgramID)
	return pub
}

func DeriveVaultAddress(pool, mint solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{[]byte("pool_vault"), pool.Bytes(), mint.Bytes()}, RaydiumCPProgramID)
	return pub
}

func DeriveLpMintAddress(pool solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{[]byte("pool_lp_mint"), pool.Bytes()}, RaydiumCPProgramID)
	return pub
}

func DeriveObservationAddress(pool solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{[]byte("observation"), pool.Bytes()}, RaydiumCPProgramID)
	return pub
}
