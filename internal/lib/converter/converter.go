package converter

import (
	"math"
	"strconv"
)

const lamportsPerSol = 1_000_000_000

// ConvertAmountSolToLamports converts a user-facing SOL amount to lamports.
// Rounding goes through math.Round so 0.1 SOL does not lose a lamport to
// float truncation.
func ConvertAmountSolToLamports(amount float64) int64 {
	return int64(math.Round(amount * lamportsPerSol))
}

func ConvertAmountLamportsToSol(lamports int64) float64 {
	return float64(lamports) / lamportsPerSol
}

func ConvertAmountLamportsToString(lamports int64) string {
	return strconv.FormatFloat(ConvertAmountLamportsToSol(lamports), 'f', -1, 64)
}
