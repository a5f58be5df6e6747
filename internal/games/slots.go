package games

import (
	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

// spinReel picks one symbol by cumulative-weight inversion over the fixed
// weight table.
func spinReel(u float64) config.SlotSymbol {
	cfg := config.SlotsReelConfig

	target := u * float64(cfg.TotalWeight)

	var cumulative float64
	for _, sc := range cfg.Symbols {
		cumulative += float64(sc.Weight)

		if target < cumulative {
			return sc.Symbol
		}
	}

	// Unreachable while the weights sum to TotalWeight; the last symbol is
	// the only safe answer if the table drifts.
	return cfg.Symbols[len(cfg.Symbols)-1].Symbol
}

func resolveSlots(digest fair.Digest) *Result {
	cfg := config.SlotsReelConfig

	// One independent draw per reel.
	draws := digest.Draws(tagReel, cfg.Reels)

	reels := make([]config.SlotSymbol, cfg.Reels)
	for i, u := range draws {
		reels[i] = spinReel(u)
	}

	var multiplier float64

	threeOfAKind := reels[0] == reels[1] && reels[1] == reels[2]

	switch {
	case threeOfAKind:
		multiplier = cfg.Paytable[reels[0]]
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		multiplier = cfg.TwoMatchMultiplier
	}

	jackpot := threeOfAKind && reels[0] == cfg.JackpotSymbol

	return &Result{
		Game:       config.Slots,
		Multiplier: multiplier,
		Win:        multiplier > 1,
		JackpotHit: jackpot,
		Outcome: Outcome{
			Reels: reels,
		},
	}
}
