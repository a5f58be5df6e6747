package games

import (
	"fmt"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

const (
	SideHeads = "heads"
	SideTails = "tails"
)

func validateCoinflip(p Params) error {
	if p.Side != SideHeads && p.Side != SideTails {
		return fmt.Errorf("%w: side must be heads or tails, got %q", ErrInvalidParams, p.Side)
	}

	return nil
}

func resolveCoinflip(p Params, digest fair.Digest) *Result {
	u := digest.Uniform(tagOutcome, 0)

	side := SideHeads
	if u >= 0.5 {
		side = SideTails
	}

	win := side == p.Side

	cfg := config.GameConfigs[config.Coinflip]

	var multiplier float64
	if win {
		multiplier = (1 - cfg.HouseEdge) / 0.5
	}

	return &Result{
		Game:       config.Coinflip,
		Multiplier: multiplier,
		Win:        win,
		Outcome: Outcome{
			Side: side,
		},
	}
}
