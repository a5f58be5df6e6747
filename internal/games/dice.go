package games

import (
	"fmt"
	"math"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

const (
	diceMinWinChance = 0.01
	diceMaxWinChance = 98.0
)

func validateDice(p Params) error {
	if p.WinChance < diceMinWinChance || p.WinChance > diceMaxWinChance {
		return fmt.Errorf("%w: win chance %.2f not in [%.2f, %.2f]",
			ErrInvalidParams, p.WinChance, diceMinWinChance, diceMaxWinChance)
	}

	return nil
}

// resolveDice is a roll-under game: WinChance is a percentage and the wager
// wins iff the roll lands strictly under it.
func resolveDice(p Params, digest fair.Digest) *Result {
	u := digest.Uniform(tagOutcome, 0)

	roll := math.Floor(u*10000) / 100

	win := roll < p.WinChance

	cfg := config.GameConfigs[config.Dice]

	var multiplier float64
	if win {
		multiplier = (1 - cfg.HouseEdge) / (p.WinChance / 100)
	}

	return &Result{
		Game:       config.Dice,
		Multiplier: multiplier,
		Win:        win,
		Outcome: Outcome{
			Roll: &roll,
		},
	}
}
