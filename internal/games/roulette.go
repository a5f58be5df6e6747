package games

import (
	"fmt"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

func validateRoulette(p Params) error {
	wheel := config.RouletteWheelConfig

	if _, ok := wheel.Payouts[p.Bet]; !ok {
		return fmt.Errorf("%w: unknown roulette bet %q", ErrInvalidParams, p.Bet)
	}

	if p.Bet == config.RouletteStraight && (p.Number < 0 || p.Number > 36) {
		return fmt.Errorf("%w: straight number %d not in [0, 36]", ErrInvalidParams, p.Number)
	}

	return nil
}

func rouletteColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case config.RouletteWheelConfig.RedNumbers[n]:
		return "red"
	default:
		return "black"
	}
}

func rouletteBetWins(bet config.RouletteBetType, target, n int) bool {
	switch bet {
	case config.RouletteStraight:
		return n == target
	case config.RouletteRed:
		return rouletteColor(n) == "red"
	case config.RouletteBlack:
		return rouletteColor(n) == "black"
	case config.RouletteOdd:
		return n != 0 && n%2 == 1
	case config.RouletteEven:
		return n != 0 && n%2 == 0
	case config.RouletteLow:
		return n >= 1 && n <= 18
	case config.RouletteHigh:
		return n >= 19 && n <= 36
	default:
		return false
	}
}

func resolveRoulette(p Params, digest fair.Digest) *Result {
	wheel := config.RouletteWheelConfig

	u := digest.Uniform(tagOutcome, 0)

	n := int(u * float64(wheel.Pockets))
	if n >= wheel.Pockets {
		n = wheel.Pockets - 1
	}

	win := rouletteBetWins(p.Bet, p.Number, n)

	var multiplier float64
	if win {
		multiplier = wheel.Payouts[p.Bet]
	}

	return &Result{
		Game:       config.Roulette,
		Multiplier: multiplier,
		Win:        win,
		Outcome: Outcome{
			Number: &n,
			Color:  rouletteColor(n),
		},
	}
}
