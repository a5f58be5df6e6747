package games

import (
	"fmt"
	"math"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

func validateCrash(p Params) error {
	curve := config.CrashCurveConfig

	if p.Cashout < curve.MinCashout || p.Cashout > curve.MaxCrash {
		return fmt.Errorf("%w: cashout %.2f not in [%.2f, %.2f]",
			ErrInvalidParams, p.Cashout, curve.MinCashout, curve.MaxCrash)
	}

	return nil
}

// CrashPoint maps one uniform draw to the multiplier the round busts at. The
// curve is monotone non-decreasing in the draw; draws inside the house-edge
// region pin it to 1.00. Exported so auditors can recompute a published
// round from its digest.
func CrashPoint(u float64) float64 {
	cfg := config.GameConfigs[config.Crash]
	curve := config.CrashCurveConfig

	if u < cfg.HouseEdge {
		return 1.00
	}

	point := math.Floor(curve.RTP/(1-u)*100) / 100

	if point < 1.00 {
		point = 1.00
	}

	if point > curve.MaxCrash {
		point = curve.MaxCrash
	}

	return point
}

func resolveCrash(p Params, digest fair.Digest) *Result {
	u := digest.Uniform(tagOutcome, 0)

	point := CrashPoint(u)

	// The auto-cashout target is part of the wager, so the round either paid
	// out at that exact multiplier or busted first.
	win := p.Cashout <= point

	var multiplier float64
	if win {
		multiplier = p.Cashout
	}

	return &Result{
		Game:       config.Crash,
		Multiplier: multiplier,
		Win:        win,
		Outcome: Outcome{
			CrashPoint: &point,
		},
	}
}
