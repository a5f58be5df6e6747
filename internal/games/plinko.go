package games

import (
	"fmt"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

func validatePlinko(p Params) error {
	tables, ok := config.PlinkoTables[p.Rows]
	if !ok {
		return fmt.Errorf("%w: unsupported row count %d", ErrInvalidParams, p.Rows)
	}

	if _, ok = tables[p.Risk]; !ok {
		return fmt.Errorf("%w: unknown risk level %q", ErrInvalidParams, p.Risk)
	}

	return nil
}

// resolvePlinko walks the ball across the board: one independent binary draw
// per row, right on u >= 0.5. The landing slot is the number of rights.
func resolvePlinko(p Params, digest fair.Digest) *Result {
	draws := digest.Draws(tagRow, p.Rows)

	landed := 0
	for _, u := range draws {
		if u >= 0.5 {
			landed++
		}
	}

	multiplier := config.PlinkoTables[p.Rows][p.Risk][landed]

	return &Result{
		Game:       config.Plinko,
		Multiplier: multiplier,
		Win:        multiplier > 1,
		Outcome: Outcome{
			Landed: &landed,
		},
	}
}
