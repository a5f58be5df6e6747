package games

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbtlex/solana-casino/internal/config"
)

func TestPlinkoTablesSymmetric(t *testing.T) {
	t.Parallel()

	for rows, byRisk := range config.PlinkoTables {
		for risk, table := range byRisk {
			require.Len(t, table, rows+1, "rows=%d risk=%s", rows, risk)

			for i := 0; i <= rows/2; i++ {
				assert.Equal(t, table[i], table[rows-i],
					"rows=%d risk=%s slot %d must mirror slot %d", rows, risk, i, rows-i)
			}

			for i, m := range table {
				assert.GreaterOrEqual(t, m, 0.0, "rows=%d risk=%s slot %d", rows, risk, i)
			}
		}
	}
}

func TestResolvePlinkoLanding(t *testing.T) {
	t.Parallel()

	for _, rows := range config.PlinkoRows {
		rows := rows

		t.Run(fmt.Sprintf("Rows%d", rows), func(t *testing.T) {
			t.Parallel()

			for i := 0; i < 200; i++ {
				d := mustDigest(t, "plinko", fmt.Sprintf("r%d-n%d", rows, i))

				res, err := Resolve(config.Plinko, Params{Risk: config.PlinkoMedium, Rows: rows}, d)
				require.NoError(t, err)

				require.NotNil(t, res.Outcome.Landed)

				landed := *res.Outcome.Landed

				assert.GreaterOrEqual(t, landed, 0)
				assert.LessOrEqual(t, landed, rows)

				assert.Equal(t, config.PlinkoTables[rows][config.PlinkoMedium][landed], res.Multiplier)
			}
		})
	}
}

func TestResolvePlinkoCenterBias(t *testing.T) {
	t.Parallel()

	// A fair 16-row walk lands near the center far more often than at the
	// edges.
	center := 0

	const drops = 5000

	for i := 0; i < drops; i++ {
		d := mustDigest(t, "plinko-bias", fmt.Sprintf("n%d", i))

		res, err := Resolve(config.Plinko, Params{Risk: config.PlinkoLow, Rows: 16}, d)
		require.NoError(t, err)

		if l := *res.Outcome.Landed; l >= 6 && l <= 10 {
			center++
		}
	}

	assert.Greater(t, float64(center)/drops, 0.7)
}
