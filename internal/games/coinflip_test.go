package games

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

func TestResolveCoinflipMatchesDraw(t *testing.T) {
	t.Parallel()

	digest := mustDigest(t, "w1", "nonce-w1")

	u := digest.Uniform("outcome", 0)

	wantSide := SideHeads
	if u >= 0.5 {
		wantSide = SideTails
	}

	for _, side := range []string{SideHeads, SideTails} {
		res, err := Resolve(config.Coinflip, Params{Side: side}, digest)
		require.NoError(t, err)

		assert.Equal(t, wantSide, res.Outcome.Side)

		if side == wantSide {
			assert.True(t, res.Win)
			assert.Equal(t, 2.0, res.Multiplier, "winning coinflip pays exactly 2x")
		} else {
			assert.False(t, res.Win)
			assert.Zero(t, res.Multiplier)
		}
	}
}

func TestResolveDiceWinRate(t *testing.T) {
	t.Parallel()

	const n = 100_000

	wins := 0

	for i := 0; i < n; i++ {
		m := fair.Material{
			Blockhash: "statHash",
			Slot:      1,
			WagerID:   fmt.Sprintf("w%d", i),
			Nonce:     "n",
		}

		d, err := fair.Derive(m)
		require.NoError(t, err)

		res, err := Resolve(config.Dice, Params{WinChance: 50}, d)
		require.NoError(t, err)

		if res.Win {
			wins++
		}
	}

	rate := float64(wins) / n

	assert.GreaterOrEqual(t, rate, 0.49)
	assert.LessOrEqual(t, rate, 0.51)
}

func TestResolveDiceMultiplier(t *testing.T) {
	t.Parallel()

	// Scan nonces until both outcomes show up, then check the payout math.
	var sawWin, sawLose bool

	for i := 0; i < 100 && !(sawWin && sawLose); i++ {
		d := mustDigest(t, "dice-mult", fmt.Sprintf("n%d", i))

		res, err := Resolve(config.Dice, Params{WinChance: 25}, d)
		require.NoError(t, err)

		if res.Win {
			sawWin = true

			assert.InDelta(t, (1-0.01)/0.25, res.Multiplier, 1e-9)
			assert.Less(t, *res.Outcome.Roll, 25.0)
		} else {
			sawLose = true

			assert.Zero(t, res.Multiplier)
			assert.GreaterOrEqual(t, *res.Outcome.Roll, 25.0)
		}
	}

	assert.True(t, sawWin, "expected at least one win in 100 rounds")
	assert.True(t, sawLose, "expected at least one loss in 100 rounds")
}
