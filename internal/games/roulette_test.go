package games

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbtlex/solana-casino/internal/config"
)

func TestResolveRouletteSingleNumber(t *testing.T) {
	t.Parallel()

	for i := 0; i < 500; i++ {
		d := mustDigest(t, "roulette", fmt.Sprintf("n%d", i))

		res, err := Resolve(config.Roulette, Params{Bet: config.RouletteRed}, d)
		require.NoError(t, err)

		require.NotNil(t, res.Outcome.Number)

		n := *res.Outcome.Number

		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, 36)
	}
}

func TestResolveRouletteStraightPayout(t *testing.T) {
	t.Parallel()

	// Find a digest, read off its winning number, then bet straight on it.
	d := mustDigest(t, "roulette-straight", "nonce")

	probe, err := Resolve(config.Roulette, Params{Bet: config.RouletteRed}, d)
	require.NoError(t, err)

	winning := *probe.Outcome.Number

	hit, err := Resolve(config.Roulette, Params{Bet: config.RouletteStraight, Number: winning}, d)
	require.NoError(t, err)

	assert.True(t, hit.Win)
	assert.Equal(t, 36.0, hit.Multiplier, "straight-up total return on unit stake is exactly 36")

	miss, err := Resolve(config.Roulette, Params{Bet: config.RouletteStraight, Number: (winning + 1) % 37}, d)
	require.NoError(t, err)

	assert.False(t, miss.Win)
	assert.Zero(t, miss.Multiplier)
}

func TestRouletteBetWins(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		bet    config.RouletteBetType
		target int
		n      int
		want   bool
	}{
		{name: "StraightHit", bet: config.RouletteStraight, target: 17, n: 17, want: true},
		{name: "StraightMiss", bet: config.RouletteStraight, target: 17, n: 18},
		{name: "RedOnRed", bet: config.RouletteRed, n: 32, want: true},
		{name: "RedOnBlack", bet: config.RouletteRed, n: 33},
		{name: "BlackOnBlack", bet: config.RouletteBlack, n: 33, want: true},
		{name: "ZeroLosesRed", bet: config.RouletteRed, n: 0},
		{name: "ZeroLosesEven", bet: config.RouletteEven, n: 0},
		{name: "ZeroLosesLow", bet: config.RouletteLow, n: 0},
		{name: "OddHit", bet: config.RouletteOdd, n: 7, want: true},
		{name: "EvenHit", bet: config.RouletteEven, n: 8, want: true},
		{name: "LowBoundary", bet: config.RouletteLow, n: 18, want: true},
		{name: "HighBoundary", bet: config.RouletteHigh, n: 19, want: true},
		{name: "HighMiss", bet: config.RouletteHigh, n: 18},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, rouletteBetWins(tc.bet, tc.target, tc.n))
		})
	}
}
