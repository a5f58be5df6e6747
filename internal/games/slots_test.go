package games

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbtlex/solana-casino/internal/config"
)

func TestSpinReelInversion(t *testing.T) {
	t.Parallel()

	cfg := config.SlotsReelConfig

	cases := []struct {
		name string
		u    float64
		want config.SlotSymbol
	}{
		{name: "FirstSymbol", u: 0, want: config.SymbolLemon},
		{name: "LemonUpperEdge", u: 0.399, want: config.SymbolLemon},
		{name: "CherryLowerEdge", u: 0.4, want: config.SymbolCherry},
		{name: "Bell", u: 0.7, want: config.SymbolBell},
		{name: "StarTail", u: 0.9999, want: config.SymbolStar},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, spinReel(tc.u))
		})
	}

	total := 0
	for _, sc := range cfg.Symbols {
		total += sc.Weight
	}

	assert.Equal(t, cfg.TotalWeight, total, "weight table must sum to the configured total")
}

func TestResolveSlotsReelsIndependent(t *testing.T) {
	t.Parallel()

	// With one draw per reel, three identical reels should be rare; if the
	// reels shared a draw every spin would be three of a kind.
	tripleCount := 0

	const spins = 2000

	for i := 0; i < spins; i++ {
		d := mustDigest(t, "slots", fmt.Sprintf("n%d", i))

		res, err := Resolve(config.Slots, Params{}, d)
		require.NoError(t, err)

		require.Len(t, res.Outcome.Reels, 3)

		if res.Outcome.Reels[0] == res.Outcome.Reels[1] && res.Outcome.Reels[1] == res.Outcome.Reels[2] {
			tripleCount++
		}
	}

	assert.Less(t, tripleCount, spins/2)
}

func TestResolveSlotsPayouts(t *testing.T) {
	t.Parallel()

	found := map[string]bool{}

	for i := 0; i < 50_000 && len(found) < 3; i++ {
		d := mustDigest(t, "slots-pay", fmt.Sprintf("n%d", i))

		res, err := Resolve(config.Slots, Params{}, d)
		require.NoError(t, err)

		reels := res.Outcome.Reels

		switch {
		case reels[0] == reels[1] && reels[1] == reels[2]:
			found["triple"] = true

			assert.Equal(t, config.SlotsReelConfig.Paytable[reels[0]], res.Multiplier)
			assert.Equal(t, reels[0] == config.SlotsReelConfig.JackpotSymbol, res.JackpotHit)
		case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
			found["pair"] = true

			assert.Equal(t, config.SlotsReelConfig.TwoMatchMultiplier, res.Multiplier)
			assert.False(t, res.JackpotHit)
		default:
			found["miss"] = true

			assert.Zero(t, res.Multiplier)
			assert.False(t, res.JackpotHit)
		}
	}

	assert.Equal(t, map[string]bool{"triple": true, "pair": true, "miss": true}, found)
}
