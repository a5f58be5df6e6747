package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbtlex/solana-casino/internal/config"
)

func TestCrashPointHouseEdgeRegion(t *testing.T) {
	t.Parallel()

	edge := config.GameConfigs[config.Crash].HouseEdge

	for _, u := range []float64{0, edge / 2, edge * 0.999} {
		assert.Equal(t, 1.00, CrashPoint(u), "draws below the house edge must bust instantly")
	}
}

func TestCrashPointMonotonic(t *testing.T) {
	t.Parallel()

	edge := config.GameConfigs[config.Crash].HouseEdge

	prev := 0.0

	for i := 0; i < 10_000; i++ {
		u := edge + (1-edge)*float64(i)/10_000

		point := CrashPoint(u)

		assert.GreaterOrEqual(t, point, prev, "crash curve must be monotone non-decreasing at u=%f", u)
		assert.GreaterOrEqual(t, point, 1.00)
		assert.LessOrEqual(t, point, config.CrashCurveConfig.MaxCrash)

		prev = point
	}
}

func TestCrashPointCeiling(t *testing.T) {
	t.Parallel()

	assert.Equal(t, config.CrashCurveConfig.MaxCrash, CrashPoint(0.9999999))
}

func TestResolveCrashCashout(t *testing.T) {
	t.Parallel()

	digest := mustDigest(t, "crash-w", "nonce")

	point := CrashPoint(digest.Uniform("outcome", 0))

	below, err := Resolve(config.Crash, Params{Cashout: point}, digest)
	require.NoError(t, err)

	assert.True(t, below.Win, "cashing out exactly at the crash point pays")
	assert.Equal(t, point, below.Multiplier)

	above, err := Resolve(config.Crash, Params{Cashout: point + 0.01}, digest)
	require.NoError(t, err)

	assert.False(t, above.Win)
	assert.Zero(t, above.Multiplier)
	assert.Equal(t, point, *above.Outcome.CrashPoint)
}
