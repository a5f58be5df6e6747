package fair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDeterministic(t *testing.T) {
	t.Parallel()

	m := Material{
		Blockhash: "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLXXDLdNljGXk",
		Slot:      246813579,
		WagerID:   "w1",
		Nonce:     "a1b2c3",
		EscrowRef: "5VERYrealSig",
	}

	first, err := Derive(m)
	require.NoError(t, err)

	second, err := Derive(m)
	require.NoError(t, err)

	assert.Equal(t, first, second, "derive must be byte-identical across invocations")
	assert.Equal(t, first.Hex(), second.Hex())
}

func TestDeriveDistinctMaterial(t *testing.T) {
	t.Parallel()

	base := Material{
		Blockhash: "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLXXDLdNljGXk",
		Slot:      246813579,
		WagerID:   "w1",
		Nonce:     "a1b2c3",
	}

	cases := []struct {
		name   string
		mutate func(m Material) Material
	}{
		{
			name: "Nonce",
			mutate: func(m Material) Material {
				m.Nonce = "ffffff"
				return m
			},
		},
		{
			name: "WagerID",
			mutate: func(m Material) Material {
				m.WagerID = "w2"
				return m
			},
		},
		{
			name: "Slot",
			mutate: func(m Material) Material {
				m.Slot++
				return m
			},
		},
		{
			name: "EscrowRef",
			mutate: func(m Material) Material {
				m.EscrowRef = "otherSig"
				return m
			},
		},
	}

	baseDigest, err := Derive(base)
	require.NoError(t, err)

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Derive(tc.mutate(base))
			require.NoError(t, err)

			assert.NotEqual(t, baseDigest, got)
		})
	}
}

func TestDeriveIncompleteMaterial(t *testing.T) {
	t.Parallel()

	_, err := Derive(Material{WagerID: "w1", Nonce: "a1b2c3"})
	assert.ErrorIs(t, err, ErrIncompleteMaterial)

	_, err = Derive(Material{Blockhash: "hash", Nonce: "a1b2c3"})
	assert.ErrorIs(t, err, ErrIncompleteMaterial)
}

func TestUniformRangeAndIndependence(t *testing.T) {
	t.Parallel()

	d, err := Derive(Material{
		Blockhash: "hash",
		Slot:      1,
		WagerID:   "w1",
		Nonce:     "n",
	})
	require.NoError(t, err)

	seen := make(map[float64]bool)

	for i := 0; i < 1000; i++ {
		u := d.Uniform("outcome", i)

		require.GreaterOrEqual(t, u, 0.0)
		require.Less(t, u, 1.0)

		seen[u] = true
	}

	// 53-bit draws colliding over 1000 indices would indicate the index is
	// not actually feeding the HMAC.
	assert.Len(t, seen, 1000)

	assert.NotEqual(t, d.Uniform("outcome", 0), d.Uniform("shuffle", 0),
		"distinct domain tags must yield independent draws")
}

func TestDrawsMatchesUniform(t *testing.T) {
	t.Parallel()

	d, err := Derive(Material{Blockhash: "hash", Slot: 1, WagerID: "w1", Nonce: "n"})
	require.NoError(t, err)

	draws := d.Draws("reel", 3)

	require.Len(t, draws, 3)

	for i, u := range draws {
		assert.Equal(t, d.Uniform("reel", i), u)
	}
}

func TestUniformDistribution(t *testing.T) {
	t.Parallel()

	d, err := Derive(Material{Blockhash: "hash", Slot: 7, WagerID: "dist", Nonce: "n"})
	require.NoError(t, err)

	const n = 100_000

	wins := 0

	for i := 0; i < n; i++ {
		if d.Uniform("dice", i) < 0.5 {
			wins++
		}
	}

	rate := float64(wins) / n

	assert.GreaterOrEqual(t, rate, 0.49)
	assert.LessOrEqual(t, rate, 0.51)
}
