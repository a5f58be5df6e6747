package games

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbtlex/solana-casino/internal/config"
)

func TestShuffleDeckReplayable(t *testing.T) {
	t.Parallel()

	d := mustDigest(t, "bj", "nonce")

	first := shuffleDeck(d)
	second := shuffleDeck(d)

	assert.Equal(t, first, second, "same digest must deal the same deck")

	other := shuffleDeck(mustDigest(t, "bj", "other-nonce"))
	assert.NotEqual(t, first, other)
}

func TestShuffleDeckIsPermutation(t *testing.T) {
	t.Parallel()

	deck := shuffleDeck(mustDigest(t, "bj-perm", "nonce"))

	require.Len(t, deck, 52)

	seen := make(map[Card]bool, 52)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %v", c)

		seen[c] = true
	}

	assert.Len(t, seen, 52)
}

func TestHandTotal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		hand []Card
		want int
	}{
		{
			name: "Natural",
			hand: []Card{{Rank: "A", Suit: "S"}, {Rank: "K", Suit: "H"}},
			want: 21,
		},
		{
			name: "SoftSeventeen",
			hand: []Card{{Rank: "A", Suit: "S"}, {Rank: "6", Suit: "H"}},
			want: 17,
		},
		{
			name: "AceDemotion",
			hand: []Card{{Rank: "A", Suit: "S"}, {Rank: "9", Suit: "H"}, {Rank: "5", Suit: "D"}},
			want: 15,
		},
		{
			name: "DoubleAce",
			hand: []Card{{Rank: "A", Suit: "S"}, {Rank: "A", Suit: "H"}},
			want: 12,
		},
		{
			name: "Bust",
			hand: []Card{{Rank: "K", Suit: "S"}, {Rank: "Q", Suit: "H"}, {Rank: "5", Suit: "D"}},
			want: 25,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, handTotal(tc.hand))
		})
	}
}

func TestResolveBlackjackOutcomes(t *testing.T) {
	t.Parallel()

	table := config.BlackjackTableConfig

	seen := map[string]bool{}

	for i := 0; i < 5000; i++ {
		d := mustDigest(t, "bj-out", fmt.Sprintf("n%d", i))

		res, err := Resolve(config.Blackjack, Params{}, d)
		require.NoError(t, err)

		switch res.Outcome.HandResult {
		case handBlackjack:
			assert.Equal(t, table.NaturalPayout, res.Multiplier)
			assert.Equal(t, 21, res.Outcome.PlayerTotal)
			assert.Len(t, res.Outcome.PlayerHand, 2)
		case handWin:
			assert.Equal(t, table.WinPayout, res.Multiplier)
		case handPush:
			assert.Equal(t, table.PushPayout, res.Multiplier)
			assert.False(t, res.Win)
		case handBust:
			assert.Zero(t, res.Multiplier)
			assert.Greater(t, res.Outcome.PlayerTotal, 21)
		case handLose:
			assert.Zero(t, res.Multiplier)
		default:
			t.Fatalf("unexpected hand result %q", res.Outcome.HandResult)
		}

		seen[res.Outcome.HandResult] = true
	}

	for _, want := range []string{handBlackjack, handWin, handPush, handBust, handLose} {
		assert.True(t, seen[want], "expected %q to occur across 5000 hands", want)
	}
}

func TestResolveBlackjackStandsOnSeventeen(t *testing.T) {
	t.Parallel()

	for i := 0; i < 500; i++ {
		d := mustDigest(t, "bj-stand", fmt.Sprintf("n%d", i))

		res, err := Resolve(config.Blackjack, Params{}, d)
		require.NoError(t, err)

		if res.Outcome.HandResult == handBust || res.Outcome.HandResult == handBlackjack {
			continue
		}

		// A dealer natural ends the hand before the player draws.
		if len(res.Outcome.DealerHand) == 2 && res.Outcome.DealerTotal == 21 {
			continue
		}

		assert.GreaterOrEqual(t, res.Outcome.PlayerTotal, 17)
		assert.LessOrEqual(t, res.Outcome.PlayerTotal, 21)
	}
}
