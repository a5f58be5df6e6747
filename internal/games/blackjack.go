package games

import (
	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

var (
	cardRanks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
	cardSuits = []string{"S", "H", "D", "C"}
)

const (
	handBlackjack = "blackjack"
	handWin       = "win"
	handPush      = "push"
	handLose      = "lose"
	handBust      = "bust"
)

func newDeck() []Card {
	deck := make([]Card, 0, 52)

	for _, suit := range cardSuits {
		for _, rank := range cardRanks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}

	return deck
}

// shuffleDeck runs a Fisher-Yates shuffle seeded entirely by the digest: one
// domain-separated draw per swap, 51 swaps for a 52-card deck, so the whole
// deal is replayable from the fairness material.
func shuffleDeck(digest fair.Digest) []Card {
	deck := newDeck()

	for i := len(deck) - 1; i > 0; i-- {
		u := digest.Uniform(tagShuffle, len(deck)-1-i)

		j := int(u * float64(i+1))
		if j > i {
			j = i
		}

		deck[i], deck[j] = deck[j], deck[i]
	}

	return deck
}

func cardValue(rank string) int {
	switch rank {
	case "A":
		return 11
	case "K", "Q", "J", "10":
		return 10
	default:
		return int(rank[0] - '0')
	}
}

// handTotal counts aces as 11 and demotes them to 1 while the hand busts.
func handTotal(hand []Card) int {
	total := 0
	aces := 0

	for _, c := range hand {
		v := cardValue(c.Rank)
		if v == 11 {
			aces++
		}

		total += v
	}

	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}

	return total
}

func isNatural(hand []Card) bool {
	return len(hand) == 2 && handTotal(hand) == 21
}

func resolveBlackjack(digest fair.Digest) *Result {
	table := config.BlackjackTableConfig

	deck := shuffleDeck(digest)
	next := 0

	deal := func() Card {
		c := deck[next]
		next++

		return c
	}

	// Alternating deal, player first, as at a live table.
	player := []Card{deal()}
	dealer := []Card{deal()}
	player = append(player, deal())
	dealer = append(dealer, deal())

	var (
		multiplier float64
		handResult string
	)

	switch {
	case isNatural(player) && isNatural(dealer):
		multiplier = table.PushPayout
		handResult = handPush
	case isNatural(player):
		multiplier = table.NaturalPayout
		handResult = handBlackjack
	case isNatural(dealer):
		handResult = handLose
	default:
		// No mid-hand decisions survive settlement, so both hands play the
		// fixed draw-to-17 strategy.
		for handTotal(player) < table.StandOn {
			player = append(player, deal())
		}

		if handTotal(player) > 21 {
			handResult = handBust

			break
		}

		for handTotal(dealer) < table.StandOn {
			dealer = append(dealer, deal())
		}

		playerTotal := handTotal(player)
		dealerTotal := handTotal(dealer)

		switch {
		case dealerTotal > 21 || playerTotal > dealerTotal:
			multiplier = table.WinPayout
			handResult = handWin
		case playerTotal == dealerTotal:
			multiplier = table.PushPayout
			handResult = handPush
		default:
			handResult = handLose
		}
	}

	return &Result{
		Game:       config.Blackjack,
		Multiplier: multiplier,
		Win:        multiplier > 1,
		Outcome: Outcome{
			PlayerHand:  player,
			DealerHand:  dealer,
			PlayerTotal: handTotal(player),
			DealerTotal: handTotal(dealer),
			HandResult:  handResult,
		},
	}
}
