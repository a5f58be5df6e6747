package config

type Game string

const (
	Coinflip  Game = "coinflip"
	Dice      Game = "dice"
	Crash     Game = "crash"
	Slots     Game = "slots"
	Roulette  Game = "roulette"
	Plinko    Game = "plinko"
	Blackjack Game = "blackjack"
)

var AllGames = []Game{Coinflip, Dice, Crash, Slots, Roulette, Plinko, Blackjack}

func (g Game) Valid() bool {
	for _, game := range AllGames {
		if g == game {
			return true
		}
	}

	return false
}
