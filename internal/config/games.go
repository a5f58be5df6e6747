package config

// GameConfig holds the per-game table limits and economics. Amounts are in
// lamports.
type GameConfig struct {
	MinBet      int64
	MaxBet      int64
	HouseEdge   float64
	JackpotRate float64
	JackpotSeed int64
}

var GameConfigs = map[Game]GameConfig{
	Coinflip: {
		MinBet: 10_000_000,    // 0.01 SOL
		MaxBet: 5_000_000_000, // 5 SOL
	},
	Dice: {
		MinBet:    10_000_000,
		MaxBet:    5_000_000_000,
		HouseEdge: 0.01,
	},
	Crash: {
		MinBet:    10_000_000,
		MaxBet:    2_000_000_000,
		HouseEdge: 0.01,
	},
	Slots: {
		MinBet:      10_000_000,
		MaxBet:      1_000_000_000,
		HouseEdge:   0.04,
		JackpotRate: 0.01,
		JackpotSeed: 1_000_000_000, // 1 SOL
	},
	Roulette: {
		MinBet:    10_000_000,
		MaxBet:    2_000_000_000,
		HouseEdge: 0.027,
	},
	Plinko: {
		MinBet:    10_000_000,
		MaxBet:    2_000_000_000,
		HouseEdge: 0.01,
	},
	Blackjack: {
		MinBet:    10_000_000,
		MaxBet:    2_000_000_000,
		HouseEdge: 0.005,
	},
}
