package config

type RouletteBetType string

const (
	RouletteStraight RouletteBetType = "straight"
	RouletteRed      RouletteBetType = "red"
	RouletteBlack    RouletteBetType = "black"
	RouletteOdd      RouletteBetType = "odd"
	RouletteEven     RouletteBetType = "even"
	RouletteLow      RouletteBetType = "low"  // 1-18
	RouletteHigh     RouletteBetType = "high" // 19-36
)

type RouletteConfig struct {
	Pockets int
	// Payouts are total return per unit stake, not net winnings.
	Payouts    map[RouletteBetType]float64
	RedNumbers map[int]bool
}

var RouletteWheelConfig = RouletteConfig{
	Pockets: 37,
	Payouts: map[RouletteBetType]float64{
		RouletteStraight: 36,
		RouletteRed:      2,
		RouletteBlack:    2,
		RouletteOdd:      2,
		RouletteEven:     2,
		RouletteLow:      2,
		RouletteHigh:     2,
	},
	RedNumbers: map[int]bool{
		1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
		14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
		25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
	},
}
