package config

type BlackjackConfig struct {
	// Multipliers are total return per unit stake.
	NaturalPayout float64
	WinPayout     float64
	PushPayout    float64
	StandOn       int
}

var BlackjackTableConfig = BlackjackConfig{
	NaturalPayout: 2.5,
	WinPayout:     2,
	PushPayout:    1,
	StandOn:       17,
}
