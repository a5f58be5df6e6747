package config

type CrashConfig struct {
	// RTP is the return-to-player share of the curve; a draw below HouseEdge
	// (see GameConfigs) pins the crash point to 1.00.
	RTP        float64
	MaxCrash   float64
	MinCashout float64
}

var CrashCurveConfig = CrashConfig{
	RTP:        0.99,
	MaxCrash:   1000.00,
	MinCashout: 1.01,
}
