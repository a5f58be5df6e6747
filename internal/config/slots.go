package config

type SlotSymbol string

const (
	SymbolLemon   SlotSymbol = "LEMON"
	SymbolCherry  SlotSymbol = "CHERRY"
	SymbolBell    SlotSymbol = "BELL"
	SymbolBar     SlotSymbol = "BAR"
	SymbolSeven   SlotSymbol = "SEVEN"
	SymbolDiamond SlotSymbol = "DIAMOND"
	SymbolStar    SlotSymbol = "STAR"
)

type SlotSymbolConfig struct {
	Symbol SlotSymbol
	Weight int
}

type SlotsConfig struct {
	Reels       int
	TotalWeight int
	Symbols     []SlotSymbolConfig
	// Paytable maps a three-of-a-kind symbol to the total return per unit
	// stake. Two matching symbols pay the consolation multiplier.
	Paytable           map[SlotSymbol]float64
	TwoMatchMultiplier float64
	JackpotSymbol      SlotSymbol
}

// Symbol order is fixed; cumulative-weight inversion walks it in this order,
// so reordering entries changes which draws map to which symbol.
var SlotsReelConfig = SlotsConfig{
	Reels:       3,
	TotalWeight: 1000,
	Symbols: []SlotSymbolConfig{
		{Symbol: SymbolLemon, Weight: 400},
		{Symbol: SymbolCherry, Weight: 250},
		{Symbol: SymbolBell, Weight: 150},
		{Symbol: SymbolBar, Weight: 95},
		{Symbol: SymbolSeven, Weight: 70},
		{Symbol: SymbolDiamond, Weight: 25},
		{Symbol: SymbolStar, Weight: 10},
	},
	Paytable: map[SlotSymbol]float64{
		SymbolLemon:   0.5,
		SymbolCherry:  2.0,
		SymbolBell:    5.0,
		SymbolBar:     10.0,
		SymbolSeven:   25.0,
		SymbolDiamond: 100.0,
		SymbolStar:    500.0,
	},
	TwoMatchMultiplier: 0.1,
	JackpotSymbol:      SymbolStar,
}
