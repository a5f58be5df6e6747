package config

type PlinkoRisk string

const (
	PlinkoLow    PlinkoRisk = "low"
	PlinkoMedium PlinkoRisk = "medium"
	PlinkoHigh   PlinkoRisk = "high"
)

// PlinkoTables maps row count and risk level to the landing-slot multiplier
// table. Each table has rows+1 entries and is symmetric around the center.
var PlinkoTables = map[int]map[PlinkoRisk][]float64{
	8: {
		PlinkoLow:    {5.6, 2.1, 1.1, 1, 0.5, 1, 1.1, 2.1, 5.6},
		PlinkoMedium: {13, 3, 1.3, 0.7, 0.4, 0.7, 1.3, 3, 13},
		PlinkoHigh:   {29, 4, 1.5, 0.3, 0.2, 0.3, 1.5, 4, 29},
	},
	12: {
		PlinkoLow:    {10, 3, 1.6, 1.4, 1.1, 1, 0.5, 1, 1.1, 1.4, 1.6, 3, 10},
		PlinkoMedium: {33, 11, 4, 2, 1.1, 0.6, 0.3, 0.6, 1.1, 2, 4, 11, 33},
		PlinkoHigh:   {170, 24, 8.1, 2, 0.7, 0.2, 0.2, 0.2, 0.7, 2, 8.1, 24, 170},
	},
	16: {
		PlinkoLow:    {16, 9, 2, 1.4, 1.4, 1.2, 1.1, 1, 0.5, 1, 1.1, 1.2, 1.4, 1.4, 2, 9, 16},
		PlinkoMedium: {110, 41, 10, 5, 3, 1.5, 1, 0.5, 0.3, 0.5, 1, 1.5, 3, 5, 10, 41, 110},
		PlinkoHigh:   {1000, 130, 26, 9, 4, 2, 0.2, 0.2, 0.2, 0.2, 0.2, 2, 4, 9, 26, 130, 1000},
	},
}

var PlinkoRows = []int{8, 12, 16}
