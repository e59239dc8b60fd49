package goals

import (
	"math"
	"strconv"
)

// jsRound rounds half toward positive infinity, so -2.5 becomes -2.
func jsRound(x float64) float64 {
	return math.Floor(x + 0.5)
}

func roundTo(x, step float64) float64 {
	return jsRound(x/step) * step
}

func roundTargets(calories, protein, fat, carb float64) (float64, MacroTargets) {
	return roundTo(calories, 25), MacroTargets{
		ProteinG: roundTo(protein, 5),
		FatG:     roundTo(fat, 5),
		CarbG:    roundTo(carb, 5),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
