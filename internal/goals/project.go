package goals

import (
	"fmt"
	"math"

	"github.com/franckalain/nutritrack/internal/models"
)

// Project turns a result into the goal fields stored on a user. Negative
// carb targets are stored as 0; the result itself is left as computed.
func Project(res *Result) models.UserGoals {
	return models.UserGoals{
		Goal:          describe(res.Inputs),
		DailyCalories: res.CalorieTarget,
		DailyProtein:  res.Macros.ProteinG,
		DailyCarbs:    math.Max(res.Macros.CarbG, 0),
		DailyFats:     res.Macros.FatG,
	}
}

func describe(in EchoedInputs) string {
	switch {
	case in.PaceKgPerWeek < 0:
		return fmt.Sprintf("Lose %s kg/week", formatNumber(-in.PaceKgPerWeek))
	case in.PaceKgPerWeek > 0:
		return fmt.Sprintf("Gain %s kg/week", formatNumber(in.PaceKgPerWeek))
	default:
		return "Maintain weight"
	}
}

// Calculate validates in, runs the calculator for v and appends the
// validator's warnings to the result.
func Calculate(v Version, in Input) (*Result, error) {
	rep := Validate(in)
	if err := rep.Err(); err != nil {
		return nil, err
	}
	res, err := Compute(v, in)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, rep.Warnings...)
	return res, nil
}
