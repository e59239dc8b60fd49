package goals

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError carries every problem found with a profile.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return "invalid goal input: " + strings.Join(e.Errors, "; ")
}

// Report is the outcome of Validate.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Err returns the report as a *ValidationError, or nil when valid.
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: r.Errors, Warnings: r.Warnings}
}

type numberRule struct {
	field    string
	value    *float64
	min, max float64
}

// Validate checks ranges and enums without touching in. A goal type whose
// sign disagrees with the pace only warns; calculators always follow the pace.
func Validate(in Input) Report {
	errs := []string{}
	warnings := []string{}

	checkEnum := func(field string, v *string, allowed ...string) {
		if v == nil {
			errs = append(errs, missingField(field))
			return
		}
		for _, a := range allowed {
			if *v == a {
				return
			}
		}
		errs = append(errs, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
	}
	checkNumber := func(r numberRule) {
		if r.value == nil {
			errs = append(errs, missingField(r.field))
			return
		}
		v := *r.value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, r.field+" must be a valid number")
			return
		}
		if v < r.min || v > r.max {
			errs = append(errs, fmt.Sprintf("%s must be between %s and %s", r.field, formatNumber(r.min), formatNumber(r.max)))
		}
	}

	checkEnum("sex_at_birth", in.SexAtBirth, SexMale, SexFemale)
	checkNumber(numberRule{"age_years", in.AgeYears, 13, 80})
	checkNumber(numberRule{"height_cm", in.HeightCm, 120, 220})
	checkNumber(numberRule{"weight_kg", in.WeightKg, 35, 250})
	checkEnum("goal_type", in.GoalType, GoalLose, GoalMaintain, GoalGain)
	checkNumber(numberRule{"pace_kg_per_week", in.PaceKgPerWeek, -1.0, 0.5})

	if v := in.WorkoutsPerWeek; v != nil && (math.IsNaN(*v) || *v < 0 || *v > 14) {
		errs = append(errs, "workouts_per_week must be between 0 and 14")
	}
	if v := in.DesiredWeightKg; v != nil && (math.IsNaN(*v) || *v < 30 || *v > 250) {
		errs = append(errs, "desired_weight_kg must be between 30 and 250")
	}
	if v := in.AppleActiveKcalDay; v != nil && (math.IsNaN(*v) || *v < 0) {
		errs = append(errs, "apple_active_kcal_day must be a non-negative number")
	}

	if in.GoalType != nil && in.PaceKgPerWeek != nil {
		goalSign := goalSign(*in.GoalType)
		paceSign := sign(*in.PaceKgPerWeek)
		if goalSign != 0 && paceSign != 0 && goalSign != paceSign {
			warnings = append(warnings, fmt.Sprintf("Goal type (%s) conflicts with pace (%s kg/week). Using pace for calculations.",
				*in.GoalType, formatNumber(*in.PaceKgPerWeek)))
		}
	}

	return Report{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

func goalSign(goalType string) int {
	switch goalType {
	case GoalLose:
		return -1
	case GoalGain:
		return 1
	default:
		return 0
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
