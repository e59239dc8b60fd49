// Package goals computes daily calorie and macro targets from a biometric
// profile. Two calculators coexist: V1 is the legacy occupation/steps model
// with an optional device-energy path, V2 is the unified NEAT + EAT model with
// goal-adaptive macros. Clients select one by name.
package goals

import "fmt"

// Sex values accepted for sex_at_birth.
const (
	SexMale   = "male"
	SexFemale = "female"
)

// Goal types.
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// Version selects a calculator.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"
)

// ParseVersion maps "", "v1" and "v2" to a Version. The empty string means V1,
// matching the legacy default.
func ParseVersion(s string) (Version, error) {
	switch Version(s) {
	case "", V1:
		return V1, nil
	case V2:
		return V2, nil
	default:
		return "", fmt.Errorf("unsupported goal version %q", s)
	}
}

// Input is the raw profile as received from a client. Pointer fields
// distinguish "absent" from zero so the validator can report missing fields.
type Input struct {
	SexAtBirth         *string  `json:"sex_at_birth"`
	AgeYears           *float64 `json:"age_years"`
	HeightCm           *float64 `json:"height_cm"`
	WeightKg           *float64 `json:"weight_kg"`
	GoalType           *string  `json:"goal_type"`
	PaceKgPerWeek      *float64 `json:"pace_kg_per_week"`
	WorkoutsPerWeek    *float64 `json:"workouts_per_week,omitempty"`
	DesiredWeightKg    *float64 `json:"desired_weight_kg,omitempty"`
	AppleActiveKcalDay *float64 `json:"apple_active_kcal_day,omitempty"`

	// v1 only
	OccupationLevel string  `json:"occupation_level,omitempty"`
	Steps           float64 `json:"steps,omitempty"`

	// v2 only
	ActivityLevel         *string `json:"activity_level,omitempty"`
	AvgWorkoutDurationMin float64 `json:"avg_workout_duration_min,omitempty"`
	AvgWorkoutIntensity   string  `json:"avg_workout_intensity,omitempty"`
}

// EchoedInputs repeats the resolved inputs back in a Result.
type EchoedInputs struct {
	SexAtBirth            string   `json:"sex_at_birth"`
	AgeYears              float64  `json:"age_years"`
	HeightCm              float64  `json:"height_cm"`
	WeightKg              float64  `json:"weight_kg"`
	GoalType              string   `json:"goal_type"`
	PaceKgPerWeek         float64  `json:"pace_kg_per_week"`
	WorkoutsPerWeek       float64  `json:"workouts_per_week"`
	AppleActiveKcalDay    *float64 `json:"apple_active_kcal_day,omitempty"`
	ActivityLevel         string   `json:"activity_level,omitempty"`
	AvgWorkoutDurationMin float64  `json:"avg_workout_duration_min,omitempty"`
	AvgWorkoutIntensity   string   `json:"avg_workout_intensity,omitempty"`
}

// MacroTargets are daily gram targets, each a multiple of 5.
type MacroTargets struct {
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbG    float64 `json:"carb_g"`
}

// Safety reports the v1 safety floor outcome.
type Safety struct {
	FloorApplied bool    `json:"floor_applied"`
	Warning      *string `json:"warning"`
}

// Result is the output of either calculator. Fields that only one version
// produces are pointers and omitted by the other.
type Result struct {
	Version         Version      `json:"version"`
	RMR             float64      `json:"rmr"`
	TDEE            float64      `json:"tdee"`
	MovementKcalDay *float64     `json:"movement_kcal_day,omitempty"`
	MethodUsed      string       `json:"method_used,omitempty"`
	NEATKcal        *float64     `json:"neat_kcal,omitempty"`
	EATKcal         *float64     `json:"eat_kcal,omitempty"`
	DailyKcalDelta  float64      `json:"daily_kcal_delta"`
	CalorieTarget   float64      `json:"calorie_target"`
	Macros          MacroTargets `json:"macros"`
	Safety          *Safety      `json:"safety,omitempty"`
	Warnings        []string     `json:"warnings"`
	Inputs          EchoedInputs `json:"inputs"`
}

// Compute dispatches to the calculator named by v.
func Compute(v Version, in Input) (*Result, error) {
	switch v {
	case V1:
		return ComputeTargetsV1(in)
	case V2:
		return ComputeTargetsV2(in)
	default:
		return nil, fmt.Errorf("unsupported goal version %q", v)
	}
}

func requireFields(in Input, withActivity bool) error {
	var missing []string
	if in.SexAtBirth == nil {
		missing = append(missing, missingField("sex_at_birth"))
	}
	if in.AgeYears == nil {
		missing = append(missing, missingField("age_years"))
	}
	if in.HeightCm == nil {
		missing = append(missing, missingField("height_cm"))
	}
	if in.WeightKg == nil {
		missing = append(missing, missingField("weight_kg"))
	}
	if in.GoalType == nil {
		missing = append(missing, missingField("goal_type"))
	}
	if in.PaceKgPerWeek == nil {
		missing = append(missing, missingField("pace_kg_per_week"))
	}
	if withActivity && in.ActivityLevel == nil {
		missing = append(missing, missingField("activity_level"))
	}
	if len(missing) > 0 {
		return &ValidationError{Errors: missing}
	}
	return nil
}

func missingField(name string) string {
	return "Missing required field: " + name
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
