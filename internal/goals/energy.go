package goals

import (
	"fmt"
	"math"
)

const (
	kcalPerKgWeek          = 7700.0
	proteinGPerKgV1        = 1.8
	fatMinPctV1            = 0.25
	exerciseMETV1          = 6.0
	exerciseSessionMinV1   = 45.0
	stepKcalPerStepPerKg   = 0.04
	occupationFallbackPct  = 0.30
	defaultOccupation      = "mixed"
	defaultActivityLevel   = "active"
	defaultNEATPct         = 0.30
	defaultIntensity       = "moderate"
	defaultMET             = 7.0
	defaultWorkoutDuration = 45.0
	proteinMinGPerKgV2     = 1.4
)

// fatGMinPerKg is a variable so 9*fatGMinPerKg rounds in float64.
var fatGMinPerKg = 0.6

// NEAT share of RMR by occupation (v1). The unrecognised-value fallback is
// occupationFallbackPct, not the "mixed" entry.
var occupationNEATPct = map[string]float64{
	"desk":     0.10,
	"mixed":    0.15,
	"standing": 0.25,
	"labor":    0.35,
}

// NEAT share of RMR by activity level (v2).
var activityNEATPct = map[string]float64{
	"sedentary":   0.10,
	"light":       0.20,
	"active":      0.30,
	"very_active": 0.40,
	"dynamic":     0.30,
}

// MET by workout intensity (v2).
var intensityMET = map[string]float64{
	"low":      3.5,
	"moderate": 7.0,
	"high":     9.5,
}

type macroConfig struct {
	proteinFactor float64
	fatPct        float64
}

// Goal-adaptive macro split (v2). Unknown goal types use maintain.
var macroConfigs = map[string]macroConfig{
	GoalLose:     {proteinFactor: 2.0, fatPct: 0.25},
	GoalMaintain: {proteinFactor: 1.6, fatPct: 0.30},
	GoalGain:     {proteinFactor: 1.8, fatPct: 0.25},
}

// Daily calorie floors by sex (v2, and the absolute part of the v1 floor).
var calorieFloors = map[string]float64{
	SexMale:   1500,
	SexFemale: 1200,
}

// RMR is the Mifflin-St Jeor resting metabolic rate in kcal/day. Any sex
// other than male uses the female constant.
func RMR(sex string, ageYears, heightCm, weightKg float64) float64 {
	if sex == SexMale {
		return 10*weightKg + 6.25*heightCm - 5*ageYears + 5
	}
	return 10*weightKg + 6.25*heightCm - 5*ageYears - 161
}

// DailyCalorieDelta converts a signed weekly pace into a daily kcal delta.
func DailyCalorieDelta(paceKgPerWeek float64) float64 {
	return paceKgPerWeek * kcalPerKgWeek / 7
}

type tdeeV1 struct {
	tdee     float64
	movement float64
	method   string
}

// Methods reported by the v1 TDEE step.
const (
	MethodAppleHealth = "apple_health"
	MethodFallback    = "fallback"
)

func computeTDEEV1(rmr float64, appleActive *float64, workoutsPerWeek, weightKg float64, occupation string, steps float64) tdeeV1 {
	if appleActive != nil {
		movement := *appleActive
		return tdeeV1{
			tdee:     jsRound(rmr + movement),
			movement: jsRound(movement),
			method:   MethodAppleHealth,
		}
	}

	pct, ok := occupationNEATPct[occupation]
	if !ok {
		pct = occupationFallbackPct
	}
	neat := rmr * pct
	stepsKcal := steps * weightKg * stepKcalPerStepPerKg

	exerciseDaily := 0.0
	if workoutsPerWeek > 0 {
		perSession := exerciseMETV1 * weightKg * (exerciseSessionMinV1 / 60)
		exerciseDaily = workoutsPerWeek * perSession / 7
	}

	movement := neat + stepsKcal + exerciseDaily
	return tdeeV1{
		tdee:     jsRound(rmr + movement),
		movement: jsRound(movement),
		method:   MethodFallback,
	}
}

// applySafetyFloorV1 clamps target up to max(absolute floor, 0.8 x RMR).
func applySafetyFloorV1(target, rmr float64, sex string) (float64, bool, string) {
	abs := calorieFloors[SexFemale]
	if sex == SexMale {
		abs = calorieFloors[SexMale]
	}
	floor := math.Max(abs, rmr*0.8)
	if target < floor {
		rounded := jsRound(floor)
		return rounded, true, fmt.Sprintf("Calorie target was below safety floor (%s kcal). Adjusted to maintain health.", formatNumber(rounded))
	}
	return jsRound(target), false, ""
}

type macroSplit struct {
	proteinG float64
	fatG     float64
	carbG    float64
}

// splitMacros derives protein from body weight, fat from the larger of a
// calorie share and a per-kg floor, and carbs from what remains. Carbs are
// not clamped and go negative when protein and fat exceed the target.
func splitMacros(target, weightKg, proteinFactor, fatPct float64) macroSplit {
	protein := proteinFactor * weightKg
	proteinKcal := 4 * protein
	fatKcal := math.Max(fatPct*target, 9*fatGMinPerKg*weightKg)
	carbKcal := target - proteinKcal - fatKcal
	return macroSplit{
		proteinG: jsRound(protein),
		fatG:     jsRound(fatKcal / 9),
		carbG:    jsRound(carbKcal / 4),
	}
}

func neatV2(rmr float64, activityLevel string) float64 {
	pct, ok := activityNEATPct[activityLevel]
	if !ok {
		pct = defaultNEATPct
	}
	return rmr * pct
}

func eatV2(weightKg, workoutsPerWeek, durationMin float64, intensity string) float64 {
	met, ok := intensityMET[intensity]
	if !ok {
		met = defaultMET
	}
	if durationMin == 0 {
		durationMin = defaultWorkoutDuration
	}
	perSession := met * weightKg * (durationMin / 60)
	return workoutsPerWeek * perSession / 7
}

type guardrailResult struct {
	calorieTarget float64
	proteinG      float64
	fatG          float64
	warnings      []string
}

// applyGuardrailsV2 runs three independent floors, each with its own warning.
func applyGuardrailsV2(target, proteinG, fatG, weightKg float64, sex string) guardrailResult {
	out := guardrailResult{calorieTarget: target, proteinG: proteinG, fatG: fatG, warnings: []string{}}

	floor := calorieFloors[SexFemale]
	if sex == SexMale {
		floor = calorieFloors[SexMale]
	}
	if out.calorieTarget < floor {
		out.calorieTarget = floor
		out.warnings = append(out.warnings, fmt.Sprintf("Calorie target adjusted to safety floor (%s kcal)", formatNumber(floor)))
	}

	proteinMin := proteinMinGPerKgV2 * weightKg
	if out.proteinG < proteinMin {
		out.proteinG = proteinMin
		out.warnings = append(out.warnings, fmt.Sprintf("Protein adjusted to minimum (%sg)", formatNumber(jsRound(proteinMin))))
	}

	fatMin := fatGMinPerKg * weightKg
	if out.fatG < fatMin {
		out.fatG = fatMin
		out.warnings = append(out.warnings, fmt.Sprintf("Fat adjusted to minimum (%sg)", formatNumber(jsRound(fatMin))))
	}
	return out
}
