package goals

// ComputeTargetsV2 runs the unified energy model: TDEE = RMR + NEAT (activity
// level) + EAT (workout frequency, duration and MET), goal-adaptive macros,
// then three independent guardrails on calories, protein and fat.
//
// Carbs come from the pre-guardrail target and are not rebalanced when a
// guardrail raises calories or fat.
func ComputeTargetsV2(in Input) (*Result, error) {
	if err := requireFields(in, true); err != nil {
		return nil, err
	}

	sex := *in.SexAtBirth
	weight := *in.WeightKg
	goalType := *in.GoalType
	workouts := valueOr(in.WorkoutsPerWeek, 0)

	activity := *in.ActivityLevel
	if activity == "" {
		activity = defaultActivityLevel
	}
	duration := in.AvgWorkoutDurationMin
	if duration == 0 {
		duration = defaultWorkoutDuration
	}
	intensity := in.AvgWorkoutIntensity
	if intensity == "" {
		intensity = defaultIntensity
	}

	rmr := RMR(sex, *in.AgeYears, *in.HeightCm, weight)
	neat := neatV2(rmr, activity)
	eat := eatV2(weight, workouts, duration, intensity)
	tdee := rmr + neat + eat

	delta := DailyCalorieDelta(*in.PaceKgPerWeek)
	target := tdee + delta

	cfg, ok := macroConfigs[goalType]
	if !ok {
		cfg = macroConfigs[GoalMaintain]
	}
	split := splitMacros(target, weight, cfg.proteinFactor, cfg.fatPct)
	guard := applyGuardrailsV2(target, split.proteinG, split.fatG, weight, sex)
	calories, macros := roundTargets(guard.calorieTarget, guard.proteinG, guard.fatG, split.carbG)

	neatRounded := jsRound(neat)
	eatRounded := jsRound(eat)
	return &Result{
		Version:        V2,
		RMR:            jsRound(rmr),
		NEATKcal:       &neatRounded,
		EATKcal:        &eatRounded,
		TDEE:           jsRound(tdee),
		DailyKcalDelta: jsRound(delta),
		CalorieTarget:  calories,
		Macros:         macros,
		Warnings:       guard.warnings,
		Inputs: EchoedInputs{
			SexAtBirth:            sex,
			AgeYears:              *in.AgeYears,
			HeightCm:              *in.HeightCm,
			WeightKg:              weight,
			GoalType:              goalType,
			PaceKgPerWeek:         *in.PaceKgPerWeek,
			WorkoutsPerWeek:       workouts,
			ActivityLevel:         activity,
			AvgWorkoutDurationMin: duration,
			AvgWorkoutIntensity:   intensity,
		},
	}, nil
}
