package goals

// ComputeTargetsV1 runs the legacy calculator: Mifflin-St Jeor RMR, TDEE from
// device active energy when present (else occupation NEAT + steps + a fixed
// workout estimate), a pace-derived delta, a single safety floor of
// max(sex floor, 0.8 x RMR), and a fixed 1.8 g/kg protein split.
//
// Call Validate first; this only checks that required fields are present.
func ComputeTargetsV1(in Input) (*Result, error) {
	if err := requireFields(in, false); err != nil {
		return nil, err
	}

	sex := *in.SexAtBirth
	weight := *in.WeightKg
	workouts := valueOr(in.WorkoutsPerWeek, 0)
	occupation := in.OccupationLevel
	if occupation == "" {
		occupation = defaultOccupation
	}

	rmr := RMR(sex, *in.AgeYears, *in.HeightCm, weight)
	tdee := computeTDEEV1(rmr, in.AppleActiveKcalDay, workouts, weight, occupation, in.Steps)
	delta := DailyCalorieDelta(*in.PaceKgPerWeek)

	target, floorApplied, warning := applySafetyFloorV1(tdee.tdee+delta, rmr, sex)
	split := splitMacros(target, weight, proteinGPerKgV1, fatMinPctV1)
	calories, macros := roundTargets(target, split.proteinG, split.fatG, split.carbG)

	movement := tdee.movement
	res := &Result{
		Version:         V1,
		RMR:             jsRound(rmr),
		TDEE:            tdee.tdee,
		MovementKcalDay: &movement,
		MethodUsed:      tdee.method,
		DailyKcalDelta:  jsRound(delta),
		CalorieTarget:   calories,
		Macros:          macros,
		Safety:          &Safety{FloorApplied: floorApplied},
		Warnings:        []string{},
		Inputs: EchoedInputs{
			SexAtBirth:         sex,
			AgeYears:           *in.AgeYears,
			HeightCm:           *in.HeightCm,
			WeightKg:           weight,
			GoalType:           *in.GoalType,
			PaceKgPerWeek:      *in.PaceKgPerWeek,
			WorkoutsPerWeek:    workouts,
			AppleActiveKcalDay: in.AppleActiveKcalDay,
		},
	}
	if floorApplied {
		res.Safety.Warning = &warning
		res.Warnings = append(res.Warnings, warning)
	}
	return res, nil
}
