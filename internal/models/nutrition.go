package models

// NutrientValue pairs the oracle's estimate with the user's correction.
// Final stays nil until a correction or a replacement happens.
type NutrientValue struct {
	LLM   *float64 `json:"llm"`
	Final *float64 `json:"final"`
}

// Effective returns Final when set, else LLM, else 0.
func (v NutrientValue) Effective() float64 {
	if v.Final != nil {
		return *v.Final
	}
	if v.LLM != nil {
		return *v.LLM
	}
	return 0
}

// Estimated returns the LLM value, treating a missing estimate as 0.
func (v NutrientValue) Estimated() float64 {
	if v.LLM != nil {
		return *v.LLM
	}
	return 0
}

// Estimate builds a value with only the LLM side populated.
func Estimate(v float64) NutrientValue {
	return NutrientValue{LLM: Float(v)}
}

func (v NutrientValue) clone() NutrientValue {
	return NutrientValue{LLM: cloneFloat(v.LLM), Final: cloneFloat(v.Final)}
}

// Nutrition holds the four tracked macronutrient pairs.
type Nutrition struct {
	Calories NutrientValue `json:"calories"`
	Protein  NutrientValue `json:"protein"`
	Carbs    NutrientValue `json:"carbs"`
	Fat      NutrientValue `json:"fat"`
}

// Clone returns a deep copy.
func (n Nutrition) Clone() Nutrition {
	return Nutrition{
		Calories: n.Calories.clone(),
		Protein:  n.Protein.clone(),
		Carbs:    n.Carbs.clone(),
		Fat:      n.Fat.clone(),
	}
}

// Macros is a plain set of macronutrient amounts
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"` // grams
	Carbs    float64 `json:"carbs"`   // grams
	Fat      float64 `json:"fat"`     // grams
}

// Effective resolves every pair of n.
func (n Nutrition) Effective() Macros {
	return Macros{
		Calories: n.Calories.Effective(),
		Protein:  n.Protein.Effective(),
		Carbs:    n.Carbs.Effective(),
		Fat:      n.Fat.Effective(),
	}
}

// EstimatedNutrition wraps plain macros as LLM-only pairs.
func EstimatedNutrition(m Macros) Nutrition {
	return Nutrition{
		Calories: Estimate(m.Calories),
		Protein:  Estimate(m.Protein),
		Carbs:    Estimate(m.Carbs),
		Fat:      Estimate(m.Fat),
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
