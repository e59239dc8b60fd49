// Package meals reconciles estimated meal nutrition with user corrections.
//
// Every nutrient is an estimate/correction pair (models.NutrientValue). The
// functions here never mutate their arguments; each returns an updated copy.
package meals

import (
	"fmt"
	"math"

	"github.com/franckalain/nutritrack/internal/models"
)

// EffectiveValue returns v.Final when set, else v.LLM, else 0.
func EffectiveValue(v models.NutrientValue) float64 {
	return v.Effective()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// ApplyQuantityChange rescales the item's corrected nutrition by
// newQuantity / estimated quantity. Estimates are left untouched.
func ApplyQuantityChange(item models.MealItem, newQuantity float64) (models.MealItem, error) {
	if math.IsNaN(newQuantity) || newQuantity <= 0 {
		return item, fmt.Errorf("item %s: %w", item.ID, ErrInvalidQuantity)
	}
	base := item.Quantity.LLM.Value
	if base == 0 {
		return item, fmt.Errorf("item %s: %w", item.ID, ErrZeroBaseline)
	}

	out := setQuantity(item, newQuantity)
	ratio := newQuantity / base
	n := &out.Nutrition
	n.Calories.Final = models.Float(round2(n.Calories.Estimated() * ratio))
	n.Protein.Final = models.Float(round2(n.Protein.Estimated() * ratio))
	n.Carbs.Final = models.Float(round2(n.Carbs.Estimated() * ratio))
	n.Fat.Final = models.Float(round2(n.Fat.Estimated() * ratio))
	return out, nil
}

// setQuantity records the corrected quantity in the estimated unit.
func setQuantity(item models.MealItem, newQuantity float64) models.MealItem {
	out := item.Clone()
	out.Quantity.Final = &models.Quantity{Value: newQuantity, Unit: item.Quantity.LLM.Unit}
	return out
}

// NutritionOverride carries user-entered values. Nil fields are left alone.
type NutritionOverride struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
}

// Empty reports whether no field is set.
func (o NutritionOverride) Empty() bool {
	return o.Calories == nil && o.Protein == nil && o.Carbs == nil && o.Fat == nil
}

// ApplyNutritionOverride writes each provided field into Final, rounded to
// 2 decimals.
func ApplyNutritionOverride(item models.MealItem, o NutritionOverride) models.MealItem {
	out := item.Clone()
	set := func(dst *models.NutrientValue, v *float64) {
		if v != nil {
			dst.Final = models.Float(round2(*v))
		}
	}
	set(&out.Nutrition.Calories, o.Calories)
	set(&out.Nutrition.Protein, o.Protein)
	set(&out.Nutrition.Carbs, o.Carbs)
	set(&out.Nutrition.Fat, o.Fat)
	return out
}

// RecomputeTotals writes the sum of the items' effective values into the
// meal total's Final fields. The total's estimates are never touched.
func RecomputeTotals(meal models.Meal) models.Meal {
	out := meal.Clone()
	var sum models.Macros
	for _, it := range out.Items {
		m := it.Nutrition.Effective()
		sum.Calories += m.Calories
		sum.Protein += m.Protein
		sum.Carbs += m.Carbs
		sum.Fat += m.Fat
	}
	t := &out.TotalNutrition
	t.Calories.Final = models.Float(round2(sum.Calories))
	t.Protein.Final = models.Float(round2(sum.Protein))
	t.Carbs.Final = models.Float(round2(sum.Carbs))
	t.Fat.Final = models.Float(round2(sum.Fat))
	return out
}
