package meals

import (
	"context"
	"fmt"
	"log"

	"github.com/franckalain/nutritrack/internal/models"
)

// Estimator re-queries the estimation oracle for renamed items.
type Estimator interface {
	EstimateItem(ctx context.Context, req models.ItemRequest) (*models.ItemEstimate, error)
	EstimateBatch(ctx context.Context, req models.BatchRequest) (*models.BatchEstimate, error)
}

// Reconciler applies user edits to meals, calling the oracle for renames.
type Reconciler struct {
	est Estimator
}

// NewReconciler returns a Reconciler backed by est.
func NewReconciler(est Estimator) *Reconciler {
	return &Reconciler{est: est}
}

// ItemUpdate is one edit of one item.
type ItemUpdate struct {
	ItemID      string             `json:"itemId"`
	NewQuantity *float64           `json:"newQuantity,omitempty"`
	NewName     *string            `json:"newItem,omitempty"`
	Nutrition   *NutritionOverride `json:"nutrition,omitempty"`
}

func (u ItemUpdate) hasOverride() bool {
	return u.Nutrition != nil && !u.Nutrition.Empty()
}

// fallbackEstimate stands in for a failed oracle call.
func fallbackEstimate(name string) models.ItemEstimate {
	return models.ItemEstimate{
		Name:      name,
		Quantity:  models.Quantity{Value: 1, Unit: "serving"},
		Nutrition: models.Macros{Calories: 100, Protein: 5, Carbs: 15, Fat: 3},
	}
}

// replaceItem gives the item a new identity from est. The oracle's numbers
// become the new estimates and every correction is cleared.
func replaceItem(item models.MealItem, est models.ItemEstimate, newName string, newQuantity *float64) models.MealItem {
	out := item.Clone()
	name := est.Name
	if name == "" {
		name = newName
	}
	out.Name.Final = models.String(name)

	q := est.Quantity
	if newQuantity != nil {
		q.Value = *newQuantity
	}
	out.Quantity.LLM = q
	out.Quantity.Final = nil

	out.Nutrition = models.EstimatedNutrition(est.Nutrition)
	return out
}

// ApplyItemReplacement renames item and re-estimates it. On oracle failure
// the fixed fallback estimate is used and no meal name is suggested. The
// returned string is the oracle's meal name suggestion, or "".
func (r *Reconciler) ApplyItemReplacement(ctx context.Context, item models.MealItem, newName, mealName string, newQuantity *float64) (models.MealItem, string) {
	req := models.ItemRequest{
		NewName:      newName,
		MealName:     mealName,
		PreviousName: item.Name.LLM,
		Unit:         item.Quantity.LLM.Unit,
	}
	est, err := r.est.EstimateItem(ctx, req)
	if err != nil || est == nil {
		log.Printf("estimate item %q failed, using fallback: %v", newName, err)
		return replaceItem(item, fallbackEstimate(newName), newName, newQuantity), ""
	}
	return replaceItem(item, *est, newName, newQuantity), est.UpdatedMealName
}

// ApplyUpdate applies one item edit and recomputes the meal totals.
//
// A rename re-estimates the item; newQuantity then becomes its estimated
// quantity. A quantity change alone rescales nutrition. When nutrition
// values are supplied they win over scaling, but the quantity is still
// recorded.
func (r *Reconciler) ApplyUpdate(ctx context.Context, meal models.Meal, u ItemUpdate) (models.Meal, error) {
	idx, err := checkUpdate(meal, u)
	if err != nil {
		return meal, err
	}

	out := meal.Clone()
	item := out.Items[idx]
	if u.NewName != nil {
		var suggestion string
		item, suggestion = r.ApplyItemReplacement(ctx, item, *u.NewName, out.Name, u.NewQuantity)
		if suggestion != "" {
			out.Name = suggestion
		}
		if u.hasOverride() {
			item = ApplyNutritionOverride(item, *u.Nutrition)
		}
	} else {
		item, err = applyLocal(item, u)
		if err != nil {
			return meal, err
		}
	}
	out.Items[idx] = item
	return RecomputeTotals(out), nil
}

// applyLocal handles updates that need no oracle call.
func applyLocal(item models.MealItem, u ItemUpdate) (models.MealItem, error) {
	switch {
	case u.NewQuantity != nil && u.hasOverride():
		return ApplyNutritionOverride(setQuantity(item, *u.NewQuantity), *u.Nutrition), nil
	case u.NewQuantity != nil:
		return ApplyQuantityChange(item, *u.NewQuantity)
	case u.hasOverride():
		return ApplyNutritionOverride(item, *u.Nutrition), nil
	}
	return item, ErrNoChange
}

// checkUpdate resolves the item and rejects updates that cannot apply.
func checkUpdate(meal models.Meal, u ItemUpdate) (int, error) {
	if u.ItemID == "" {
		return -1, fmt.Errorf("missing itemId: %w", ErrNotFound)
	}
	idx := meal.ItemIndex(u.ItemID)
	if idx < 0 {
		return -1, fmt.Errorf("item %s in meal %s: %w", u.ItemID, meal.ID, ErrNotFound)
	}
	if u.NewName == nil && u.NewQuantity == nil && !u.hasOverride() {
		return -1, fmt.Errorf("item %s: %w", u.ItemID, ErrNoChange)
	}
	if q := u.NewQuantity; q != nil && !(*q > 0) {
		return -1, fmt.Errorf("item %s: %w", u.ItemID, ErrInvalidQuantity)
	}
	if u.NewName == nil && u.NewQuantity != nil && !u.hasOverride() && meal.Items[idx].Quantity.LLM.Value == 0 {
		return -1, fmt.Errorf("item %s: %w", u.ItemID, ErrZeroBaseline)
	}
	return idx, nil
}
