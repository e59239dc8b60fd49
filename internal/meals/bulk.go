package meals

import (
	"context"
	"log"
	"strings"

	"github.com/franckalain/nutritrack/internal/models"
)

var mainFoodKeywords = []string{
	"chicken", "paneer", "fish", "mutton", "egg", "tofu", "dal", "lentil",
	"rice", "roti", "naan", "paratha", "bread", "pasta", "noodles", "biryani",
	"curry", "sabzi", "gravy", "meat", "beef", "pork", "lamb", "prawn", "shrimp",
}

// IsMainItem reports whether name contains one of the anchor food keywords.
func IsMainItem(name string) bool {
	name = strings.ToLower(name)
	for _, kw := range mainFoodKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// BulkApply applies updates in order with a single oracle call for every
// rename. All updates are checked before anything runs: one unknown or
// missing item id fails the batch and meal is returned unchanged.
func (r *Reconciler) BulkApply(ctx context.Context, meal models.Meal, updates []ItemUpdate) (models.Meal, error) {
	indexes := make([]int, len(updates))
	for i, u := range updates {
		idx, err := checkUpdate(meal, u)
		if err != nil {
			return meal, err
		}
		indexes[i] = idx
	}

	req := models.BatchRequest{MealName: meal.Name}
	slots := make(map[int]int) // update position -> batch slot
	for i, u := range updates {
		if u.NewName == nil {
			continue
		}
		item := meal.Items[indexes[i]]
		oldName := item.Name.Effective()
		isMain := IsMainItem(oldName) || IsMainItem(*u.NewName)
		if isMain && !req.HasMainChange {
			req.HasMainChange = true
			req.MainItem = &models.MainItemInfo{OldName: oldName, NewName: *u.NewName}
		}
		slots[i] = len(req.Items)
		req.Items = append(req.Items, models.BatchItemRequest{
			OriginalName: oldName,
			NewName:      *u.NewName,
			NewQuantity:  u.NewQuantity,
			Unit:         item.Quantity.LLM.Unit,
			IsMainItem:   isMain,
		})
	}

	var batch *models.BatchEstimate
	if len(req.Items) > 0 {
		var err error
		batch, err = r.est.EstimateBatch(ctx, req)
		if err != nil {
			log.Printf("estimate batch of %d items failed, using fallback: %v", len(req.Items), err)
			batch = nil
		}
	}

	out := meal.Clone()
	for i, u := range updates {
		idx := indexes[i]
		item := out.Items[idx]
		if u.NewName != nil {
			est := fallbackEstimate(*u.NewName)
			if slot := slots[i]; batch != nil && slot < len(batch.Items) {
				est = batch.Items[slot]
			}
			item = replaceItem(item, est, *u.NewName, u.NewQuantity)
			if u.hasOverride() {
				item = ApplyNutritionOverride(item, *u.Nutrition)
			}
		} else {
			var err error
			item, err = applyLocal(item, u)
			if err != nil {
				return meal, err
			}
		}
		out.Items[idx] = item
	}

	out = RecomputeTotals(out)
	if batch != nil && batch.MealNameChanged && batch.MealName != "" {
		out.Name = batch.MealName
	}
	return out, nil
}
