package meals_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/franckalain/nutritrack/internal/meals"
	"github.com/franckalain/nutritrack/internal/models"
)

type fakeEstimator struct {
	item      *models.ItemEstimate
	batch     *models.BatchEstimate
	err       error
	itemReqs  []models.ItemRequest
	batchReqs []models.BatchRequest
}

func (f *fakeEstimator) EstimateItem(_ context.Context, req models.ItemRequest) (*models.ItemEstimate, error) {
	f.itemReqs = append(f.itemReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func (f *fakeEstimator) EstimateBatch(_ context.Context, req models.BatchRequest) (*models.BatchEstimate, error) {
	f.batchReqs = append(f.batchReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

func newItem(id, name string, qty float64, unit string, cal, protein, carbs, fat float64) models.MealItem {
	return models.MealItem{
		ID:        id,
		Name:      models.TextValue{LLM: name},
		Quantity:  models.ItemQuantity{LLM: models.Quantity{Value: qty, Unit: unit}},
		Nutrition: models.EstimatedNutrition(models.Macros{Calories: cal, Protein: protein, Carbs: carbs, Fat: fat}),
	}
}

func testMeal() models.Meal {
	m := models.Meal{
		ID:         "meal-1",
		UserID:     "user-1",
		Name:       "Chicken and Rice",
		CapturedAt: time.Date(2026, 3, 2, 13, 15, 0, 0, time.UTC),
		Items: []models.MealItem{
			newItem("a", "Grilled Chicken", 1, "piece", 200, 30, 0, 8),
			newItem("b", "White Rice", 2, "cups", 400, 8, 90, 1),
			newItem("c", "Salad", 1, "bowl", 50, 2, 10, 2),
		},
	}
	m.TotalNutrition = models.EstimatedNutrition(models.Macros{Calories: 650, Protein: 40, Carbs: 100, Fat: 11})
	return m
}

func TestEffectiveValue(t *testing.T) {
	t.Parallel()
	cases := []struct {
		v    models.NutrientValue
		want float64
	}{
		{models.NutrientValue{LLM: models.Float(10)}, 10},
		{models.NutrientValue{LLM: models.Float(10), Final: models.Float(25)}, 25},
		{models.NutrientValue{}, 0},
		{models.NutrientValue{Final: models.Float(0)}, 0},
	}
	for _, tc := range cases {
		if got := meals.EffectiveValue(tc.v); got != tc.want {
			t.Fatalf("EffectiveValue(%+v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestApplyQuantityChange(t *testing.T) {
	t.Parallel()
	item := newItem("a", "Paratha", 1, "piece", 200, 5, 30, 7.5)

	got, err := meals.ApplyQuantityChange(item, 3)
	if err != nil {
		t.Fatalf("ApplyQuantityChange: %v", err)
	}
	if *got.Nutrition.Calories.Final != 600 || *got.Nutrition.Protein.Final != 15 ||
		*got.Nutrition.Carbs.Final != 90 || *got.Nutrition.Fat.Final != 22.5 {
		t.Fatalf("unexpected scaled nutrition: %+v", got.Nutrition.Effective())
	}
	if got.Quantity.Final == nil || *got.Quantity.Final != (models.Quantity{Value: 3, Unit: "piece"}) {
		t.Fatalf("quantity final = %+v", got.Quantity.Final)
	}
	if *got.Nutrition.Calories.LLM != 200 || got.Quantity.LLM.Value != 1 {
		t.Fatalf("estimates must be preserved: %+v", got)
	}
	if item.Nutrition.Calories.Final != nil || item.Quantity.Final != nil {
		t.Fatalf("input item was mutated")
	}
}

func TestApplyQuantityChangeRounds(t *testing.T) {
	t.Parallel()
	item := newItem("a", "Rice", 3, "cups", 100, 10, 20, 1)
	got, err := meals.ApplyQuantityChange(item, 1)
	if err != nil {
		t.Fatal(err)
	}
	if *got.Nutrition.Calories.Final != 33.33 || *got.Nutrition.Protein.Final != 3.33 || *got.Nutrition.Carbs.Final != 6.67 {
		t.Fatalf("expected 2-decimal rounding, got %+v", got.Nutrition.Effective())
	}
}

func TestApplyQuantityChangeGuards(t *testing.T) {
	t.Parallel()
	zero := newItem("a", "Mystery", 0, "g", 100, 1, 1, 1)
	if _, err := meals.ApplyQuantityChange(zero, 2); !errors.Is(err, meals.ErrZeroBaseline) {
		t.Fatalf("expected ErrZeroBaseline, got %v", err)
	}
	item := newItem("a", "Rice", 1, "cup", 200, 4, 45, 0)
	for _, q := range []float64{0, -1} {
		if _, err := meals.ApplyQuantityChange(item, q); !errors.Is(err, meals.ErrInvalidQuantity) {
			t.Fatalf("quantity %v: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
}

func TestApplyNutritionOverride(t *testing.T) {
	t.Parallel()
	item := newItem("a", "Dal", 1, "bowl", 180, 9, 25, 4)
	item.Nutrition.Fat.Final = models.Float(6)

	got := meals.ApplyNutritionOverride(item, meals.NutritionOverride{Calories: models.Float(210.456)})
	if *got.Nutrition.Calories.Final != 210.46 {
		t.Fatalf("calories final = %v", *got.Nutrition.Calories.Final)
	}
	if got.Nutrition.Protein.Final != nil || *got.Nutrition.Fat.Final != 6 {
		t.Fatalf("unspecified fields must be untouched: %+v", got.Nutrition)
	}
}

func TestRecomputeTotals(t *testing.T) {
	t.Parallel()
	meal := testMeal()
	meal.Items[0].Nutrition.Calories.Final = models.Float(250)

	got := meals.RecomputeTotals(meal)
	want := models.Macros{Calories: 700, Protein: 40, Carbs: 100, Fat: 11}
	if eff := got.TotalNutrition.Effective(); eff != want {
		t.Fatalf("totals = %+v, want %+v", eff, want)
	}
	if *got.TotalNutrition.Calories.LLM != 650 {
		t.Fatalf("total estimate must not change, got %v", *got.TotalNutrition.Calories.LLM)
	}
	again := meals.RecomputeTotals(got)
	if !reflect.DeepEqual(again.TotalNutrition, got.TotalNutrition) {
		t.Fatalf("RecomputeTotals not idempotent: %+v vs %+v", again.TotalNutrition, got.TotalNutrition)
	}
}

func TestApplyItemReplacement(t *testing.T) {
	t.Parallel()
	est := &fakeEstimator{item: &models.ItemEstimate{
		Name:            "Brown Rice",
		Quantity:        models.Quantity{Value: 1, Unit: "cups"},
		Nutrition:       models.Macros{Calories: 215, Protein: 5, Carbs: 45, Fat: 2},
		UpdatedMealName: "Chicken and Brown Rice",
	}}
	r := meals.NewReconciler(est)
	meal := testMeal()
	item := meal.Items[1]
	item.Nutrition.Calories.Final = models.Float(500)
	item.Quantity.Final = &models.Quantity{Value: 3, Unit: "cups"}

	got, suggestion := r.ApplyItemReplacement(context.Background(), item, "brown rice", meal.Name, nil)
	if suggestion != "Chicken and Brown Rice" {
		t.Fatalf("suggestion = %q", suggestion)
	}
	if got.Name.Effective() != "Brown Rice" || got.Name.LLM != "White Rice" {
		t.Fatalf("name = %+v", got.Name)
	}
	if got.Quantity.LLM != (models.Quantity{Value: 1, Unit: "cups"}) || got.Quantity.Final != nil {
		t.Fatalf("quantity = %+v", got.Quantity)
	}
	if got.Nutrition.Calories.Final != nil || *got.Nutrition.Calories.LLM != 215 {
		t.Fatalf("nutrition = %+v", got.Nutrition)
	}
	if len(est.itemReqs) != 1 {
		t.Fatalf("expected one oracle call, got %d", len(est.itemReqs))
	}
	req := est.itemReqs[0]
	if req.NewName != "brown rice" || req.MealName != "Chicken and Rice" || req.PreviousName != "White Rice" || req.Unit != "cups" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestApplyItemReplacementFallback(t *testing.T) {
	t.Parallel()
	r := meals.NewReconciler(&fakeEstimator{err: errors.New("quota exceeded")})
	meal := testMeal()

	got, suggestion := r.ApplyItemReplacement(context.Background(), meal.Items[2], "Soup", meal.Name, nil)
	if suggestion != "" {
		t.Fatalf("fallback must not rename the meal, got %q", suggestion)
	}
	want := models.Macros{Calories: 100, Protein: 5, Carbs: 15, Fat: 3}
	if got.Nutrition.Effective() != want {
		t.Fatalf("fallback nutrition = %+v", got.Nutrition.Effective())
	}
	if got.Quantity.LLM != (models.Quantity{Value: 1, Unit: "serving"}) || got.Name.Effective() != "Soup" {
		t.Fatalf("fallback item = %+v", got)
	}
}

func TestApplyUpdate(t *testing.T) {
	t.Parallel()
	est := &fakeEstimator{item: &models.ItemEstimate{
		Name:      "Fish Curry",
		Quantity:  models.Quantity{Value: 1, Unit: "bowl"},
		Nutrition: models.Macros{Calories: 300, Protein: 25, Carbs: 10, Fat: 15},
	}}
	r := meals.NewReconciler(est)
	meal := testMeal()
	ctx := context.Background()

	scaled, err := r.ApplyUpdate(ctx, meal, meals.ItemUpdate{ItemID: "b", NewQuantity: models.Float(1)})
	if err != nil {
		t.Fatalf("quantity update: %v", err)
	}
	if got := scaled.TotalNutrition.Effective().Calories; got != 450 {
		t.Fatalf("total calories = %v, want 450", got)
	}

	renamed, err := r.ApplyUpdate(ctx, meal, meals.ItemUpdate{ItemID: "a", NewName: models.String("fish curry"), NewQuantity: models.Float(2)})
	if err != nil {
		t.Fatalf("rename update: %v", err)
	}
	if renamed.Items[0].Quantity.LLM.Value != 2 || renamed.Items[0].Quantity.LLM.Unit != "bowl" {
		t.Fatalf("new quantity must become the estimate: %+v", renamed.Items[0].Quantity)
	}
	if renamed.Name != "Chicken and Rice" {
		t.Fatalf("meal name changed without suggestion: %q", renamed.Name)
	}
	if got := renamed.TotalNutrition.Effective().Calories; got != 750 {
		t.Fatalf("total calories = %v, want 750", got)
	}

	both, err := r.ApplyUpdate(ctx, meal, meals.ItemUpdate{
		ItemID:      "c",
		NewQuantity: models.Float(2),
		Nutrition:   &meals.NutritionOverride{Calories: models.Float(80)},
	})
	if err != nil {
		t.Fatalf("override update: %v", err)
	}
	c := both.Items[2]
	if *c.Nutrition.Calories.Final != 80 || c.Nutrition.Protein.Final != nil {
		t.Fatalf("override must skip scaling: %+v", c.Nutrition)
	}
	if c.Quantity.Final == nil || c.Quantity.Final.Value != 2 {
		t.Fatalf("quantity must still be recorded: %+v", c.Quantity)
	}

	if _, err := r.ApplyUpdate(ctx, meal, meals.ItemUpdate{ItemID: "a"}); !errors.Is(err, meals.ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
	if _, err := r.ApplyUpdate(ctx, meal, meals.ItemUpdate{ItemID: "zzz", NewQuantity: models.Float(1)}); !errors.Is(err, meals.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if meal.Items[1].Quantity.Final != nil || meal.TotalNutrition.Calories.Final != nil {
		t.Fatalf("input meal was mutated")
	}
}

func TestIsMainItem(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"Butter CHICKEN":  true,
		"Garlic Naan":     true,
		"Egg bhurji":      true,
		"Mixed Salad":     false,
		"Mango Lassi":     false,
		"Jeera Rice Bowl": true,
	}
	for name, want := range cases {
		if got := meals.IsMainItem(name); got != want {
			t.Fatalf("IsMainItem(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBulkApply(t *testing.T) {
	t.Parallel()
	est := &fakeEstimator{batch: &models.BatchEstimate{
		Items: []models.ItemEstimate{
			{Name: "Paneer Tikka", Quantity: models.Quantity{Value: 6, Unit: "pieces"}, Nutrition: models.Macros{Calories: 320, Protein: 20, Carbs: 8, Fat: 22}},
			{Name: "Cucumber Raita", Quantity: models.Quantity{Value: 1, Unit: "bowl"}, Nutrition: models.Macros{Calories: 90, Protein: 4, Carbs: 8, Fat: 4}},
		},
		MealNameChanged: true,
		MealName:        "Paneer Tikka and Rice",
	}}
	r := meals.NewReconciler(est)
	meal := testMeal()

	got, err := r.BulkApply(context.Background(), meal, []meals.ItemUpdate{
		{ItemID: "a", NewName: models.String("paneer tikka")},
		{ItemID: "b", NewQuantity: models.Float(1)},
		{ItemID: "c", NewName: models.String("raita")},
	})
	if err != nil {
		t.Fatalf("BulkApply: %v", err)
	}
	if len(est.batchReqs) != 1 || len(est.itemReqs) != 0 {
		t.Fatalf("expected exactly one batch call, got %d batch / %d item", len(est.batchReqs), len(est.itemReqs))
	}
	req := est.batchReqs[0]
	if len(req.Items) != 2 || !req.HasMainChange || req.MainItem == nil || req.MainItem.OldName != "Grilled Chicken" {
		t.Fatalf("unexpected batch request %+v", req)
	}
	if !req.Items[0].IsMainItem || req.Items[1].IsMainItem {
		t.Fatalf("main item flags = %v/%v", req.Items[0].IsMainItem, req.Items[1].IsMainItem)
	}
	if got.Name != "Paneer Tikka and Rice" {
		t.Fatalf("meal name = %q", got.Name)
	}
	if got.Items[0].Name.Effective() != "Paneer Tikka" || got.Items[2].Name.Effective() != "Cucumber Raita" {
		t.Fatalf("items not replaced by slot: %q, %q", got.Items[0].Name.Effective(), got.Items[2].Name.Effective())
	}
	want := models.Macros{Calories: 610, Protein: 28, Carbs: 61, Fat: 26.5}
	if eff := got.TotalNutrition.Effective(); eff != want {
		t.Fatalf("totals = %+v, want %+v", eff, want)
	}
}

func TestBulkApplyUnknownItemIsAtomic(t *testing.T) {
	t.Parallel()
	est := &fakeEstimator{batch: &models.BatchEstimate{}}
	r := meals.NewReconciler(est)
	meal := testMeal()
	snapshot := meal.Clone()

	got, err := r.BulkApply(context.Background(), meal, []meals.ItemUpdate{
		{ItemID: "a", NewQuantity: models.Float(2)},
		{ItemID: "missing", NewName: models.String("tofu")},
	})
	if !errors.Is(err, meals.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(est.batchReqs) != 0 {
		t.Fatalf("oracle must not be called on a failed batch")
	}
	if !reflect.DeepEqual(meal, snapshot) || !reflect.DeepEqual(got, snapshot) {
		t.Fatalf("meal mutated by failed batch")
	}

	if _, err := r.BulkApply(context.Background(), meal, []meals.ItemUpdate{{NewQuantity: models.Float(2)}}); !errors.Is(err, meals.ErrNotFound) {
		t.Fatalf("missing itemId: expected ErrNotFound, got %v", err)
	}
}

func TestBulkApplyOracleFailure(t *testing.T) {
	t.Parallel()
	r := meals.NewReconciler(&fakeEstimator{err: errors.New("timeout")})
	meal := testMeal()

	got, err := r.BulkApply(context.Background(), meal, []meals.ItemUpdate{{ItemID: "c", NewName: models.String("Soup")}})
	if err != nil {
		t.Fatalf("oracle failure must degrade, got %v", err)
	}
	if got.Name != meal.Name {
		t.Fatalf("meal name changed on fallback: %q", got.Name)
	}
	if got.Items[2].Nutrition.Effective().Calories != 100 {
		t.Fatalf("expected fallback estimate, got %+v", got.Items[2].Nutrition.Effective())
	}
}

func TestNewMeal(t *testing.T) {
	t.Parallel()
	est := models.MealEstimate{
		MealName: "Dal & Rice",
		Model:    "gemini-1.5-flash",
		Items: []models.ItemEstimate{
			{Name: "Dal", Quantity: models.Quantity{Value: 1, Unit: "bowl"}, Nutrition: models.Macros{Calories: 180, Protein: 9, Carbs: 25, Fat: 4}, Confidence: models.Float(0.9)},
			{Name: "Rice", Quantity: models.Quantity{Value: 1, Unit: "cup"}, Nutrition: models.Macros{Calories: 200, Protein: 4, Carbs: 45, Fat: 0.5}},
		},
	}
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	meal := meals.NewMeal("user-1", est, meals.Capture{CapturedAt: at, PhotoURL: "https://img/1.jpg"})

	if meal.ID == "" || meal.Items[0].ID == "" || meal.Items[0].ID == meal.Items[1].ID {
		t.Fatalf("ids not assigned: %+v", meal)
	}
	if meal.Notes != "AI Analysis: Dal & Rice" || meal.LLMVersion != "1.0" || meal.LLMModel != "gemini-1.5-flash" {
		t.Fatalf("unexpected metadata: %+v", meal)
	}
	want := models.Macros{Calories: 380, Protein: 13, Carbs: 70, Fat: 4.5}
	if meal.TotalNutrition.Effective() != want || meal.TotalNutrition.Calories.Final != nil {
		t.Fatalf("total = %+v", meal.TotalNutrition)
	}
	if len(meal.Photos) != 1 || meal.Photos[0].URL != "https://img/1.jpg" {
		t.Fatalf("photos = %+v", meal.Photos)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()
	meal := meals.RecomputeTotals(testMeal())
	meal.Items[2].Quantity.LLM.Unit = ""
	resp := meals.Format(meal)

	if resp.MealType != "Lunch" || resp.Version != "1.0.0" || !resp.Success {
		t.Fatalf("unexpected response header: %+v", resp)
	}
	if resp.Timestamp != "2026-03-02T13:15:00.000Z" {
		t.Fatalf("timestamp = %q", resp.Timestamp)
	}
	if !resp.IsBalanced || resp.BalanceMessage != "This is a well-balanced meal!" {
		t.Fatalf("expected balanced meal: %+v", resp.NutritionalSummary)
	}
	if len(resp.Ingredients) != 3 || resp.Ingredients[1].Quantity != "2" || resp.Ingredients[2].Unit != "g" {
		t.Fatalf("ingredients = %+v", resp.Ingredients)
	}

	snack := testMeal()
	snack.Name = ""
	snack.CapturedAt = time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC)
	snack.Items = snack.Items[2:]
	snack = meals.RecomputeTotals(snack)
	resp = meals.Format(snack)
	if resp.MealType != "Snack" || resp.MealName != "Unknown Meal" || resp.IsBalanced {
		t.Fatalf("unexpected snack response: %+v", resp)
	}
}

func TestMealType(t *testing.T) {
	t.Parallel()
	cases := map[int]string{5: "Snack", 6: "Breakfast", 10: "Breakfast", 11: "Lunch", 16: "Dinner", 20: "Dinner", 21: "Snack"}
	for h, want := range cases {
		if got := meals.MealType(time.Date(2026, 1, 1, h, 30, 0, 0, time.UTC)); got != want {
			t.Fatalf("MealType(%d) = %q, want %q", h, got, want)
		}
	}
}
