package meals

import (
	"strconv"
	"time"

	"github.com/franckalain/nutritrack/internal/models"
)

// FormatVersion is the version tag of Response.
const FormatVersion = "1.0.0"

// Summary is the effective meal total rounded to one decimal.
type Summary struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Ingredient is one item as shown to the client.
type Ingredient struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Unit     string  `json:"unit"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Response is the client-facing view of a meal.
type Response struct {
	Success            bool         `json:"success"`
	MealID             string       `json:"mealId"`
	MealName           string       `json:"mealName"`
	MealType           string       `json:"mealType"`
	ImagePath          string       `json:"imagePath"`
	IsBalanced         bool         `json:"isBalanced"`
	BalanceMessage     string       `json:"balanceMessage"`
	NutritionalSummary Summary      `json:"nutritionalSummary"`
	Ingredients        []Ingredient `json:"ingredients"`
	Timestamp          string       `json:"timestamp"`
	Version            string       `json:"version"`
}

// MealType names the meal after the hour it was captured.
func MealType(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 6 && h < 11:
		return "Breakfast"
	case h >= 11 && h < 16:
		return "Lunch"
	case h >= 16 && h < 21:
		return "Dinner"
	default:
		return "Snack"
	}
}

// Format renders meal for clients using effective values throughout.
func Format(meal models.Meal) Response {
	total := meal.TotalNutrition.Effective()
	summary := Summary{
		Calories: round1(total.Calories),
		Protein:  round1(total.Protein),
		Carbs:    round1(total.Carbs),
		Fats:     round1(total.Fat),
	}

	ingredients := make([]Ingredient, 0, len(meal.Items))
	for _, it := range meal.Items {
		name := it.Name.Effective()
		if name == "" {
			name = "Unknown Item"
		}
		q := it.Quantity.Effective()
		unit := q.Unit
		if unit == "" {
			unit = "g"
		}
		n := it.Nutrition.Effective()
		ingredients = append(ingredients, Ingredient{
			ItemID:   it.ID,
			Name:     name,
			Quantity: strconv.FormatFloat(q.Value, 'f', -1, 64),
			Unit:     unit,
			Calories: round1(n.Calories),
			Protein:  round1(n.Protein),
			Carbs:    round1(n.Carbs),
			Fats:     round1(n.Fat),
		})
	}

	balanced := summary.Protein >= 20 && summary.Carbs >= 30 && summary.Fats >= 10
	msg := "Consider adding more variety to balance your meal."
	if balanced {
		msg = "This is a well-balanced meal!"
	}

	name := meal.Name
	if name == "" {
		name = "Unknown Meal"
	}
	var image string
	if len(meal.Photos) > 0 {
		image = meal.Photos[0].URL
	}

	return Response{
		Success:            true,
		MealID:             meal.ID,
		MealName:           name,
		MealType:           MealType(meal.CapturedAt),
		ImagePath:          image,
		IsBalanced:         balanced,
		BalanceMessage:     msg,
		NutritionalSummary: summary,
		Ingredients:        ingredients,
		Timestamp:          meal.CapturedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:            FormatVersion,
	}
}
