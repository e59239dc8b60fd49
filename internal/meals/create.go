package meals

import (
	"time"

	"github.com/google/uuid"

	"github.com/franckalain/nutritrack/internal/models"
)

// LLMVersion is recorded on every meal built from an oracle estimate.
const LLMVersion = "1.0"

// Capture describes the photo a meal estimate came from.
type Capture struct {
	CapturedAt time.Time
	PhotoURL   string
	Width      *int
	Height     *int
	Notes      string
}

// NewMeal builds an unsaved meal from a photo estimate. Items get fresh ids,
// every correction starts empty and the total estimate is the item sum.
func NewMeal(userID string, est models.MealEstimate, c Capture) models.Meal {
	items := make([]models.MealItem, 0, len(est.Items))
	var total models.Macros
	for _, e := range est.Items {
		items = append(items, models.MealItem{
			ID:         uuid.New().String(),
			Name:       models.TextValue{LLM: e.Name},
			Quantity:   models.ItemQuantity{LLM: e.Quantity},
			Nutrition:  models.EstimatedNutrition(e.Nutrition),
			Confidence: e.Confidence,
		})
		total.Calories += e.Nutrition.Calories
		total.Protein += e.Nutrition.Protein
		total.Carbs += e.Nutrition.Carbs
		total.Fat += e.Nutrition.Fat
	}

	capturedAt := c.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}
	notes := c.Notes
	if notes == "" {
		notes = "AI Analysis: " + est.MealName
	}

	meal := models.Meal{
		ID:             uuid.New().String(),
		UserID:         userID,
		CapturedAt:     capturedAt,
		LLMVersion:     LLMVersion,
		LLMModel:       est.Model,
		Name:           est.MealName,
		TotalNutrition: models.EstimatedNutrition(total),
		Items:          items,
		Notes:          notes,
	}
	if c.PhotoURL != "" {
		meal.Photos = []models.Photo{{URL: c.PhotoURL, Width: c.Width, Height: c.Height}}
	}
	return meal
}
