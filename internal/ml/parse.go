package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/franckalain/nutritrack/internal/models"
)

var caloriesPattern = regexp.MustCompile(`(?i)(\d+)\s*calories?`)

// stripCodeFence removes a surrounding ```json fence some models add even
// when asked for raw JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseMealEstimate decodes a photo analysis. Text that is not a valid
// estimate yields a single "Unknown Item" whose calories are scraped from
// the text, so a meal can always be recorded.
func ParseMealEstimate(raw string) models.MealEstimate {
	var est models.MealEstimate
	err := json.Unmarshal([]byte(stripCodeFence(raw)), &est)
	if err == nil && (est.MealName == "" || est.Items == nil) {
		err = errors.New("missing mealName or items array")
	}
	if err == nil {
		return est
	}

	log.Printf("Failed to parse meal estimate, using fallback: %v", err)
	var calories float64
	if m := caloriesPattern.FindStringSubmatch(raw); m != nil {
		calories, _ = strconv.ParseFloat(m[1], 64)
	}
	return models.MealEstimate{
		MealName: "Unknown Meal",
		Items: []models.ItemEstimate{{
			Name:      "Unknown Item",
			Quantity:  models.Quantity{Value: 1, Unit: "serving"},
			Nutrition: models.Macros{Calories: calories},
		}},
	}
}

func parseItemEstimate(raw string) (*models.ItemEstimate, error) {
	var est models.ItemEstimate
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &est); err != nil {
		return nil, fmt.Errorf("failed to parse item estimate: %w while parsing %s", err, raw)
	}
	if est.Name == "" {
		return nil, errors.New("item estimate has no name")
	}
	return &est, nil
}

func parseBatchEstimate(raw string, want int) (*models.BatchEstimate, error) {
	var est models.BatchEstimate
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &est); err != nil {
		return nil, fmt.Errorf("failed to parse batch estimate: %w while parsing %s", err, raw)
	}
	if len(est.Items) != want {
		log.Printf("Batch estimate returned %d items for %d requested", len(est.Items), want)
	}
	return &est, nil
}
