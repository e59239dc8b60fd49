package ml

import (
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/prompts"

	"github.com/franckalain/nutritrack/internal/models"
)

const systemPrompt = "You are a nutrition expert. Analyze food photos and return structured JSON data with detailed nutrition information."

const mealPrompt = `Analyze this food photo and return a JSON object with the following structure:
{
  "mealName": "Overall meal name (e.g., 'Dal & Rice', 'Banana, Apple and Eggs')",
  "items": [
    {
      "name": "Item name",
      "quantity": {
        "value": 6,
        "unit": "slices/pieces/cups/grams/etc"
      },
      "nutrition": {
        "calories": 900,
        "protein": 30,
        "carbs": 150,
        "fat": 18
      },
      "confidence": 0.85
    }
  ]
}

IMPORTANT: For each item, provide the TOTAL quantity and nutrition for ALL of that item visible in the photo. For example:
- If you see 6 pizza slices, return quantity: 6, unit: "slices" and nutrition for all 6 slices combined
- If you see 3 apples, return quantity: 3, unit: "pieces" and nutrition for all 3 apples combined
- If you see 2 cups of rice, return quantity: 2, unit: "cups" and nutrition for all 2 cups combined

For each item, provide a confidence score between 0 and 1 indicating how certain you are about the identification and nutrition estimates.

Return only valid JSON, no additional text.`

var itemPrompt = prompts.NewPromptTemplate(`A user is updating a meal item. Provide nutrition information for the new item and suggest an updated meal name.

Current meal name: "{{.MealName}}"
Previous item name: "{{.PreviousName}}"
New item name: "{{.NewName}}"
Original quantity unit: "{{.Unit}}"

Return JSON with this structure:
{
  "name": "{{.NewName}}",
  "quantity": {
    "value": 1,
    "unit": "{{.Unit}}"
  },
  "nutrition": {
    "calories": 150,
    "protein": 10,
    "carbs": 20,
    "fat": 5
  },
  "updatedMealName": "Updated meal name reflecting the change"
}

Guidelines:
1. Provide realistic nutrition values for a typical serving of {{.NewName}} using the unit "{{.Unit}}"
2. For updatedMealName, consider how replacing "{{.PreviousName}}" with "{{.NewName}}" changes the overall meal description
3. Keep the meal name concise but descriptive
4. If the change is minor, keep the same meal name
5. ALWAYS use the original unit "{{.Unit}}" in the quantity field

Examples:
- "White Rice" to "Brown Rice" in "Chicken and Rice Bowl" gives "Chicken and Brown Rice Bowl"
- "Chicken Breast" to "Salmon" in "Grilled Chicken Salad" gives "Grilled Salmon Salad"

Return only valid JSON, no additional text.`, []string{"MealName", "PreviousName", "NewName", "Unit"})

var batchPrompt = prompts.NewPromptTemplate(`A user is replacing several items of the meal "{{.MealName}}" at once.

Items to estimate, in order:
{{.Items}}
{{if .MainItem}}
The main item of the meal changed: "{{.MainItem.OldName}}" is now "{{.MainItem.NewName}}". Update the meal name to reflect it.
{{else}}
Only side items changed. Keep the meal name unless it no longer describes the meal.
{{end}}
For each item use its newQuantity when given, otherwise a typical serving, and always its unit.

Return JSON with this structure, with exactly one entry per item in the same order:
{
  "items": [
    {
      "name": "New item name",
      "quantity": { "value": 1, "unit": "unit" },
      "nutrition": { "calories": 150, "protein": 10, "carbs": 20, "fat": 5 }
    }
  ],
  "mealNameChanged": true,
  "mealName": "Updated meal name"
}

Return only valid JSON, no additional text.`, []string{"MealName", "Items", "MainItem"})

func renderItemPrompt(req models.ItemRequest) (string, error) {
	return itemPrompt.Format(map[string]any{
		"MealName":     req.MealName,
		"PreviousName": req.PreviousName,
		"NewName":      req.NewName,
		"Unit":         req.Unit,
	})
}

func renderBatchPrompt(req models.BatchRequest) (string, error) {
	items, err := json.MarshalIndent(req.Items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode batch items: %w", err)
	}
	return batchPrompt.Format(map[string]any{
		"MealName": req.MealName,
		"Items":    string(items),
		"MainItem": req.MainItem,
	})
}
