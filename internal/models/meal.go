package models

import (
	"time"
)

// TextValue is the string-shaped counterpart of NutrientValue, used for item names.
type TextValue struct {
	LLM   string  `json:"llm"`
	Final *string `json:"final"`
}

// Effective returns Final when set, else LLM.
func (t TextValue) Effective() string {
	if t.Final != nil {
		return *t.Final
	}
	return t.LLM
}

// Quantity is an amount with its unit, e.g. 2 cups
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ItemQuantity pairs the estimated quantity with the corrected one.
type ItemQuantity struct {
	LLM   Quantity  `json:"llm"`
	Final *Quantity `json:"final"`
}

// Effective returns the corrected quantity when present.
func (q ItemQuantity) Effective() Quantity {
	if q.Final != nil {
		return *q.Final
	}
	return q.LLM
}

// MealItem is one recognised food inside a meal. ID is stable across edits.
type MealItem struct {
	ID         string       `json:"id"`
	Name       TextValue    `json:"name"`
	Quantity   ItemQuantity `json:"quantity"`
	Nutrition  Nutrition    `json:"nutrition"`
	Confidence *float64     `json:"confidence"` // 0..1
}

// Clone returns a deep copy so edits never alias the source item.
func (it MealItem) Clone() MealItem {
	out := it
	if it.Name.Final != nil {
		out.Name.Final = String(*it.Name.Final)
	}
	if it.Quantity.Final != nil {
		q := *it.Quantity.Final
		out.Quantity.Final = &q
	}
	out.Nutrition = it.Nutrition.Clone()
	out.Confidence = cloneFloat(it.Confidence)
	return out
}

// Photo references an uploaded meal image
type Photo struct {
	URL    string `json:"url"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// Meal is the persisted aggregate. TotalNutrition.*.Final is always derived
// from the items and never edited directly.
type Meal struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	CapturedAt     time.Time  `json:"captured_at"`
	Photos         []Photo    `json:"photos"`
	LLMVersion     string     `json:"llm_version"`
	LLMModel       string     `json:"llm_model"`
	Name           string     `json:"name"`
	TotalNutrition Nutrition  `json:"total_nutrition"`
	Items          []MealItem `json:"items"`
	Notes          string     `json:"notes"`
	UserApproved   bool       `json:"user_approved"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Clone returns a deep copy of the meal and all of its items.
func (m Meal) Clone() Meal {
	out := m
	out.Photos = append([]Photo(nil), m.Photos...)
	out.TotalNutrition = m.TotalNutrition.Clone()
	out.Items = make([]MealItem, len(m.Items))
	for i, it := range m.Items {
		out.Items[i] = it.Clone()
	}
	if m.DeletedAt != nil {
		t := *m.DeletedAt
		out.DeletedAt = &t
	}
	return out
}

// ItemIndex returns the position of the item with the given id, or -1.
func (m Meal) ItemIndex(id string) int {
	for i, it := range m.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// DailySummary aggregates the effective totals of all meals captured on one day
type DailySummary struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	MealCount int     `json:"meal_count"`
}
