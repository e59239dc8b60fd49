package models

// MealEstimate is what a vision model returns for a whole meal photo
type MealEstimate struct {
	MealName string         `json:"mealName"`
	Items    []ItemEstimate `json:"items"`
	Model    string         `json:"-"` // model that produced the estimate
}

// ItemEstimate is one item of a MealEstimate, or the answer to an item re-query.
type ItemEstimate struct {
	Name            string   `json:"name"`
	Quantity        Quantity `json:"quantity"`
	Nutrition       Macros   `json:"nutrition"`
	Confidence      *float64 `json:"confidence,omitempty"`
	UpdatedMealName string   `json:"updatedMealName,omitempty"`
}

// ItemRequest asks the oracle to estimate a renamed item.
type ItemRequest struct {
	NewName      string
	MealName     string
	PreviousName string
	Unit         string
}

// BatchItemRequest is one rename inside a BatchRequest.
type BatchItemRequest struct {
	OriginalName string   `json:"originalName"`
	NewName      string   `json:"newName"`
	NewQuantity  *float64 `json:"newQuantity,omitempty"`
	Unit         string   `json:"unit"`
	IsMainItem   bool     `json:"isMainItem"`
}

// MainItemInfo describes the anchor item change used to bias the meal name.
type MainItemInfo struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

// BatchRequest groups every rename of one bulk edit into a single oracle call.
type BatchRequest struct {
	Items         []BatchItemRequest
	MealName      string
	HasMainChange bool
	MainItem      *MainItemInfo
}

// BatchEstimate answers a BatchRequest. Items align with the request by position.
type BatchEstimate struct {
	Items           []ItemEstimate `json:"items"`
	MealNameChanged bool           `json:"mealNameChanged"`
	MealName        string         `json:"mealName"`
}
