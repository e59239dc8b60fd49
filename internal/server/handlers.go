package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/franckalain/nutritrack/internal/database"
	"github.com/franckalain/nutritrack/internal/goals"
	"github.com/franckalain/nutritrack/internal/meals"
	"github.com/franckalain/nutritrack/internal/models"
)

type analyzeRequest struct {
	UserID     string     `json:"userId"`
	Image      string     `json:"image"` // base64, optionally a data URL
	MimeType   string     `json:"mimeType"`
	PhotoURL   string     `json:"photoUrl"`
	Width      *int       `json:"width"`
	Height     *int       `json:"height"`
	CapturedAt *time.Time `json:"capturedAt"`
	Notes      string     `json:"notes"`
}

type mealRequest struct {
	UserID string `json:"userId"`
	MealID string `json:"mealId"`
}

type listRequest struct {
	UserID string `json:"userId"`
	database.ListQuery
}

type updateRequest struct {
	mealRequest
	meals.ItemUpdate
}

type bulkRequest struct {
	mealRequest
	Items []meals.ItemUpdate `json:"items"`
}

type summaryRequest struct {
	UserID string `json:"userId"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type goalsRequest struct {
	Version string      `json:"version"`
	Profile goals.Input `json:"profile"`
	UserID  string      `json:"userId"`
	Persist bool        `json:"persist"`
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(data, v)
}

// decodeImage accepts raw base64 or a data URL and returns the bytes and
// the MIME type found in the URL, if any.
func decodeImage(s string) ([]byte, string, error) {
	var mime string
	if strings.HasPrefix(s, "data:") {
		header, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, "", errors.New("malformed data url")
		}
		mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(s)
	return data, mime, err
}

func (s *Server) handleAnalyzeMeal(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req analyzeRequest
	if err := decode(data, &req); err != nil || req.UserID == "" || req.Image == "" {
		s.sendError(conn, "userId and image are required")
		return
	}

	image, mime, err := decodeImage(req.Image)
	if err != nil {
		log.Printf("Error decoding image: %v", err)
		s.sendError(conn, "Invalid image format")
		return
	}
	if req.MimeType != "" {
		mime = req.MimeType
	}

	est, err := s.model.AnalyzeMeal(ctx, image, mime)
	if err != nil {
		log.Printf("Error analyzing image: %v", err)
		s.sendError(conn, "Failed to analyze image")
		return
	}

	capture := meals.Capture{PhotoURL: req.PhotoURL, Width: req.Width, Height: req.Height, Notes: req.Notes}
	if req.CapturedAt != nil {
		capture.CapturedAt = *req.CapturedAt
	}
	meal := meals.NewMeal(req.UserID, *est, capture)
	if err := s.db.SaveMeal(ctx, &meal); err != nil {
		log.Printf("Error saving meal: %v", err)
		s.sendError(conn, "Failed to save meal")
		return
	}

	log.Printf("Analyzed meal %s (%s): %d items, %.1f kcal", meal.ID, meal.Name, len(meal.Items), meal.TotalNutrition.Effective().Calories)
	s.sendMessage(conn, "meal", meals.Format(meal))
}

// loadMeal fetches the meal named by req, reporting errors to the client.
func (s *Server) loadMeal(ctx context.Context, conn *websocket.Conn, req mealRequest) (*models.Meal, bool) {
	if req.UserID == "" || req.MealID == "" {
		s.sendError(conn, "userId and mealId are required")
		return nil, false
	}
	meal, err := s.db.GetMeal(ctx, req.UserID, req.MealID)
	if err != nil {
		log.Printf("Error loading meal %s: %v", req.MealID, err)
		s.sendError(conn, "Failed to load meal")
		return nil, false
	}
	if meal == nil {
		s.sendError(conn, "Meal not found")
		return nil, false
	}
	return meal, true
}

func (s *Server) handleGetMeal(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req mealRequest
	if err := decode(data, &req); err != nil {
		s.sendError(conn, "Invalid request data")
		return
	}
	meal, ok := s.loadMeal(ctx, conn, req)
	if !ok {
		return
	}
	s.sendMessage(conn, "meal", meals.Format(*meal))
}

func (s *Server) handleListMeals(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req listRequest
	if err := decode(data, &req); err != nil || req.UserID == "" {
		s.sendError(conn, "userId is required")
		return
	}
	list, err := s.db.ListMeals(ctx, req.UserID, req.ListQuery)
	if err != nil {
		log.Printf("Error listing meals: %v", err)
		s.sendError(conn, "Failed to fetch meals")
		return
	}
	out := make([]meals.Response, 0, len(list))
	for _, m := range list {
		out = append(out, meals.Format(*m))
	}
	s.sendMessage(conn, "meals", out)
}

func (s *Server) handleUpdateItem(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req updateRequest
	if err := decode(data, &req); err != nil {
		s.sendError(conn, "Invalid request data")
		return
	}
	if req.ItemID == "" {
		s.sendError(conn, "mealId and itemId are required")
		return
	}
	meal, ok := s.loadMeal(ctx, conn, req.mealRequest)
	if !ok {
		return
	}

	updated, err := s.reconciler.ApplyUpdate(ctx, *meal, req.ItemUpdate)
	if err != nil {
		s.sendMealError(conn, err)
		return
	}
	s.saveAndSend(ctx, conn, updated)
}

func (s *Server) handleBulkEdit(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req bulkRequest
	if err := decode(data, &req); err != nil || len(req.Items) == 0 {
		s.sendError(conn, "mealId and items are required")
		return
	}
	meal, ok := s.loadMeal(ctx, conn, req.mealRequest)
	if !ok {
		return
	}

	updated, err := s.reconciler.BulkApply(ctx, *meal, req.Items)
	if err != nil {
		s.sendMealError(conn, err)
		return
	}
	s.saveAndSend(ctx, conn, updated)
}

func (s *Server) saveAndSend(ctx context.Context, conn *websocket.Conn, meal models.Meal) {
	if err := s.db.SaveMeal(ctx, &meal); err != nil {
		log.Printf("Error saving meal %s: %v", meal.ID, err)
		s.sendError(conn, "Failed to update meal")
		return
	}
	s.sendMessage(conn, "meal", meals.Format(meal))
}

func (s *Server) sendMealError(conn *websocket.Conn, err error) {
	switch {
	case errors.Is(err, meals.ErrNotFound):
		s.sendError(conn, "Item not found in meal")
	case errors.Is(err, meals.ErrNoChange):
		s.sendError(conn, "Either newQuantity or newItem must be provided")
	case errors.Is(err, meals.ErrInvalidQuantity), errors.Is(err, meals.ErrZeroBaseline):
		s.sendError(conn, err.Error())
	default:
		log.Printf("Error updating meal: %v", err)
		s.sendError(conn, "Failed to update meal")
	}
}

func (s *Server) handleDeleteMeal(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req mealRequest
	if err := decode(data, &req); err != nil || req.UserID == "" || req.MealID == "" {
		s.sendError(conn, "userId and mealId are required")
		return
	}
	deleted, err := s.db.DeleteMeal(ctx, req.UserID, req.MealID)
	if err != nil {
		log.Printf("Error deleting meal %s: %v", req.MealID, err)
		s.sendError(conn, "Failed to delete meal")
		return
	}
	if !deleted {
		s.sendError(conn, "Meal not found")
		return
	}
	s.sendMessage(conn, "meal_deleted", map[string]string{"mealId": req.MealID})
}

func (s *Server) handleDailySummary(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req summaryRequest
	if err := decode(data, &req); err != nil || req.UserID == "" || req.Start == "" || req.End == "" {
		s.sendError(conn, "userId, start and end dates are required")
		return
	}
	summary, err := s.db.DailySummary(ctx, req.UserID, req.Start, req.End)
	if err != nil {
		log.Printf("Error fetching daily summary: %v", err)
		s.sendError(conn, "Failed to fetch daily summary")
		return
	}
	s.sendMessage(conn, "daily_summary", summary)
}

func (s *Server) handleCalculateGoals(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req goalsRequest
	if err := decode(data, &req); err != nil {
		s.sendError(conn, "Invalid request data")
		return
	}

	version := s.live.Get().GoalVersion()
	if req.Version != "" {
		v, err := goals.ParseVersion(req.Version)
		if err != nil {
			s.sendError(conn, err.Error())
			return
		}
		version = v
	}

	res, err := goals.Calculate(version, req.Profile)
	if err != nil {
		s.sendGoalError(conn, err)
		return
	}

	resp := map[string]any{"result": res}
	if req.Persist {
		if req.UserID == "" {
			s.sendError(conn, "userId is required to persist goals")
			return
		}
		user, err := s.db.PersistGoals(ctx, req.UserID, goals.Project(res))
		if err != nil {
			log.Printf("Error persisting goals for %s: %v", req.UserID, err)
			s.sendError(conn, "Failed to save goals")
			return
		}
		if user == nil {
			s.sendError(conn, "User not found")
			return
		}
		resp["user"] = user
	}
	s.sendMessage(conn, "goals", resp)
}
