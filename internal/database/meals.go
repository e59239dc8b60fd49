package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/franckalain/nutritrack/internal/models"
)

// SaveMeal inserts or replaces a meal. The whole aggregate is stored as one
// JSON document next to the columns used for filtering and summaries.
func (s *SQLiteDB) SaveMeal(ctx context.Context, meal *models.Meal) error {
	now := time.Now()
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = now
	}
	meal.UpdatedAt = now

	doc, err := json.Marshal(meal)
	if err != nil {
		return fmt.Errorf("encode meal %s: %w", meal.ID, err)
	}

	var deletedAt sql.NullString
	if meal.DeletedAt != nil {
		deletedAt = sql.NullString{String: formatTime(*meal.DeletedAt), Valid: true}
	}

	total := meal.TotalNutrition.Effective()
	query := `
		INSERT INTO meals (
			id, user_id, captured_at, name, calories, protein, carbs, fat,
			document, deleted_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			captured_at = excluded.captured_at,
			name = excluded.name,
			calories = excluded.calories,
			protein = excluded.protein,
			carbs = excluded.carbs,
			fat = excluded.fat,
			document = excluded.document,
			deleted_at = excluded.deleted_at,
			updated_at = excluded.updated_at
		WHERE meals.user_id = excluded.user_id
	`
	_, err = s.db.ExecContext(ctx, query,
		meal.ID, meal.UserID, formatTime(meal.CapturedAt), meal.Name,
		total.Calories, total.Protein, total.Carbs, total.Fat,
		string(doc), deletedAt, formatTime(meal.CreatedAt), formatTime(meal.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save meal %s: %w", meal.ID, err)
	}
	return nil
}

// GetMeal returns the user's meal, or nil when it does not exist or was deleted.
func (s *SQLiteDB) GetMeal(ctx context.Context, userID, mealID string) (*models.Meal, error) {
	query := `SELECT document FROM meals WHERE id = ? AND user_id = ? AND deleted_at IS NULL`

	var doc string
	err := s.db.QueryRowContext(ctx, query, mealID, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal %s: %w", mealID, err)
	}
	return decodeMeal(doc)
}

// ListMeals returns the user's meals newest first.
func (s *SQLiteDB) ListMeals(ctx context.Context, userID string, q ListQuery) ([]*models.Meal, error) {
	query := `SELECT document FROM meals WHERE user_id = ? AND deleted_at IS NULL`
	args := []any{userID}

	switch {
	case q.Date != "":
		start, end, err := dayRange(q.Date, q.Date, true)
		if err != nil {
			return nil, err
		}
		query += ` AND captured_at >= ? AND captured_at < ?`
		args = append(args, start, end)
	default:
		if q.From != "" {
			start, _, err := dayRange(q.From, q.From, false)
			if err != nil {
				return nil, err
			}
			query += ` AND captured_at >= ?`
			args = append(args, start)
		}
		if q.To != "" {
			end, _, err := dayRange(q.To, q.To, false)
			if err != nil {
				return nil, err
			}
			query += ` AND captured_at < ?`
			args = append(args, end)
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}
	query += ` ORDER BY captured_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, skip)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	var results []*models.Meal
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		meal, err := decodeMeal(doc)
		if err != nil {
			return nil, err
		}
		results = append(results, meal)
	}
	return results, rows.Err()
}

// DeleteMeal soft-deletes a meal. It reports false when there was nothing
// to delete.
func (s *SQLiteDB) DeleteMeal(ctx context.Context, userID, mealID string) (bool, error) {
	meal, err := s.GetMeal(ctx, userID, mealID)
	if err != nil || meal == nil {
		return false, err
	}
	now := time.Now()
	meal.DeletedAt = &now
	if err := s.SaveMeal(ctx, meal); err != nil {
		return false, err
	}
	return true, nil
}

// DailySummary sums the effective totals per UTC day for the inclusive date
// range [start, end], oldest day first.
func (s *SQLiteDB) DailySummary(ctx context.Context, userID, start, end string) ([]models.DailySummary, error) {
	from, to, err := dayRange(start, end, true)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT substr(captured_at, 1, 10) AS day,
			SUM(calories), SUM(protein), SUM(carbs), SUM(fat), COUNT(*)
		FROM meals
		WHERE user_id = ? AND deleted_at IS NULL
			AND captured_at >= ? AND captured_at < ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	results := []models.DailySummary{}
	for rows.Next() {
		var d models.DailySummary
		if err := rows.Scan(&d.Date, &d.Calories, &d.Protein, &d.Carbs, &d.Fat, &d.MealCount); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func decodeMeal(doc string) (*models.Meal, error) {
	var meal models.Meal
	if err := json.Unmarshal([]byte(doc), &meal); err != nil {
		return nil, fmt.Errorf("decode meal: %w", err)
	}
	return &meal, nil
}
