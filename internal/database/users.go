package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/franckalain/nutritrack/internal/models"
)

// CreateUser inserts a user, filling the id and default goals when unset.
func (s *SQLiteDB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Goals == (models.UserGoals{}) {
		user.Goals = models.DefaultUserGoals
	}
	if err := user.Goals.Validate(); err != nil {
		return err
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.IsActive = true

	query := `
		INSERT INTO users (
			id, phone, name, email, goal, daily_calories, daily_protein,
			daily_carbs, daily_fats, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Phone, user.Name, user.Email, user.Goals.Goal,
		user.Goals.DailyCalories, user.Goals.DailyProtein, user.Goals.DailyCarbs, user.Goals.DailyFats,
		user.IsActive, formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns the user, or nil when no such user exists.
func (s *SQLiteDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, phone, name, email, goal, daily_calories, daily_protein,
			daily_carbs, daily_fats, is_active, created_at, updated_at
		FROM users WHERE id = ?
	`
	var (
		u                    models.User
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Phone, &u.Name, &u.Email, &u.Goals.Goal,
		&u.Goals.DailyCalories, &u.Goals.DailyProtein, &u.Goals.DailyCarbs, &u.Goals.DailyFats,
		&u.IsActive, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("user %s created_at: %w", id, err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("user %s updated_at: %w", id, err)
	}
	return &u, nil
}

// PersistGoals overwrites the user's goal fields. It returns nil, nil when
// the user does not exist.
func (s *SQLiteDB) PersistGoals(ctx context.Context, userID string, goals models.UserGoals) (*models.User, error) {
	if err := goals.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE users
		SET goal = ?, daily_calories = ?, daily_protein = ?, daily_carbs = ?,
			daily_fats = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		goals.Goal, goals.DailyCalories, goals.DailyProtein, goals.DailyCarbs, goals.DailyFats,
		formatTime(time.Now()), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("persist goals for %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetUser(ctx, userID)
}
