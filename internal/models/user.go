package models

import (
	"fmt"
	"strings"
	"time"
)

// UserGoals is the persisted projection of a goal calculation
type UserGoals struct {
	Goal          string  `json:"goal"`
	DailyCalories float64 `json:"dailyCalories"`
	DailyProtein  float64 `json:"dailyProtein"`
	DailyCarbs    float64 `json:"dailyCarbs"`
	DailyFats     float64 `json:"dailyFats"`
}

// DefaultUserGoals are applied to newly created users.
var DefaultUserGoals = UserGoals{
	DailyCalories: 2000,
	DailyProtein:  150,
	DailyCarbs:    250,
	DailyFats:     65,
}

// User is an account with its current daily goals
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Goals     UserGoals `json:"goals"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces the bounds a stored goal must respect.
func (g UserGoals) Validate() error {
	var errs []string
	if g.DailyCalories < 0 || g.DailyCalories > 10000 {
		errs = append(errs, "dailyCalories must be a number between 0 and 10,000")
	}
	if g.DailyProtein < 0 || g.DailyProtein > 1000 {
		errs = append(errs, "dailyProtein must be a number between 0 and 1,000")
	}
	if g.DailyCarbs < 0 || g.DailyCarbs > 2000 {
		errs = append(errs, "dailyCarbs must be a number between 0 and 2,000")
	}
	if g.DailyFats < 0 || g.DailyFats > 500 {
		errs = append(errs, "dailyFats must be a number between 0 and 500")
	}
	if len(g.Goal) > 200 {
		errs = append(errs, "goal must be at most 200 characters")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid goals: %s", strings.Join(errs, "; "))
	}
	return nil
}
