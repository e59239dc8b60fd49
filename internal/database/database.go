package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/franckalain/nutritrack/internal/models"
)

//go:embed schema.sql
var schemaFS embed.FS

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const dateLayout = "2006-01-02"

// DefaultListLimit applies when ListQuery.Limit is not positive.
const DefaultListLimit = 20

// DB interface defines the methods our database should implement
type DB interface {
	SaveMeal(ctx context.Context, meal *models.Meal) error
	GetMeal(ctx context.Context, userID, mealID string) (*models.Meal, error)
	ListMeals(ctx context.Context, userID string, q ListQuery) ([]*models.Meal, error)
	DeleteMeal(ctx context.Context, userID, mealID string) (bool, error)
	DailySummary(ctx context.Context, userID, start, end string) ([]models.DailySummary, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	PersistGoals(ctx context.Context, userID string, goals models.UserGoals) (*models.User, error)
	Close() error
}

// ListQuery filters ListMeals. Date selects one day; otherwise From and To
// bound a [From, To) range. Dates are YYYY-MM-DD in UTC.
type ListQuery struct {
	Date  string `json:"date,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Limit int    `json:"limit,omitempty"`
	Skip  int    `json:"skip,omitempty"`
}

// SQLiteDB implements the DB interface
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

func initializeSchema(db *sql.DB) error {
	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("error reading schema file: %w", err)
	}
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// dayRange returns the [start, end) timestamps covering the dates from and
// to, with to inclusive when inclusive is set.
func dayRange(from, to string, inclusive bool) (string, string, error) {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return "", "", fmt.Errorf("invalid date %q: %w", from, err)
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return "", "", fmt.Errorf("invalid date %q: %w", to, err)
	}
	if inclusive {
		end = end.AddDate(0, 0, 1)
	}
	return formatTime(start), formatTime(end), nil
}

