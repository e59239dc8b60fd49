package ml

import (
	"context"
	"fmt"

	"github.com/franckalain/nutritrack/internal/meals"
	"github.com/franckalain/nutritrack/internal/models"
)

// Model is an estimation oracle: it reads meal photos and re-estimates
// renamed items.
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// Name is the model identifier recorded on meals
	Name() string
	// AnalyzeMeal estimates every item visible in a meal photo
	AnalyzeMeal(ctx context.Context, image []byte, mimeType string) (*models.MealEstimate, error)

	meals.Estimator
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a model of the given type. configPath may be empty, in
// which case config/<type>.json and then the environment are used.
func NewModel(modelType, configPath string) (Model, error) {
	var factory ModelFactory

	switch modelType {
	case "google":
		config := GoogleConfig{BaseConfig: BaseConfig{ConfigPath: configPath}}
		if err := config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load Google config: %w", err)
		}
		factory = NewGoogleModelFactory(config)
	case "openai":
		config := OpenAIConfig{BaseConfig: BaseConfig{ConfigPath: configPath}}
		if err := config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load OpenAI config: %w", err)
		}
		factory = NewOpenAIModelFactory(config)
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
	return factory.CreateModel()
}
