package ml

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/franckalain/nutritrack/internal/models"
)

// GoogleConfig holds configuration for the Gemini model on Vertex AI
type GoogleConfig struct {
	BaseConfig
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`
	Model           string `json:"model"`
}

// Load loads the Google configuration
func (c *GoogleConfig) Load() error {
	if err := c.LoadConfig(c.ConfigPath, "google", c); err != nil {
		return err
	}
	envDefault(&c.ProjectID, "GOOGLE_PROJECT_ID", "")
	envDefault(&c.Location, "GOOGLE_LOCATION", "us-central1")
	envDefault(&c.CredentialsFile, "GOOGLE_CREDENTIALS_FILE", "")
	envDefault(&c.Model, "GOOGLE_MODEL", "gemini-1.5-flash")
	if c.ProjectID == "" {
		return fmt.Errorf("google project id is not set")
	}
	return nil
}

// GoogleModel implements Model with Gemini on Vertex AI
type GoogleModel struct {
	config GoogleConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

// GoogleModelFactory implements ModelFactory for Google models
type GoogleModelFactory struct {
	config GoogleConfig
}

// NewGoogleModelFactory creates a new Google model factory
func NewGoogleModelFactory(config GoogleConfig) *GoogleModelFactory {
	return &GoogleModelFactory{config: config}
}

// CreateModel creates a new Google model instance
func (f *GoogleModelFactory) CreateModel() (Model, error) {
	return &GoogleModel{config: f.config}, nil
}

// Load initializes the Vertex AI client
func (m *GoogleModel) Load(ctx context.Context) error {
	opts := []option.ClientOption{}
	if m.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, m.config.ProjectID, m.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	m.client = client
	m.model = client.GenerativeModel(m.config.Model)
	m.model.ResponseMIMEType = "application/json"
	m.model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	return nil
}

// Name returns the Gemini model id
func (m *GoogleModel) Name() string {
	return m.config.Model
}

// Close releases the Vertex AI client
func (m *GoogleModel) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

// AnalyzeMeal sends the photo inline with the meal prompt
func (m *GoogleModel) AnalyzeMeal(ctx context.Context, image []byte, mimeType string) (*models.MealEstimate, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	text, err := m.generate(ctx, genai.Text(mealPrompt), genai.Blob{MIMEType: mimeType, Data: image})
	if err != nil {
		return nil, err
	}
	est := ParseMealEstimate(text)
	est.Model = m.Name()
	return &est, nil
}

// EstimateItem re-estimates one renamed item
func (m *GoogleModel) EstimateItem(ctx context.Context, req models.ItemRequest) (*models.ItemEstimate, error) {
	prompt, err := renderItemPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("render item prompt: %w", err)
	}
	text, err := m.generate(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	return parseItemEstimate(text)
}

// EstimateBatch re-estimates every renamed item of a bulk edit in one call
func (m *GoogleModel) EstimateBatch(ctx context.Context, req models.BatchRequest) (*models.BatchEstimate, error) {
	prompt, err := renderBatchPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("render batch prompt: %w", err)
	}
	text, err := m.generate(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	return parseBatchEstimate(text, len(req.Items))
}

func (m *GoogleModel) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	if m.model == nil {
		return "", fmt.Errorf("model not loaded")
	}

	log.Printf("Calling %s", m.config.Model)
	resp, err := m.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to call ai: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response generated")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, p := range candidate.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}
