package ml

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/franckalain/nutritrack/internal/models"
)

// OpenAIConfig holds configuration for an OpenAI-compatible chat model
type OpenAIConfig struct {
	BaseConfig
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

// Load loads the OpenAI configuration
func (c *OpenAIConfig) Load() error {
	if err := c.LoadConfig(c.ConfigPath, "openai", c); err != nil {
		return err
	}
	envDefault(&c.APIKey, "OPENAI_API_KEY", "")
	envDefault(&c.Model, "OPENAI_MODEL", "gpt-4o")
	envDefault(&c.BaseURL, "OPENAI_BASE_URL", "")
	if c.APIKey == "" {
		return fmt.Errorf("openai api key is not set")
	}
	return nil
}

// OpenAIModel implements Model through langchaingo's OpenAI client
type OpenAIModel struct {
	config OpenAIConfig
	llm    llms.Model
}

// OpenAIModelFactory implements ModelFactory for OpenAI models
type OpenAIModelFactory struct {
	config OpenAIConfig
}

// NewOpenAIModelFactory creates a new OpenAI model factory
func NewOpenAIModelFactory(config OpenAIConfig) *OpenAIModelFactory {
	return &OpenAIModelFactory{config: config}
}

// CreateModel creates a new OpenAI model instance
func (f *OpenAIModelFactory) CreateModel() (Model, error) {
	return &OpenAIModel{config: f.config}, nil
}

// NewOpenAIModelWithLLM wraps an existing langchaingo model.
func NewOpenAIModelWithLLM(llm llms.Model, name string) *OpenAIModel {
	return &OpenAIModel{config: OpenAIConfig{Model: name}, llm: llm}
}

// Load creates the langchaingo client
func (m *OpenAIModel) Load(ctx context.Context) error {
	if m.llm != nil {
		return nil
	}
	opts := []openai.Option{
		openai.WithToken(m.config.APIKey),
		openai.WithModel(m.config.Model),
	}
	if m.config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(m.config.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	m.llm = llm
	return nil
}

// Name returns the chat model id
func (m *OpenAIModel) Name() string {
	return m.config.Model
}

// AnalyzeMeal sends the photo as a data URL alongside the meal prompt
func (m *OpenAIModel) AnalyzeMeal(ctx context.Context, image []byte, mimeType string) (*models.MealEstimate, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	url := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	text, err := m.generate(ctx, llms.TextContent{Text: mealPrompt}, llms.ImageURLPart(url))
	if err != nil {
		return nil, err
	}
	est := ParseMealEstimate(text)
	est.Model = m.Name()
	return &est, nil
}

// EstimateItem re-estimates one renamed item
func (m *OpenAIModel) EstimateItem(ctx context.Context, req models.ItemRequest) (*models.ItemEstimate, error) {
	prompt, err := renderItemPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("render item prompt: %w", err)
	}
	text, err := m.generate(ctx, llms.TextContent{Text: prompt})
	if err != nil {
		return nil, err
	}
	return parseItemEstimate(text)
}

// EstimateBatch re-estimates every renamed item of a bulk edit in one call
func (m *OpenAIModel) EstimateBatch(ctx context.Context, req models.BatchRequest) (*models.BatchEstimate, error) {
	prompt, err := renderBatchPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("render batch prompt: %w", err)
	}
	text, err := m.generate(ctx, llms.TextContent{Text: prompt})
	if err != nil {
		return nil, err
	}
	return parseBatchEstimate(text, len(req.Items))
}

func (m *OpenAIModel) generate(ctx context.Context, parts ...llms.ContentPart) (string, error) {
	if m.llm == nil {
		return "", fmt.Errorf("model not loaded")
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		{Role: schema.ChatMessageTypeHuman, Parts: parts},
	}
	log.Printf("Calling %s", m.config.Model)
	resp, err := m.llm.GenerateContent(ctx, messages, llms.WithJSONMode(), llms.WithMaxTokens(1000))
	if err != nil {
		return "", fmt.Errorf("failed to call ai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response generated")
	}
	return resp.Choices[0].Content, nil
}
