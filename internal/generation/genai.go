package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Model sends a prompt to a hosted language model and returns its text reply
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIModel calls Gemini through the Google GenAI SDK
type GenAIModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGenAIModel creates a Gemini-backed model
func NewGenAIModel(ctx context.Context, apiKey, model string) (*GenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIModel{
		client:      client,
		model:       model,
		temperature: 0.7,
	}, nil
}

// Generate implements Model. Replies are requested as JSON.
func (m *GenAIModel) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := m.temperature
	result, err := m.client.Models.GenerateContent(ctx,
		m.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      &temperature,
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("GenAI returned no text")
	}
	return text, nil
}

// Name returns the model identifier
func (m *GenAIModel) Name() string {
	return fmt.Sprintf("genai:%s", m.model)
}
