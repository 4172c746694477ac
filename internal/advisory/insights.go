package advisory

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const insightModel = "gemini-2.0-flash"

// InsightClient generates short market analyses for a token symbol through
// the Gemini API.
type InsightClient struct {
	client *genai.Client
	model  string
}

// NewInsightClient initializes the Gemini client. apiKey must be set; callers
// disable the feature when it is not configured.
func NewInsightClient(ctx context.Context, apiKey string) (*InsightClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &InsightClient{client: client, model: insightModel}, nil
}

// TokenInsight returns a brief market analysis for the given token symbol.
func (c *InsightClient) TokenInsight(ctx context.Context, symbol string) (string, error) {
	prompt := fmt.Sprintf(
		"Provide a brief market analysis and price prediction for the cryptocurrency %s. "+
			"Include recent news, trading volume, and market sentiment. "+
			"Keep it concise and focused on actionable insights.", symbol)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate insight for %s: %w", symbol, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty insight response for %s", symbol)
	}
	return text, nil
}
