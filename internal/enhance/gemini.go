package enhance

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiClient analyzes pages with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds a client for the Gemini developer API.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &AuthError{Provider: "gemini"}
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{client: c, model: model}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

// AnalyzePage asks for application/json and decodes the reply.
func (g *GeminiClient) AnalyzePage(ctx context.Context, prompt string) (*Analysis, error) {
	temp := float32(0.3)
	res, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       &temp,
		},
	)
	if err != nil {
		return nil, classifyGenaiError(err)
	}
	text := res.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response from gemini", ErrMalformedResponse)
	}
	return ParseAnalysis(text)
}

// classifyGenaiError converts API status codes into the package's error
// kinds so retries and failure reasons match the Groq client.
func classifyGenaiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini api: %w", err)
	}
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return &AuthError{Provider: "gemini", StatusCode: apiErr.Code}
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
		return &RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
	default:
		return fmt.Errorf("gemini api status %d: %s", apiErr.Code, apiErr.Message)
	}
}
