package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type GeminiOptions struct {
	APIKey string
	Model  string
	// Endpoint overrides the Gemini API base URL.
	Endpoint   string
	HTTPClient *http.Client
}

// GeminiModel calls generateContent on the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, opts GeminiOptions) (*GeminiModel, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: missing GEMINI_API_KEY")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.Endpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.Endpoint}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

func (m *GeminiModel) GenerateText(ctx context.Context, input string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(input), nil)
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("gemini model %q not found, check that the API key has access to it: %w", m.model, err)
		}
		return "", err
	}
	return resp.Text(), nil
}

func isNotFound(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}
	var apiErrPtr *genai.APIError
	return errors.As(err, &apiErrPtr) && apiErrPtr.Code == http.StatusNotFound
}

// Unconfigured stands in for the model when no API key is set. Every call
// fails, so generation reports the service as unavailable.
type Unconfigured struct {
	Reason string
}

func (u Unconfigured) GenerateText(ctx context.Context, input string) (string, error) {
	return "", fmt.Errorf("gemini not configured: %s", u.Reason)
}
