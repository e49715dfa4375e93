// Package generator turns a natural-language description into a form schema
// by asking a text-generation model for JSON.
package generator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/andrewpaige1/formcraft-api/logger"
	"github.com/andrewpaige1/formcraft-api/models"
)

var (
	ErrEmptyPrompt        = errors.New("prompt is required")
	ErrServiceUnavailable = errors.New("text generation service unavailable")
	ErrEmptyResponse      = errors.New("empty response from text generation service")
	ErrMalformedOutput    = errors.New("text generation service returned malformed JSON")
)

// TextModel is a single-shot text generation backend.
type TextModel interface {
	GenerateText(ctx context.Context, input string) (string, error)
}

const instructions = `You are a form generation expert.
Based on a user's description, create a JSON schema for a form with:
- "title": form title
- "description": brief summary
- "fields": array of objects with { name, type, label, required, validation? }
  - "type" is one of "text", "email", "number", "textarea", "file"
  - "name" is a unique identifier for the field
  - "validation" may hold minLength, maxLength, min, max and pattern

Always return *only valid JSON*, no markdown, text, or explanation.
Example output:
{
  "title": "Signup Form",
  "description": "A form for user registration",
  "fields": [
    { "name": "name", "type": "text", "label": "Full Name", "required": true },
    { "name": "email", "type": "email", "label": "Email Address", "required": true }
  ]
}`

// First '{' through the last '}'.
var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type Generator struct {
	model TextModel
	log   *logger.Logger
}

func New(model TextModel, log *logger.Logger) *Generator {
	return &Generator{model: model, log: log.With("component", "generator")}
}

// GenerateFormSchema makes exactly one model call. The result is only as
// trustworthy as the JSON parse; structural checks happen in the form store.
func (g *Generator) GenerateFormSchema(ctx context.Context, prompt string) (models.FormSchema, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.FormSchema{}, ErrEmptyPrompt
	}

	text, err := g.model.GenerateText(ctx, BuildInput(prompt))
	if err != nil {
		g.log.Error("Text generation failed", "error", err)
		return models.FormSchema{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	schema, err := ParseSchema(text)
	if err != nil {
		g.log.Warn("Could not parse generated schema", "error", err, "response_len", len(text))
		return models.FormSchema{}, err
	}
	g.log.Info("Form schema generated", "fields", len(schema.Fields))
	return schema, nil
}

// Ping sends a trivial request to check that the model is reachable.
func (g *Generator) Ping(ctx context.Context) error {
	if _, err := g.model.GenerateText(ctx, "Hello from formcraft!"); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return nil
}

func BuildInput(prompt string) string {
	return instructions + "\n\nUser request: " + prompt
}

// ParseSchema extracts the outermost brace-delimited block from text and decodes it.
// Only invalid JSON is malformed; loosely typed values are coerced.
func ParseSchema(text string) (models.FormSchema, error) {
	if strings.TrimSpace(text) == "" {
		return models.FormSchema{}, ErrEmptyResponse
	}
	block := objectPattern.FindString(text)
	if block == "" {
		return models.FormSchema{}, fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return models.FormSchema{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return models.SchemaFromMap(raw), nil
}

// UserMessage is the actionable text shown to the caller for a generation failure.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		return "Prompt is required"
	case errors.Is(err, ErrEmptyResponse):
		return "The AI service returned an empty response. Please try again."
	case errors.Is(err, ErrMalformedOutput), errors.Is(err, models.ErrInvalidSchema):
		return "The AI service returned an invalid form. Try refining your prompt."
	case errors.Is(err, ErrServiceUnavailable):
		return "Failed to generate form schema. Please check your API configuration."
	default:
		return "Failed to generate form"
	}
}
