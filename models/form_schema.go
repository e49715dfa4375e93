package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema is returned when a form definition cannot be used as-is.
var ErrInvalidSchema = errors.New("invalid form schema")

const DefaultFormTitle = "Generated Form"

// FieldType is the kind of input a field renders as.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeFile     FieldType = "file"
)

// ParseFieldType maps a raw type name onto a known FieldType.
// Unrecognized names fall back to FieldTypeText.
func ParseFieldType(raw string) FieldType {
	switch t := FieldType(strings.ToLower(strings.TrimSpace(raw))); t {
	case FieldTypeText, FieldTypeEmail, FieldTypeNumber, FieldTypeTextarea, FieldTypeFile:
		return t
	default:
		return FieldTypeText
	}
}

// FormSchema is the structured definition of a form.
type FormSchema struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Field is one input slot. Name is the answer key and must be unique within a form.
type Field struct {
	Name       string      `json:"name"`
	Type       FieldType   `json:"type"`
	Label      string      `json:"label"`
	Required   bool        `json:"required"`
	Validation *Validation `json:"validation,omitempty"`
}

type Validation struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Normalize checks that the schema is usable and fills defaults in place.
func (s *FormSchema) Normalize() error {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field name %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = struct{}{}

		f.Type = ParseFieldType(string(f.Type))
		if strings.TrimSpace(f.Label) == "" {
			f.Label = f.Name
		}
	}
	return nil
}

// FormTitle is the title stored on the Form row.
func (s FormSchema) FormTitle() string {
	if s.Title == "" {
		return DefaultFormTitle
	}
	return s.Title
}
