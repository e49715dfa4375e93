package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SchemaFromMap builds a FormSchema from loosely typed JSON. Values of the
// wrong type are coerced when their meaning is clear ("true", "18", 2.0);
// validation rules that cannot be coerced are dropped. A fields entry that is
// not an object becomes an empty Field so Normalize rejects it.
func SchemaFromMap(raw map[string]any) FormSchema {
	s := FormSchema{
		Title:       asString(raw["title"]),
		Description: asString(raw["description"]),
	}
	items, _ := raw["fields"].([]any)
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			s.Fields = append(s.Fields, Field{})
			continue
		}
		s.Fields = append(s.Fields, fieldFromMap(m))
	}
	return s
}

func fieldFromMap(m map[string]any) Field {
	f := Field{
		Name:     asString(m["name"]),
		Type:     FieldType(asString(m["type"])),
		Label:    asString(m["label"]),
		Required: asBool(m["required"]),
	}
	if v, ok := m["validation"].(map[string]any); ok {
		f.Validation = validationFromMap(v)
	}
	return f
}

func validationFromMap(m map[string]any) *Validation {
	v := Validation{
		MinLength: asLength(m["minLength"]),
		MaxLength: asLength(m["maxLength"]),
		Min:       asNumber(m["min"]),
		Max:       asNumber(m["max"]),
	}
	if p, ok := m["pattern"].(string); ok {
		v.Pattern = p
	}
	if v == (Validation{}) {
		return nil
	}
	return &v
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case float64:
		return t != 0
	default:
		return false
	}
}

func asNumber(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// asLength accepts whole, non-negative numbers only.
func asLength(v any) *int {
	f := asNumber(v)
	if f == nil || *f < 0 || *f != math.Trunc(*f) || *f > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}
