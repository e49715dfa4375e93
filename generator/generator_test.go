package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andrewpaige1/formcraft-api/logger"
	"github.com/andrewpaige1/formcraft-api/models"
)

type fakeModel struct {
	text  string
	err   error
	calls int
	input string
}

func (f *fakeModel) GenerateText(ctx context.Context, input string) (string, error) {
	f.calls++
	f.input = input
	return f.text, f.err
}

const contactReply = `Sure! {"title":"Contact","fields":[{"name":"name","type":"text","label":"Name","required":true},{"name":"email","type":"email","label":"Email","required":true}]}`

func TestGenerateFormSchemaContactForm(t *testing.T) {
	model := &fakeModel{text: contactReply}
	g := New(model, logger.NewNop())

	schema, err := g.GenerateFormSchema(context.Background(), "contact form with name and email")
	if err != nil {
		t.Fatalf("GenerateFormSchema: %v", err)
	}
	if model.calls != 1 {
		t.Errorf("model called %d times, want 1", model.calls)
	}
	if !strings.HasSuffix(model.input, "User request: contact form with name and email") {
		t.Errorf("prompt not appended to instructions: %q", model.input)
	}
	if schema.Title != "Contact" {
		t.Errorf("title = %q", schema.Title)
	}
	want := []models.Field{
		{Name: "name", Type: models.FieldTypeText, Label: "Name", Required: true},
		{Name: "email", Type: models.FieldTypeEmail, Label: "Email", Required: true},
	}
	if len(schema.Fields) != len(want) {
		t.Fatalf("fields = %+v", schema.Fields)
	}
	for i := range want {
		if schema.Fields[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, schema.Fields[i], want[i])
		}
	}
}

func TestParseSchema(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
		title   string
	}{
		{name: "bare json", text: `{"title":"A","fields":[{"name":"x","type":"text"}]}`, title: "A"},
		{name: "markdown fence", text: "```json\n{\"title\":\"B\",\"fields\":[]}\n```", title: "B"},
		{name: "prose both sides", text: `Here you go: {"title":"C","fields":[{"name":"x"}]} Hope it helps!`, title: "C"},
		{name: "nested braces", text: `{"title":"D","fields":[{"name":"x","validation":{"minLength":2}}]}`, title: "D"},
		{name: "empty", text: "   ", wantErr: ErrEmptyResponse},
		{name: "no braces", text: "I cannot help with that.", wantErr: ErrMalformedOutput},
		{name: "broken json", text: `{"title": "E", "fields": [}`, wantErr: ErrMalformedOutput},
		{name: "two objects", text: `{"title":"F"} and {"title":"G"}`, wantErr: ErrMalformedOutput},
		{name: "fields not a list", text: `{"title":"H","fields": "nope"}`, title: "H"},
		{name: "required as string", text: `{"title":"I","fields":[{"name":"a","required":"true"}]}`, title: "I"},
		{name: "numeric string rule", text: `{"title":"J","fields":[{"name":"a","validation":{"min":"18"}}]}`, title: "J"},
		{name: "whole float length", text: `{"title":"K","fields":[{"name":"a","validation":{"minLength":2.0}}]}`, title: "K"},
		{name: "fractional length", text: `{"title":"L","fields":[{"name":"a","validation":{"minLength":2.5}}]}`, title: "L"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := ParseSchema(tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if schema.Title != tt.title {
				t.Errorf("title = %q, want %q", schema.Title, tt.title)
			}
		})
	}
}

func TestGenerateFormSchemaFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		model   *fakeModel
		wantErr error
		calls   int
	}{
		{name: "empty prompt", prompt: " ", model: &fakeModel{}, wantErr: ErrEmptyPrompt, calls: 0},
		{name: "service error", prompt: "x", model: &fakeModel{err: errors.New("dial tcp: timeout")}, wantErr: ErrServiceUnavailable, calls: 1},
		{name: "empty text", prompt: "x", model: &fakeModel{text: ""}, wantErr: ErrEmptyResponse, calls: 1},
		{name: "no object", prompt: "x", model: &fakeModel{text: "sorry"}, wantErr: ErrMalformedOutput, calls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.model, logger.NewNop())
			_, err := g.GenerateFormSchema(context.Background(), tt.prompt)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.model.calls != tt.calls {
				t.Errorf("calls = %d, want %d (no retries)", tt.model.calls, tt.calls)
			}
		})
	}
}

func TestUserMessageDistinguishesFailures(t *testing.T) {
	errs := []error{ErrEmptyPrompt, ErrServiceUnavailable, ErrEmptyResponse, ErrMalformedOutput}
	seen := map[string]error{}
	for _, err := range errs {
		msg := UserMessage(err)
		if prev, ok := seen[msg]; ok {
			t.Errorf("%v and %v share message %q", prev, err, msg)
		}
		seen[msg] = err
	}
	if UserMessage(models.ErrInvalidSchema) != UserMessage(ErrMalformedOutput) {
		t.Error("invalid schema should read like malformed output")
	}
}

func TestPing(t *testing.T) {
	g := New(&fakeModel{text: "hi"}, logger.NewNop())
	if err := g.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	g = New(&fakeModel{err: errors.New("boom")}, logger.NewNop())
	if err := g.Ping(context.Background()); !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("Ping err = %v", err)
	}
}

func TestUnconfiguredModelIsUnavailable(t *testing.T) {
	g := New(Unconfigured{Reason: "set GEMINI_API_KEY"}, logger.NewNop())
	if _, err := g.GenerateFormSchema(context.Background(), "contact form"); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestParseSchemaCoercesLooseValues(t *testing.T) {
	schema, err := ParseSchema(`{"fields":[
		{"name":"age","type":"number","required":"true","validation":{"min":"18","max":99,"minLength":2.0,"maxLength":2.5}},
		{"name":"note","required":"nope","validation":{"pattern":5}}
	]}`)
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if len(schema.Fields) != 2 {
		t.Fatalf("fields = %+v", schema.Fields)
	}

	age := schema.Fields[0]
	if !age.Required {
		t.Error(`required "true" not coerced`)
	}
	v := age.Validation
	if v == nil {
		t.Fatal("validation dropped")
	}
	if v.Min == nil || *v.Min != 18 {
		t.Errorf("min = %v, want 18", v.Min)
	}
	if v.Max == nil || *v.Max != 99 {
		t.Errorf("max = %v, want 99", v.Max)
	}
	if v.MinLength == nil || *v.MinLength != 2 {
		t.Errorf("minLength = %v, want 2", v.MinLength)
	}
	if v.MaxLength != nil {
		t.Errorf("maxLength = %d, want dropped", *v.MaxLength)
	}

	note := schema.Fields[1]
	if note.Required {
		t.Error("unparseable required should be false")
	}
	if note.Validation != nil {
		t.Errorf("validation = %+v, want nil", note.Validation)
	}
}
