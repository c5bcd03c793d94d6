// Package generator drafts field configurations from natural-language
// descriptions using an OpenAI-compatible chat model.
//
// Model output is never trusted: every generated fragment is decoded into
// the typed config structs and run through the compiler's static
// validation before it is returned.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/formweave/formweave/internal/compiler"
	"github.com/formweave/formweave/internal/form"
)

// ChatCompleter is the slice of the OpenAI client the generator uses.
// *openai.Client satisfies it; tests substitute a canned implementation.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service generates form configuration fragments.
type Service struct {
	chat   ChatCompleter
	model  string
	logger *slog.Logger
}

// New creates a Service backed by the OpenAI API.
func New(apiKey, model string, logger *slog.Logger) *Service {
	return NewWithClient(openai.NewClient(apiKey), model, logger)
}

// NewWithClient creates a Service around any ChatCompleter.
func NewWithClient(chat ChatCompleter, model string, logger *slog.Logger) *Service {
	if model == "" {
		model = openai.GPT4oMini
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{chat: chat, model: model, logger: logger}
}

const fieldSystemPrompt = `You design form field configurations.
Respond with a single JSON object and nothing else. The object has these
keys: path (dotted lowercase), label, type (one of: string, number,
boolean, date, email, select, textarea, array), required (bool), and
optionally validation ({min, max, minLength, maxLength, pattern}) and
attributes ({options: [...]} for select). Do not wrap the JSON in
markdown fences.`

const formulaSystemPrompt = `You write spreadsheet-style formulas over
dotted field paths. Allowed functions: ROUND, ABS, MIN, MAX. Allowed
operators: + - * / % comparison and ternary. Respond with a single JSON
object: {"formula": "...", "dependencies": ["path", ...]} and nothing
else. Dependencies must list every field path the formula references.`

// GenerateField asks the model for one field config matching the
// description and validates it in the context of the existing form.
func (s *Service) GenerateField(ctx context.Context, cfg *form.FormConfiguration, description string) (*form.FieldConfig, error) {
	raw, err := s.complete(ctx, fieldSystemPrompt, description)
	if err != nil {
		return nil, err
	}

	field := &form.FieldConfig{}
	if err := json.Unmarshal([]byte(raw), field); err != nil {
		return nil, fmt.Errorf("model returned invalid field config: %w", err)
	}
	field.Included = true

	trial := &form.FormConfiguration{
		ID:           cfg.ID,
		Name:         cfg.Name,
		FieldConfigs: append(append([]form.FieldConfig{}, cfg.FieldConfigs...), *field),
		Lifecycle:    cfg.Lifecycle,
	}
	if errs := compiler.Validate(trial); len(errs) > 0 {
		return nil, fmt.Errorf("generated field is invalid: %w", errs[0])
	}

	s.logger.Info("field generated", "path", field.Path, "type", field.Type)
	return field, nil
}

// GenerateFormula asks the model for a computed-field formula over the
// form's existing fields.
func (s *Service) GenerateFormula(ctx context.Context, cfg *form.FormConfiguration, path, description string) (*form.ComputedConfig, error) {
	var fields []string
	for _, f := range cfg.FieldConfigs {
		if f.Included && f.Path != path {
			fields = append(fields, fmt.Sprintf("%s (%s)", f.Path, f.Type))
		}
	}
	prompt := fmt.Sprintf("Available fields:\n%s\n\nFormula for %q: %s",
		strings.Join(fields, "\n"), path, description)

	raw, err := s.complete(ctx, formulaSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	computed := &form.ComputedConfig{}
	if err := json.Unmarshal([]byte(raw), computed); err != nil {
		return nil, fmt.Errorf("model returned invalid formula config: %w", err)
	}

	trial := &form.FormConfiguration{ID: cfg.ID, Lifecycle: cfg.Lifecycle}
	for _, f := range cfg.FieldConfigs {
		if f.Path == path {
			f.Computed = computed
		}
		trial.FieldConfigs = append(trial.FieldConfigs, f)
	}
	if _, ok := cfg.Field(path); !ok {
		trial.FieldConfigs = append(trial.FieldConfigs, form.FieldConfig{
			Path: path, Type: form.TypeNumber, Included: true, Computed: computed,
		})
	}
	if errs := compiler.Validate(trial); len(errs) > 0 {
		return nil, fmt.Errorf("generated formula is invalid: %w", errs[0])
	}

	s.logger.Info("formula generated", "path", path, "formula", computed.Formula)
	return computed, nil
}

// complete runs one chat turn and returns the trimmed message content.
func (s *Service) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := s.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content), nil
}
