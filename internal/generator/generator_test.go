package generator

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formweave/formweave/internal/form"
)

// cannedChat returns fixed responses and records the requests it saw.
type cannedChat struct {
	responses []string
	err       error
	requests  []openai.ChatCompletionRequest
}

func (c *cannedChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	content := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}, nil
}

func baseConfig() *form.FormConfiguration {
	return &form.FormConfiguration{
		ID: "order-form",
		FieldConfigs: []form.FieldConfig{
			{Path: "quantity", Type: form.TypeNumber, Included: true},
			{Path: "price", Type: form.TypeNumber, Included: true},
		},
	}
}

func TestGenerateFieldDecodesAndValidates(t *testing.T) {
	chat := &cannedChat{responses: []string{
		"```json\n{\"path\": \"user.email\", \"label\": \"Email\", \"type\": \"email\", \"required\": true}\n```",
	}}
	svc := NewWithClient(chat, "", nil)

	field, err := svc.GenerateField(context.Background(), baseConfig(), "customer email address")
	require.NoError(t, err)
	assert.Equal(t, "user.email", field.Path)
	assert.Equal(t, form.TypeEmail, field.Type)
	assert.True(t, field.Required)
	assert.True(t, field.Included)
	require.Len(t, chat.requests, 1)
}

func TestGenerateFieldRejectsInvalidOutput(t *testing.T) {
	chat := &cannedChat{responses: []string{
		`{"path": "quantity", "type": "number"}`, // duplicates an existing path
	}}
	svc := NewWithClient(chat, "", nil)

	_, err := svc.GenerateField(context.Background(), baseConfig(), "anything")
	require.Error(t, err)
}

func TestGenerateFieldRejectsNonJSON(t *testing.T) {
	chat := &cannedChat{responses: []string{"sure! here's a field for you"}}
	svc := NewWithClient(chat, "", nil)

	_, err := svc.GenerateField(context.Background(), baseConfig(), "anything")
	require.Error(t, err)
}

func TestGenerateFieldPropagatesAPIError(t *testing.T) {
	chat := &cannedChat{err: errors.New("rate limited")}
	svc := NewWithClient(chat, "", nil)

	_, err := svc.GenerateField(context.Background(), baseConfig(), "anything")
	require.ErrorContains(t, err, "rate limited")
}

func TestGenerateFormulaForNewField(t *testing.T) {
	chat := &cannedChat{responses: []string{
		`{"formula": "quantity * price", "dependencies": ["quantity", "price"]}`,
	}}
	svc := NewWithClient(chat, "", nil)

	computed, err := svc.GenerateFormula(context.Background(), baseConfig(), "total", "line total")
	require.NoError(t, err)
	assert.Equal(t, "quantity * price", computed.Formula)
	assert.ElementsMatch(t, []string{"quantity", "price"}, computed.Dependencies)
}

func TestGenerateFormulaRejectsUnknownFunction(t *testing.T) {
	chat := &cannedChat{responses: []string{
		`{"formula": "SQRT(quantity)", "dependencies": ["quantity"]}`,
	}}
	svc := NewWithClient(chat, "", nil)

	_, err := svc.GenerateFormula(context.Background(), baseConfig(), "total", "square root")
	require.Error(t, err)
}
