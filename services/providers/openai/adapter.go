package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
)

// DefaultModel is the chat model used when none is configured
const DefaultModel = "gpt-3.5-turbo"

// Adapter implements providers.Provider on top of the OpenAI chat completions API
type Adapter struct {
	client oai.Client
	model  string
}

// NewAdapter creates a new OpenAI adapter.
// SDK retries are disabled so that one Invoke is exactly one upstream call
func NewAdapter(config providers.ProviderConfig) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai API key is not configured")
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	return &Adapter{
		client: oai.NewClient(opts...),
		model:  model,
	}, nil
}

// Name returns the provider name
func (a *Adapter) Name() providers.Name {
	return providers.OpenAI
}

// Model returns the configured chat model
func (a *Adapter) Model() string {
	return a.model
}

// Invoke sends the prompt as a single user message
func (a *Adapter) Invoke(ctx context.Context, prompt string) (string, error) {
	completion, err := a.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage(prompt),
		},
		Model: oai.ChatModel(a.model),
	})
	if err != nil {
		return "", a.handleError(err)
	}

	if len(completion.Choices) == 0 {
		return "", providers.NewProviderError(a.Name(), providers.CodeEmptyResponse, "no choices in response", 0, false, nil)
	}

	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		reason := completion.Choices[0].FinishReason
		return "", providers.NewProviderError(a.Name(), providers.CodeEmptyResponse,
			fmt.Sprintf("empty completion (finish_reason=%s)", reason), 0, false, nil)
	}

	return content, nil
}

// handleError converts SDK failures into provider errors
func (a *Adapter) handleError(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		code, transient := providers.ClassifyStatus(apiErr.StatusCode)
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.StatusCode)
		}
		return providers.NewProviderError(a.Name(), code, message, apiErr.StatusCode, transient, err)
	}

	return providers.AsProviderError(a.Name(), err)
}
