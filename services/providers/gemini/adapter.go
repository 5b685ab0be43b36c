package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
)

// DefaultModel is the Gemini model used when none is configured
const DefaultModel = "gemini-2.0-flash"

// generator is the subset of *genai.GenerativeModel the adapter uses
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Adapter implements providers.Provider on top of the Gemini API
type Adapter struct {
	client  *genai.Client
	model   generator
	name    string
	timeout time.Duration
}

// NewAdapter creates a Gemini client once and keeps it for the process lifetime
func NewAdapter(ctx context.Context, config providers.ProviderConfig) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, errors.New("gemini API key is not configured")
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}

	name := config.Model
	if name == "" {
		name = DefaultModel
	}

	return &Adapter{
		client:  client,
		model:   client.GenerativeModel(name),
		name:    name,
		timeout: config.Timeout,
	}, nil
}

// newWithGenerator builds an adapter around an existing generator
func newWithGenerator(model generator, name string, timeout time.Duration) *Adapter {
	return &Adapter{model: model, name: name, timeout: timeout}
}

// Name returns the provider name
func (a *Adapter) Name() providers.Name {
	return providers.Gemini
}

// Model returns the configured model
func (a *Adapter) Model() string {
	return a.name
}

// Invoke sends the prompt as a single text part and joins the text parts of the first candidate
func (a *Adapter) Invoke(ctx context.Context, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", a.handleError(err)
	}

	return a.extractText(resp)
}

// Close releases the underlying client
func (a *Adapter) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (a *Adapter) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", providers.NewProviderError(a.Name(), providers.CodeEmptyResponse, "nil response", 0, false, nil)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", providers.NewProviderError(a.Name(), providers.CodeBlocked,
			fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason), 0, false, nil)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", providers.NewProviderError(a.Name(), providers.CodeEmptyResponse, "no candidates in response", 0, false, nil)
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := sb.String()
	if strings.TrimSpace(out) == "" {
		if candidate.FinishReason == genai.FinishReasonSafety {
			return "", providers.NewProviderError(a.Name(), providers.CodeBlocked, "response blocked by safety filters", 0, false, nil)
		}
		return "", providers.NewProviderError(a.Name(), providers.CodeEmptyResponse, "candidate has no text", 0, false, nil)
	}

	return out, nil
}

// handleError converts gRPC and context failures into provider errors
func (a *Adapter) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return providers.AsProviderError(a.Name(), err)
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return providers.NewProviderError(a.Name(), providers.CodeBlocked, "content blocked", 0, false, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return providers.AsProviderError(a.Name(), err)
	}

	code, transient := classifyCode(st.Code())
	return providers.NewProviderError(a.Name(), code, st.Message(), 0, transient, err)
}

func classifyCode(c codes.Code) (string, bool) {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return providers.CodeAuthentication, false
	case codes.ResourceExhausted:
		return providers.CodeRateLimited, true
	case codes.DeadlineExceeded:
		return providers.CodeTimeout, true
	case codes.Unavailable, codes.Internal, codes.Aborted:
		return providers.CodeUnavailable, true
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
		return providers.CodeBadRequest, false
	}
	return providers.CodeUnknown, false
}
