package acestudy

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (OpenRouter, Groq)
type OpenAIProvider struct {
	cfg    ProviderConfig
	client *openai.Client
}

// NewOpenAIProvider creates a provider for the given endpoint. A missing API
// key is reported when Complete is called, so the chain can move on.
func NewOpenAIProvider(pc ProviderConfig, timeout time.Duration) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(pc.APIKey)
	if pc.BaseURL != "" {
		clientCfg.BaseURL = pc.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			headers: pc.Headers,
			base:    http.DefaultTransport,
		},
	}

	return &OpenAIProvider{
		cfg:    pc,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (p *OpenAIProvider) Name() string {
	return p.cfg.Name
}

// Complete sends the prompt as a single user message
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if p.cfg.APIKey == "" {
		return nil, missingKey(p.cfg.Name)
	}

	VerboseLog("Calling %s model %s", p.cfg.Name, p.cfg.Model)

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.Prompt,
				},
			},
			Temperature: Temperature,
		},
	)
	if err != nil {
		return nil, &ProviderError{
			Provider:   p.cfg.Name,
			StatusCode: statusCode(err),
			Err:        err,
		}
	}

	VerboseLog("Received response from %s with %d choices", p.cfg.Name, len(resp.Choices))

	// an empty answer still goes through extraction and degrades there
	text := "{}"
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		text = resp.Choices[0].Message.Content
	}
	return &Completion{Text: text}, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
