package acestudy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider generates with Google Search grounding so questions can be
// modelled on real past papers. Citations come back as Sources.
type GeminiProvider struct {
	cfg        ProviderConfig
	httpClient *http.Client
}

// NewGeminiProvider creates a grounded Gemini provider
func NewGeminiProvider(pc ProviderConfig, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{
		cfg:        pc,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *GeminiProvider) Name() string {
	return p.cfg.Name
}

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if p.cfg.APIKey == "" {
		return nil, missingKey(p.cfg.Name)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     p.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: p.cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, &ProviderError{Provider: p.cfg.Name, Err: fmt.Errorf("failed to create client: %w", err)}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(Temperature),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	VerboseLog("Calling %s model %s with search grounding", p.cfg.Name, p.cfg.Model)

	result, err := client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(req.Prompt), config)
	if err != nil {
		status := 0
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		return nil, &ProviderError{Provider: p.cfg.Name, StatusCode: status, Err: err}
	}

	text := result.Text()
	if text == "" {
		text = "{}"
	}
	return &Completion{
		Text:    text,
		Sources: groundingSources(result),
	}, nil
}

// groundingSources collects the web citations of the first candidate.
// Defaults and empty URIs are handled by normalize.
func groundingSources(resp *genai.GenerateContentResponse) []Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return sources
}
