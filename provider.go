package acestudy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// CompletionRequest is what a provider is asked to complete
type CompletionRequest struct {
	Prompt string
	// SystemInstruction is only used by providers that support one
	SystemInstruction string
}

// Completion is the raw text a provider returned, plus any citations it
// attached
type Completion struct {
	Text    string
	Sources []Source
}

// Provider is one LLM endpoint in the fallback chain
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// NewProvider builds the provider for a configuration entry
func NewProvider(pc ProviderConfig, cfg Config) (Provider, error) {
	switch pc.Name {
	case ProviderOpenRouter, ProviderGroq:
		return NewOpenAIProvider(pc, cfg.ProviderTimeout), nil
	case ProviderGemini:
		return NewGeminiProvider(pc, cfg.ProviderTimeout), nil
	}
	return nil, fmt.Errorf("unknown provider %q", pc.Name)
}

// ProvidersFromConfig builds the fallback chain in PROVIDER_ORDER order.
// Unknown names are logged and skipped.
func ProvidersFromConfig(cfg Config) []Provider {
	var providers []Provider
	seen := make(map[string]bool)
	for _, name := range cfg.ProviderOrder {
		key := strings.ToLower(name)
		pc, ok := cfg.Provider(key)
		if !ok {
			Log.WithField("provider", name).Warn("ignoring unknown provider in PROVIDER_ORDER")
			continue
		}
		// a failed provider is superseded, never called twice
		if seen[key] {
			Log.WithField("provider", name).Warn("ignoring repeated provider in PROVIDER_ORDER")
			continue
		}
		seen[key] = true
		p, err := NewProvider(pc, cfg)
		if err != nil {
			Log.WithField("provider", name).WithError(err).Warn("failed to create provider")
			continue
		}
		providers = append(providers, p)
	}
	return providers
}

func missingKey(provider string) error {
	return &ConfigurationError{
		Provider: provider,
		Setting:  strings.ToUpper(provider) + "_API_KEY",
	}
}

// headerTransport adds fixed headers to every outgoing request
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
