package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

// NewFromConfig elige la implementacion segun el proveedor configurado.
// Sin API key devuelve nil: el preview responde con un texto simulado.
func NewFromConfig(provider, baseURL, apiKey, model string, logger *zap.Logger) (LLMClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderHTTP:
		return NewHTTPClient(baseURL, apiKey, model, logger), nil
	case ProviderOpenAI:
		c, err := NewOpenAIClient(baseURL, apiKey, model, "")
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
