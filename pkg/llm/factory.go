package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// NewTextGenerator creates a generation client for the configured provider.
// Supported providers: "openai" (any OpenAI-compatible endpoint) and
// "anthropic". A missing credential surfaces as a config-class error here
// rather than on the first request.
func NewTextGenerator(provider string, cfg *Config, logger *zap.Logger) (TextGenerator, error) {
	switch provider {
	case "", "openai":
		client, err := NewOpenAIClient(cfg, logger)
		if err != nil {
			return nil, NewError(ErrorTypeConfig, fmt.Sprintf("create openai client: %v", err), false, err)
		}
		return client, nil
	case "anthropic":
		client, err := NewAnthropicClient(cfg, logger)
		if err != nil {
			return nil, NewError(ErrorTypeConfig, fmt.Sprintf("create anthropic client: %v", err), false, err)
		}
		return client, nil
	}
	return nil, NewError(ErrorTypeConfig, fmt.Sprintf("unknown provider %q", provider), false, nil)
}
