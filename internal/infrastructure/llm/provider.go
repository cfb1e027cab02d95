package llm

import (
	"fmt"

	"NewsBrief/internal/config"
	"NewsBrief/internal/ports"
)

// New picks the completer for the configured provider.
func New(cfg config.LLMConfig) (ports.Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: api key for %s is not configured", cfg.Provider)
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
