package llm

import (
	"fmt"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

// New returns the generator selected by cfg.Provider. It fails with
// domain.ErrMissingCredential when the provider key is absent.
func New(cfg config.SummarizerConfig) (ports.Generator, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, domain.ErrMissingCredential)
	}

	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiClient(cfg, key, nil), nil
	case "openai":
		return NewOpenAIGenerator(cfg, key), nil
	case "anthropic":
		return NewAnthropicGenerator(cfg, key), nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}
