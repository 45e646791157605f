package factory

import (
	"fmt"
	"log/slog"

	"github.com/reamshq/statement-parser/constants"
	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/llm"
	"github.com/reamshq/statement-parser/internal/llm/anthropic"
	"github.com/reamshq/statement-parser/internal/llm/gemini"
	"github.com/reamshq/statement-parser/internal/llm/openai"
)

// New builds the extractor for the selected provider. Adapters are cheap to
// construct, so each parse request gets its own instance and no state is
// shared across requests.
func New(provider constants.Provider, cfg common.LLMConfig, logger *slog.Logger) (llm.Extractor, error) {
	// LLM_MODEL names a model for the configured default provider; a
	// per-request provider override falls back to that adapter's default.
	model := ""
	if provider == cfg.Provider {
		model = cfg.Model
	}
	switch provider {
	case constants.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case constants.ProviderAnthropic:
		return anthropic.NewClient(logger), nil
	case constants.ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  model,
		}, logger), nil
	}
	return nil, fmt.Errorf("unknown provider %q", provider)
}
