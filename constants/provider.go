package constants

import "strings"

// Provider identifies a language-model backend implementing the extractor contract.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Providers lists every selectable backend.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini}

// ParseProvider maps a user-supplied label to a Provider. Empty input selects OpenAI.
func ParseProvider(s string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "openai", "gpt":
		return ProviderOpenAI, true
	case "anthropic", "claude":
		return ProviderAnthropic, true
	case "gemini", "google":
		return ProviderGemini, true
	}
	return "", false
}
