package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/caseline/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config. The API key is
// read from the environment, never from the config file.
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	cfg := DefaultConfig()
	cfg.Provider = modelConfig.Provider
	cfg.Model = modelConfig.Model
	cfg.BaseURL = modelConfig.BaseURL

	cfg.APIKey = modelConfig.APIKey
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg
}
