package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/caseline/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a reviewer-facing case summary from the
	// extracted tables
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for case summarization
type SummarizeRequest struct {
	// Result is the finished analysis to summarize
	Result model.DocumentFeature

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 800,
	}
}

// BuildPrompt constructs the default prompt. The summary must restate the
// extracted tables only, never add dates or findings of its own.
func BuildPrompt(res model.DocumentFeature) string {
	prompt := fmt.Sprintf(`You are summarizing an adverse event case for a human reviewer. The tables below were extracted mechanically from the narrative; your summary must restate them faithfully.

CRITICAL RULES:
1. Mention ONLY the findings and dates listed below. Do not infer new dates.
2. A finding with no date is undated; say so, never guess.
3. Do not speculate about causality.

Case:
- Report family: %s
- Exposure date: %s
- Onset date: %s
- Overall confidence: %.1f

Findings:
`, res.Family, orUnknown(res.ExposureDate), orUnknown(res.OnsetDate), res.Confidence)

	for i, f := range res.Features {
		if i >= 30 {
			prompt += fmt.Sprintf("... and %d more findings\n", len(res.Features)-30)
			break
		}
		date := orUnknown(f.StartDate)
		if f.EndDate != "" {
			date += " to " + f.EndDate
		}
		prompt += fmt.Sprintf("- [%s] %s (%s, confidence %.1f)\n", f.Type, f.Text, date, f.Confidence)
	}

	prompt += "\nWrite a 3-5 sentence chronological summary of the case."
	return prompt
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
