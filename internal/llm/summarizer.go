package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/caseline/internal/model"
)

// Summarizer wraps a provider and produces the optional LLMSummary block
// attached to a finished analysis. It runs after extraction and its output
// never feeds back into the tables.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer, or an error when the configured
// provider cannot be constructed.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// GenerateSummary asks the provider for a case summary.
func (s *Summarizer) GenerateSummary(ctx context.Context, res model.DocumentFeature) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Result:    res,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	return &model.LLMSummary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
	}, nil
}

// RenderSeparateMarkdown renders the summary as a standalone document.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}
	return fmt.Sprintf("# Case Summary\n\n_Generated by %s (%s). Review against the extracted tables before use._\n\n%s\n",
		summary.Provider, summary.Model, summary.SummaryMD)
}
