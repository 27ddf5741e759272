package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/caseline/internal/model"
)

func newTestServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: reply}},
			},
			Usage: openai.Usage{TotalTokens: 42},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("expected an error without an API key")
	}

	p, err := NewOpenAIProvider(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected provider name openai, got %s", p.Name())
	}
}

func TestOpenAIProvider_Summarize(t *testing.T) {
	server := newTestServer(t, "  The patient developed a rash after vaccination.  ")
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	resp, err := p.Summarize(context.Background(), SummarizeRequest{
		Result: model.DocumentFeature{Family: model.FamilyVAERS},
		Model:  "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.Summary != "The patient developed a rash after vaccination." {
		t.Errorf("expected trimmed summary, got %q", resp.Summary)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", resp.Model)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("expected 42 tokens, got %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini","choices":[]}`))
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := p.Summarize(context.Background(), SummarizeRequest{}); err == nil {
		t.Error("expected an error for an empty choices list")
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil || p != nil {
		t.Errorf("expected disabled provider, got %v (%v)", p, err)
	}

	p, err = NewProvider(Config{Provider: "openai", APIKey: "test-key"})
	if err != nil || p == nil {
		t.Fatalf("expected an openai provider, got %v (%v)", p, err)
	}

	if _, err := NewProvider(Config{Provider: "unknown"}); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestBuildPrompt(t *testing.T) {
	res := model.DocumentFeature{
		Family:       model.FamilyVAERS,
		ExposureDate: "2020-01-01",
		Confidence:   0.8,
		Features: []model.FeatureRow{
			{Type: model.FeatureSymptom, Text: "rash", StartDate: "2020-01-04", Confidence: 0.8},
			{Type: model.FeatureVaccine, Text: "flu shot"},
		},
	}

	prompt := BuildPrompt(res)

	if !strings.Contains(prompt, "Exposure date: 2020-01-01") {
		t.Error("prompt must restate the exposure date")
	}
	if !strings.Contains(prompt, "Onset date: UNKNOWN") {
		t.Error("a missing onset date must render as UNKNOWN")
	}
	if !strings.Contains(prompt, "rash") || !strings.Contains(prompt, "2020-01-04") {
		t.Error("prompt must list dated findings")
	}
	if !strings.Contains(prompt, "flu shot (UNKNOWN") {
		t.Error("an undated finding must render as UNKNOWN")
	}
	if !strings.Contains(prompt, "Do not infer new dates") {
		t.Error("prompt must forbid inventing dates")
	}
}

func TestBuildPrompt_CapsFeatureList(t *testing.T) {
	res := model.DocumentFeature{}
	for i := 0; i < 35; i++ {
		res.Features = append(res.Features, model.FeatureRow{Type: model.FeatureSymptom, Text: "itch"})
	}

	prompt := BuildPrompt(res)
	if !strings.Contains(prompt, "and 5 more findings") {
		t.Error("prompt must cap the feature list at 30 entries")
	}
}

func TestSummarizer(t *testing.T) {
	var nilSummarizer *Summarizer
	if nilSummarizer.IsEnabled() {
		t.Error("a nil summarizer must report disabled")
	}

	disabled, err := NewSummarizer(Config{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if disabled.IsEnabled() {
		t.Error("an empty provider must report disabled")
	}
	if summary, err := disabled.GenerateSummary(context.Background(), model.DocumentFeature{}); summary != nil || err != nil {
		t.Errorf("disabled summarizer must return nothing, got %v (%v)", summary, err)
	}

	server := newTestServer(t, "Case summary text.")
	defer server.Close()

	s, err := NewSummarizer(Config{Provider: "openai", APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !s.IsEnabled() {
		t.Fatal("expected an enabled summarizer")
	}

	summary, err := s.GenerateSummary(context.Background(), model.DocumentFeature{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !summary.Enabled || summary.Provider != "openai" || summary.SummaryMD != "Case summary text." {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	if out := RenderSeparateMarkdown(nil); out != "" {
		t.Errorf("expected empty output for nil summary, got %q", out)
	}
	if out := RenderSeparateMarkdown(&model.LLMSummary{}); out != "" {
		t.Errorf("expected empty output for disabled summary, got %q", out)
	}

	out := RenderSeparateMarkdown(&model.LLMSummary{
		Enabled: true, Provider: "openai", Model: "gpt-4o-mini", SummaryMD: "Body text.",
	})
	if !strings.Contains(out, "# Case Summary") || !strings.Contains(out, "Body text.") {
		t.Errorf("unexpected render: %q", out)
	}
	if !strings.Contains(out, "openai") {
		t.Error("render must name the provider")
	}
}
