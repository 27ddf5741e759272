package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/caseline/internal/model"
)

// Renderer writes analysis results as JSON and Markdown and prints the
// stdout summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the result as indented JSON.
func (r *Renderer) RenderJSON(res *model.DocumentFeature, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes the feature and timex tables as a Markdown report.
func (r *Renderer) RenderMarkdown(res *model.DocumentFeature, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Case Analysis: %s\n\n", res.Subject)
	fmt.Fprintf(&b, "- Family: %s\n", res.Family)
	fmt.Fprintf(&b, "- Analyzed: %s\n", res.AnalyzedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Exposure date: %s\n", orUnknown(res.ExposureDate))
	fmt.Fprintf(&b, "- Onset date: %s\n", orUnknown(res.OnsetDate))
	if res.OnsetHours != 0 {
		fmt.Fprintf(&b, "- Onset interval: %d hours\n", res.OnsetHours)
	}
	fmt.Fprintf(&b, "- Confidence: %.1f\n\n", res.Confidence)

	b.WriteString("## Features\n\n")
	if len(res.Features) == 0 {
		b.WriteString("_No features extracted._\n\n")
	} else {
		b.WriteString("| ID | Type | Text | Start date | End date | Confidence |\n")
		b.WriteString("|----|------|------|------------|----------|------------|\n")
		for _, f := range res.Features {
			text := f.CleanText
			if text == "" {
				text = f.Text
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %.1f |\n",
				f.ID, f.Type, escapePipes(text), orUnknown(f.StartDate), orUnknown(f.EndDate), f.Confidence)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Temporal Expressions\n\n")
	if len(res.Timexes) == 0 {
		b.WriteString("_No temporal expressions found._\n\n")
	} else {
		b.WriteString("| Text | Date | Offset | Confidence |\n")
		b.WriteString("|------|------|--------|------------|\n")
		for _, tm := range res.Timexes {
			fmt.Fprintf(&b, "| %s | %s | %d | %.1f |\n",
				escapePipes(tm.Text), orUnknown(tm.Date), tm.Start, tm.Confidence)
		}
		b.WriteString("\n")
	}

	if len(res.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range res.Warnings {
			if w.Feature > 0 {
				fmt.Fprintf(&b, "- **%s** (feature %d): %s\n", w.Check, w.Feature, w.Detail)
			} else {
				fmt.Fprintf(&b, "- **%s**: %s\n", w.Check, w.Detail)
			}
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\nDates are extracted mechanically from the narrative; review before regulatory use.\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderLLMMarkdown writes the already-rendered LLM summary.
func (r *Renderer) RenderLLMMarkdown(markdown, path string) error {
	return os.WriteFile(path, []byte(markdown), 0o644)
}

// RenderSummary prints a one-screen summary to stdout.
func (r *Renderer) RenderSummary(res *model.DocumentFeature) {
	dated := 0
	for _, f := range res.Features {
		if f.StartDate != "" {
			dated++
		}
	}

	fmt.Printf("\nSubject:   %s\n", res.Subject)
	fmt.Printf("Family:    %s\n", res.Family)
	fmt.Printf("Features:  %d (%d dated)\n", len(res.Features), dated)
	fmt.Printf("Timexes:   %d\n", len(res.Timexes))
	fmt.Printf("Exposure:  %s\n", orUnknown(res.ExposureDate))
	fmt.Printf("Onset:     %s\n", orUnknown(res.OnsetDate))
	fmt.Printf("Confidence: %.1f\n", res.Confidence)
	if len(res.Warnings) > 0 {
		fmt.Printf("Warnings:  %d\n", len(res.Warnings))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
