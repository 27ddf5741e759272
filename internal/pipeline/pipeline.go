package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/caseline/internal/annotate"
	"github.com/ppiankov/caseline/internal/cache"
	"github.com/ppiankov/caseline/internal/estimate"
	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/extract/adapters"
	"github.com/ppiankov/caseline/internal/lexicon"
	"github.com/ppiankov/caseline/internal/llm"
	"github.com/ppiankov/caseline/internal/model"
	"github.com/ppiankov/caseline/internal/temporal"
	"github.com/ppiankov/caseline/internal/validate"
)

// Pipeline orchestrates the complete analysis of one narrative
type Pipeline struct {
	lex        *lexicon.Lexicon
	registry   *adapters.Registry
	annotator  annotate.Annotator
	validator  *validate.Validator
	renderer   *Renderer
	summarizer *llm.Summarizer    // Optional LLM summarizer (nil if disabled)
	results    *cache.ResultStore // Nil when caching is disabled
	loader     *Loader
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration. A broken
// lexicon is the one fatal condition; everything downstream degrades.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	lex, err := loadLexicon(cfg.Lexicon.Path)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Printf("Warning: Failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			store = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			store = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		}
	}

	return &Pipeline{
		lex:        lex,
		registry:   adapters.NewRegistry(),
		annotator:  annotate.NewRuleAnnotator(),
		validator:  validate.NewValidator(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		results:    cache.NewResultStore(store, cfg.Cache.TTL),
		loader:     NewLoader(cfg.Analysis.MaxBodyBytes),
		config:     cfg,
	}, nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	return lexicon.Load(path)
}

// AnalyzeFile loads one narrative file and analyzes it under the configured
// report family.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*model.DocumentFeature, error) {
	loaded, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}

	req := model.Request{
		Text:   loaded.Text,
		Family: model.ReportFamily(p.config.Analysis.Family),
	}
	return p.Analyze(ctx, req, loaded.Subject)
}

// Analyze runs the full extraction over one narrative. The returned result
// is complete even when parts of the narrative resisted analysis, empty
// input included; only an oversized input or a cancelled context fail.
func (p *Pipeline) Analyze(ctx context.Context, req model.Request, subject string) (*model.DocumentFeature, error) {
	if int64(len(req.Text)) > p.config.Analysis.MaxBodyBytes {
		return nil, fmt.Errorf("narrative exceeds %d bytes", p.config.Analysis.MaxBodyBytes)
	}
	if req.Family == "" {
		req.Family = model.ReportFamily(p.config.Analysis.Family)
	}

	if cached, ok := p.results.Get(req.Text, req.Family); ok {
		cached.Subject = subject
		return cached, nil
	}

	if p.config.Analysis.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Analysis.Timeout)
		defer cancel()
	}

	adapter := p.registry.Find(req.Family)
	doc := adapter.Normalize(req.Text)

	exposure := parseUserDate(req.ExposureDate)
	onset := parseUserDate(req.OnsetDate)
	received := parseUserDate(req.ReceivedDate)

	// Lexical analysis
	sentences := extract.SplitSentences(doc)
	classes := temporal.ClassifySentences(sentences, p.lex)

	tagger := extract.NewTagger(p.lex)
	chunker := extract.NewChunker(p.lex, doc)

	tokens := make([][]extract.Token, len(sentences))
	var features []*model.Feature
	for i, s := range sentences {
		tokens[i] = tagger.Tag(s)
		for _, f := range chunker.Chunk(s, tokens[i]) {
			fc := f
			features = append(features, &fc)
		}
	}

	// Temporal annotation. Annotator failure degrades to an undated table.
	timexes, err := p.annotator.Annotate(doc, received)
	if err != nil {
		fmt.Printf("Warning: timex annotation failed: %v\n", err)
		timexes = nil
	}
	for _, tm := range timexes {
		tm.Sentence = extract.SentenceAt(sentences, tm.Start)
	}
	temporal.SuppressRoles(doc, timexes, p.lex)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	// Link building per sentence
	bySentence := timexesBySentence(timexes, len(sentences))
	links := make([][]*model.TLink, len(sentences))
	clauses := make([][]temporal.ClauseZone, len(sentences))
	var allClauses []temporal.ClauseZone
	for i, s := range sentences {
		links[i], clauses[i] = temporal.BuildLinks(doc, s, bySentence[i])
		allClauses = append(allClauses, clauses[i]...)
	}

	// Timeline, references, relative resolution
	timeline := temporal.NewTimeline(doc, sentences, classes)
	timeline.Build(timexes)
	refs := temporal.BuildRefs(sentences, classes, tokens, timexes, exposure, onset, req.Family)
	temporal.NewResolver(doc, sentences, tokens, timexes, timeline, refs, p.lex, exposure, onset).ResolveAll()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	// Association, sentence by sentence, after resolution so clones carry dates
	featsBySentence := featuresBySentence(features, len(sentences))
	for i := range sentences {
		temporal.Associate(doc, featsBySentence[i], links[i], bySentence[i], clauses[i])
	}

	// Document date estimation
	estimator := estimate.NewEstimator(adapter.ExposureKinds())
	est := estimator.Estimate(exposure, onset, features, timexes, refs)

	// Post-processing
	post := temporal.NewPostProcessor(doc, sentences, tokens, timeline, refs, allClauses,
		p.lex, est.Exposure, adapter.PreZoneLookup())
	final, conf := post.Finalize(features, timexes)

	result := p.buildResult(doc, subject, req, final, conf, timexes, est)
	result.Warnings = p.validator.Check(doc, result, timeline.Zones())

	// LLM summary runs last and never alters the tables
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *result)
		if err != nil {
			fmt.Printf("Warning: LLM summary generation failed: %v\n", err)
		} else if summary != nil {
			result.LLM = summary
		}
	}

	if err := p.results.Set(req.Text, req.Family, result); err != nil {
		fmt.Printf("Warning: cache write failed: %v\n", err)
	}

	return result, nil
}

// RenderResult renders the result to the requested outputs and prints the
// stdout summary.
func (p *Pipeline) RenderResult(res *model.DocumentFeature, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(res, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(res, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if res.LLM != nil && res.LLM.Enabled && mdPath != "" {
		llmPath := trimMarkdownExt(mdPath) + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(res.LLM), llmPath); err != nil {
			fmt.Printf("Warning: Failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Printf("✓ Wrote LLM Summary: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(res)
	return nil
}

func (p *Pipeline) buildResult(doc, subject string, req model.Request, features []*model.Feature,
	conf map[*model.Feature]float64, timexes []*model.Timex, est estimate.Result) *model.DocumentFeature {

	res := &model.DocumentFeature{
		Subject:      subject,
		AnalyzedAt:   time.Now().UTC(),
		Family:       req.Family,
		ExposureDate: model.FormatDate(est.Exposure),
		OnsetDate:    model.FormatDate(est.Onset),
		ReceivedDate: req.ReceivedDate,
		Confidence:   est.Confidence,
	}
	if est.OnsetHours != nil {
		res.OnsetHours = int(*est.OnsetHours)
	}

	for _, f := range features {
		row := model.FeatureRow{
			Type:       f.Type,
			Text:       f.Text,
			CleanText:  f.CleanText,
			Sentence:   f.Sentence,
			Start:      f.Start,
			End:        f.End,
			ID:         f.ID,
			Comment:    f.Comment,
			MatchLevel: f.MatchLevel,
			Confidence: conf[f],
		}
		if f.Resolved() {
			row.StartDate = model.FormatDate(f.Link.StartDate())
			row.EndDate = model.FormatDate(f.Link.EndDate())
		}
		res.Features = append(res.Features, row)
	}

	sorted := make([]*model.Timex, len(timexes))
	copy(sorted, timexes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for _, tm := range sorted {
		row := model.TimexRow{Text: tm.Text, Start: tm.Start}
		if tm.Resolved() {
			row.Date = tm.DateTime.Format(model.DateOnly)
			row.Confidence = float64(tm.Completeness) / 3
		}
		res.Timexes = append(res.Timexes, row)
	}

	return res
}

// parseUserDate accepts the table format plus the slash forms callers
// actually type. Unparseable input counts as absent.
func parseUserDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{model.DateOnly, "01/02/2006", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func timexesBySentence(timexes []*model.Timex, n int) [][]*model.Timex {
	out := make([][]*model.Timex, n)
	for _, tm := range timexes {
		if tm.Sentence >= 0 && tm.Sentence < n {
			out[tm.Sentence] = append(out[tm.Sentence], tm)
		}
	}
	return out
}

func featuresBySentence(features []*model.Feature, n int) [][]*model.Feature {
	out := make([][]*model.Feature, n)
	for _, f := range features {
		if f.Sentence >= 0 && f.Sentence < n {
			out[f.Sentence] = append(out[f.Sentence], f)
		}
	}
	return out
}

func trimMarkdownExt(path string) string {
	if len(path) > 3 && path[len(path)-3:] == ".md" {
		return path[:len(path)-3]
	}
	return path
}
