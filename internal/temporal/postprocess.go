package temporal

import (
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/caseline/internal/annotate"
	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/lexicon"
	"github.com/ppiankov/caseline/internal/model"
)

// Per-feature confidence by resolution provenance.
const (
	ConfDirect   = 0.9 // Associated DATE link
	ConfRelative = 0.8 // Resolved relative link
	ConfTimeRef  = 0.7 // Time-reference / clause resolution
	ConfZone     = 0.6 // Impact-zone fallback
)

// PostProcessor finalizes features that association left unresolved and
// cleans up the special cases: summary clauses, concomitant drugs,
// durations, and MULTIPLE expansion. It owns the per-feature confidence.
type PostProcessor struct {
	doc           string
	sentences     []extract.Sentence
	tokens        [][]extract.Token
	timeline      *Timeline
	refs          *RefTable
	clauses       []ClauseZone
	lex           *lexicon.Lexicon
	exposure      *time.Time
	preZoneLookup bool // VAERS-style reports consult the reference table before the first zone

	conf map[*model.Feature]float64
}

// NewPostProcessor wires a post-processor over the document's final state.
func NewPostProcessor(doc string, sentences []extract.Sentence, tokens [][]extract.Token,
	timeline *Timeline, refs *RefTable, clauses []ClauseZone, lex *lexicon.Lexicon,
	exposure *time.Time, preZoneLookup bool) *PostProcessor {
	return &PostProcessor{
		doc: doc, sentences: sentences, tokens: tokens, timeline: timeline,
		refs: refs, clauses: clauses, lex: lex, exposure: exposure,
		preZoneLookup: preZoneLookup,
		conf:          make(map[*model.Feature]float64),
	}
}

// Finalize runs the cleanup passes and returns the sorted, id-assigned
// feature list with per-feature confidence. Structural anomalies are
// skipped, never fatal: a feature that cannot be dated stays in the list
// with no link.
func (p *PostProcessor) Finalize(features []*model.Feature, timexes []*model.Timex) ([]*model.Feature, map[*model.Feature]float64) {
	p.baseConfidence(features)
	p.applyDurations(features, timexes)
	p.resolveClauses(features)
	p.propagateConcomitant(features)
	p.fallbacks(features)
	out := p.expandMultiples(features)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	for i, f := range out {
		f.ID = i + 1
	}
	return out, p.conf
}

func (p *PostProcessor) baseConfidence(features []*model.Feature) {
	for _, f := range features {
		if !f.Resolved() {
			continue
		}
		conf := ConfDirect
		for _, tm := range f.Link.Timexes {
			if tm.Type == model.TimexRel || tm.Type == model.TimexWeekday {
				conf = ConfRelative
				break
			}
		}
		p.conf[f] = conf
	}
}

// applyDurations converts DUR timexes into end dates. Each DUR attaches to
// the nearest dated feature of its sentence through a DURATION link, which
// then becomes BETWEEN (one start) or MULTI_DURATIONS (several starts).
// A duration with no dated feature to anchor on is skipped.
func (p *PostProcessor) applyDurations(features []*model.Feature, timexes []*model.Timex) {
	for _, dur := range timexes {
		if dur.Type != model.TimexDur || dur.Role != model.RoleNormal {
			continue
		}
		n, unit, ok := annotate.ParseDurationText(dur.Text)
		if !ok {
			continue
		}

		f := nearestDatedFeature(features, dur)
		if f == nil {
			continue
		}

		link := f.Link
		link.Type = model.LinkDuration
		starts := resolvedStarts(link)
		switch len(starts) {
		case 0:
			continue
		case 1:
			start := *starts[0].DateTime
			end := annotate.AddUnit(start, n, unit)
			link.Type = model.LinkBetween
			link.Timexes = append(link.Timexes, syntheticTimex(dur, end))
		default:
			link.Type = model.LinkMultiDurations
			link.Ends = nil
			for _, startTm := range starts {
				end := annotate.AddUnit(*startTm.DateTime, n, unit)
				link.Ends = append(link.Ends, syntheticTimex(dur, end))
			}
		}
	}
}

// resolveClauses gives clause-bound features one last chance through the
// time-reference table, keyed on the feature's drug/vaccine affinity. The
// clause frames its content as happening at or before the main clause, so
// the date never moves past one already assigned.
func (p *PostProcessor) resolveClauses(features []*model.Feature) {
	spans := p.summarySpans()
	cap := earliestAssigned(features)

	for _, f := range features {
		if f.Resolved() {
			continue
		}
		if !f.InClause && !coveredByAny(spans, f.Start) {
			continue
		}
		ref := p.refs.Lookup(clauseKinds(f.Type), model.RefConfZone)
		if ref == nil {
			continue
		}
		dt := ref.DateTime
		if cap != nil && dt.After(*cap) {
			dt = *cap
		}
		p.assign(f, dt, ConfTimeRef)
	}
}

// propagateConcomitant dates a concomitant drug from the nearest preceding
// dated drug/vaccine feature, falling back to the exposure date.
func (p *PostProcessor) propagateConcomitant(features []*model.Feature) {
	for i, f := range features {
		if f.Type != model.FeatureDrug || f.Resolved() {
			continue
		}
		if !p.nearConcomitant(f) {
			continue
		}

		var donor *model.Feature
		for j := i - 1; j >= 0; j-- {
			prev := features[j]
			if (prev.Type == model.FeatureDrug || prev.Type == model.FeatureVaccine) && prev.Resolved() {
				donor = prev
				break
			}
		}
		if donor != nil {
			p.assign(f, *donor.Link.StartDate(), ConfTimeRef)
		} else if p.exposure != nil {
			p.assign(f, *p.exposure, ConfTimeRef)
		}
	}
}

// fallbacks handles features still undated: a time-reference lookup before
// the first impact zone (VAERS-style reports only), then whichever zone
// covers the feature's offset.
func (p *PostProcessor) fallbacks(features []*model.Feature) {
	first := p.timeline.First()

	for _, f := range features {
		if f.Resolved() || f.InClause {
			continue
		}
		if p.preZoneLookup && first != nil && f.Start < first.Start {
			if ref := p.refs.Lookup(clauseKinds(f.Type), model.RefConfZone); ref != nil {
				p.assign(f, ref.DateTime, ConfTimeRef)
				continue
			}
		}
		if z := p.timeline.ZoneAt(f.Start); z != nil {
			p.assign(f, z.DateTime, ConfZone)
		}
	}
}

// expandMultiples splits a feature whose MULTIPLE link carries several
// dates into one feature instance per timex.
func (p *PostProcessor) expandMultiples(features []*model.Feature) []*model.Feature {
	var out []*model.Feature
	for _, f := range features {
		if f.Link == nil || f.Link.Type != model.LinkMultiple || len(f.Link.Timexes) < 2 {
			out = append(out, f)
			continue
		}
		for _, tm := range f.Link.Timexes {
			clone := *f
			clone.Link = &model.TLink{Type: model.LinkNormal, Timexes: []*model.Timex{tm.Clone()}}
			cf := &clone
			p.conf[cf] = p.conf[f]
			out = append(out, cf)
		}
		delete(p.conf, f)
	}
	return out
}

func (p *PostProcessor) assign(f *model.Feature, dt time.Time, conf float64) {
	f.Link = &model.TLink{
		Type:    model.LinkNormal,
		Timexes: []*model.Timex{{Type: model.TimexDate, Text: f.Text, Start: f.Start, End: f.End, Sentence: f.Sentence, DateTime: &dt, Role: model.RoleNormal, Completeness: 3}},
	}
	p.conf[f] = conf
}

// summarySpans locates "who presents with X" style clauses.
func (p *PostProcessor) summarySpans() []ClauseZone {
	var spans []ClauseZone
	lower := strings.ToLower(p.doc)
	for _, phrase := range p.lex.SummaryClauses {
		idx := 0
		for {
			i := strings.Index(lower[idx:], phrase)
			if i < 0 {
				break
			}
			start := idx + i
			end := len(p.doc)
			if si := extract.SentenceAt(p.sentences, start); si >= 0 {
				end = p.sentences[si].End
			}
			spans = append(spans, ClauseZone{Start: start, End: end})
			idx = start + len(phrase)
		}
	}
	return spans
}

func (p *PostProcessor) nearConcomitant(f *model.Feature) bool {
	if f.Sentence < 0 || f.Sentence >= len(p.sentences) {
		return false
	}
	return strings.Contains(strings.ToLower(p.sentences[f.Sentence].Text), "concomitant")
}

func nearestDatedFeature(features []*model.Feature, dur *model.Timex) *model.Feature {
	var best *model.Feature
	for _, f := range features {
		if f.Sentence != dur.Sentence || !f.Resolved() {
			continue
		}
		if f.Link.Type != model.LinkNormal && f.Link.Type != model.LinkMultiple {
			continue
		}
		if best == nil || absDist(f, dur) < absDist(best, dur) {
			best = f
		}
	}
	return best
}

func absDist(f *model.Feature, tm *model.Timex) int {
	if f.End <= tm.Start {
		return tm.Start - f.End
	}
	if tm.End <= f.Start {
		return f.Start - tm.End
	}
	return 0
}

func resolvedStarts(l *model.TLink) []*model.Timex {
	var out []*model.Timex
	for _, tm := range l.Timexes {
		if tm.Resolved() {
			out = append(out, tm)
		}
	}
	return out
}

func syntheticTimex(dur *model.Timex, end time.Time) *model.Timex {
	return &model.Timex{
		Type: model.TimexDate, Text: dur.Text, Start: dur.Start, End: dur.End,
		Sentence: dur.Sentence, DateTime: &end, Role: model.RoleNormal, Completeness: 3,
	}
}

func earliestAssigned(features []*model.Feature) *time.Time {
	var min *time.Time
	for _, f := range features {
		if !f.Resolved() {
			continue
		}
		dt := f.Link.StartDate()
		if dt != nil && (min == nil || dt.Before(*min)) {
			min = dt
		}
	}
	return min
}

func clauseKinds(t model.FeatureType) []model.AnchorKind {
	switch t {
	case model.FeatureDrug:
		return []model.AnchorKind{model.AnchorDrug, model.AnchorAdministration}
	case model.FeatureVaccine:
		return []model.AnchorKind{model.AnchorVaccine, model.AnchorVaccination, model.AnchorInjection}
	}
	return []model.AnchorKind{
		model.AnchorVaccination, model.AnchorInjection, model.AnchorVaccine,
		model.AnchorDrug, model.AnchorAdministration,
	}
}

func coveredByAny(spans []ClauseZone, offset int) bool {
	for _, s := range spans {
		if s.Covers(offset) {
			return true
		}
	}
	return false
}
