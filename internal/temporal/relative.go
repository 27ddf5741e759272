package temporal

import (
	"time"

	"github.com/ppiankov/caseline/internal/annotate"
	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/lexicon"
	"github.com/ppiankov/caseline/internal/model"
)

// Resolver converts relative timexes into concrete dates. Day-count forms
// ("day 3", "the third day", bare weekdays) resolve against the nearest
// preceding anchor; everything else is classified by signal words and
// resolved against impact zones or forward anchors. Every resolution is
// folded back into the timeline and reference table so later timexes can
// anchor off it.
type Resolver struct {
	doc       string
	sentences []extract.Sentence
	tokens    [][]extract.Token
	timexes   []*model.Timex
	timeline  *Timeline
	refs      *RefTable
	lex       *lexicon.Lexicon
	exposure  *time.Time
	onset     *time.Time
}

// NewResolver wires a resolver over the document's temporal state.
func NewResolver(doc string, sentences []extract.Sentence, tokens [][]extract.Token,
	timexes []*model.Timex, timeline *Timeline, refs *RefTable, lex *lexicon.Lexicon,
	exposure, onset *time.Time) *Resolver {
	return &Resolver{
		doc: doc, sentences: sentences, tokens: tokens, timexes: timexes,
		timeline: timeline, refs: refs, lex: lex, exposure: exposure, onset: onset,
	}
}

// ResolveAll walks the document's relative timexes in order. Unresolvable
// expressions are left untouched; that is not an error.
func (r *Resolver) ResolveAll() {
	for _, tm := range r.timexes {
		if tm.Role != model.RoleNormal || tm.Resolved() {
			continue
		}
		switch tm.Type {
		case model.TimexRel, model.TimexWeekday:
			r.resolve(tm)
		}
	}
}

func (r *Resolver) resolve(tm *model.Timex) {
	// Day-count forms first
	if n, ok := annotate.ParseDayNumber(tm.Text); ok {
		if anchor := r.anchorBefore(tm); anchor != nil {
			r.set(tm, anchor.AddDate(0, 0, n-1))
		}
		return
	}
	if wd, ok := annotate.Weekday(tm.Text); ok && tm.Type == model.TimexWeekday {
		if anchor := r.anchorBefore(tm); anchor != nil {
			delta := (int(wd) - int(anchor.Weekday()) + 7) % 7
			r.set(tm, anchor.AddDate(0, 0, delta))
		}
		return
	}

	// Signal classification: Backward, Forward, or SingleTimex
	n, unit, signal, ok := annotate.ParseOffset(tm.Text)
	if !ok {
		if sig, u, ok2 := annotate.ParseAdjacent(tm.Text); ok2 {
			signal, unit, n = sig, u, 1
		}
	}
	rule, found := r.lex.Signals[signal]
	if !found {
		rule, found = r.contextSignal(tm)
	}
	if !found {
		return // UNRESOLVED
	}

	switch rule.Relation {
	case lexicon.RelBefore:
		if z := r.timeline.MostRecentAt(tm.Start); z != nil {
			r.set(tm, annotate.AddUnit(z.DateTime, -n, unit))
		}
	case lexicon.RelAfter:
		if dt, ok := r.forwardAnchor(tm); ok {
			r.set(tm, annotate.AddUnit(dt, n, unit))
			return
		}
		if z := r.timeline.MostRecentAt(tm.Start); z != nil {
			r.set(tm, annotate.AddUnit(z.DateTime, n, unit))
		}
	case lexicon.RelSame:
		if z := r.timeline.MostRecentAt(tm.Start); z != nil {
			r.set(tm, z.DateTime)
		}
	}
}

// set records a resolution and immediately folds it back into the zone list
// and reference table.
func (r *Resolver) set(tm *model.Timex, dt time.Time) {
	tm.DateTime = &dt
	tm.Completeness = 3
	r.timeline.Insert(tm)

	// A freshly dated sentence can now anchor its own drug/vaccine mentions
	if tm.Sentence < 0 || tm.Sentence >= len(r.tokens) {
		return
	}
	for _, tok := range r.tokens[tm.Sentence] {
		var kind model.AnchorKind
		var conf float64
		switch tok.Tag {
		case lexicon.TagVaccine:
			kind, conf = model.AnchorVaccine, model.RefConfVaccine
		case lexicon.TagDrug:
			kind, conf = model.AnchorDrug, model.RefConfDrug
		default:
			continue
		}
		r.refs.Add(model.TimeReference{
			Kind:        kind,
			MatchedText: tok.Text,
			Sentence:    tm.Sentence,
			AnchorStart: tok.Start,
			TimexStart:  tm.Start,
			Confidence:  conf,
			DateTime:    dt,
		})
	}
}

// contextWindowBytes is how far around a timex span the signal-word scan
// reaches.
const contextWindowBytes = 20

// contextSignal scans the tokens around the timex for a signal word,
// keeping the highest-confidence rule found.
func (r *Resolver) contextSignal(tm *model.Timex) (lexicon.SignalRule, bool) {
	if tm.Sentence < 0 || tm.Sentence >= len(r.tokens) {
		return lexicon.SignalRule{}, false
	}
	var best lexicon.SignalRule
	found := false
	for _, tok := range r.tokens[tm.Sentence] {
		if tok.End < tm.Start-contextWindowBytes || tok.Start > tm.End+contextWindowBytes {
			continue
		}
		if rule, ok := r.lex.Signals[lowerWord(tok.Text)]; ok {
			if !found || rule.Confidence > best.Confidence {
				best = rule
				found = true
			}
		}
	}
	return best, found
}

// forwardAnchor searches the tokens to the right of the timex for an
// anchoring event, preferring a dose-numbered time reference when a dose
// word is nearby.
func (r *Resolver) forwardAnchor(tm *model.Timex) (time.Time, bool) {
	if tm.Sentence < 0 || tm.Sentence >= len(r.tokens) {
		return time.Time{}, false
	}
	toks := r.tokens[tm.Sentence]

	for i, tok := range toks {
		if tok.Start < tm.End {
			continue
		}
		kind, ok := tok.Tag.AnchorKind()
		if !ok {
			continue
		}
		if dose := doseNear(toks, i); dose > 0 {
			if ref := r.refs.LookupDose([]model.AnchorKind{kind}, dose); ref != nil {
				return ref.DateTime, true
			}
		}
		if ref := r.refs.Lookup([]model.AnchorKind{kind}, model.RefConfZone); ref != nil {
			return ref.DateTime, true
		}
	}
	return time.Time{}, false
}

// anchorBefore finds the nearest preceding anchor for a day-count form:
// an anchor-tagged event with a time reference, or a resolved DATE timex,
// searching the same sentence, then earlier sentences, then the document
// exposure and onset dates.
func (r *Resolver) anchorBefore(tm *model.Timex) *time.Time {
	for si := tm.Sentence; si >= 0; si-- {
		if si >= len(r.tokens) {
			continue
		}
		limit := r.sentences[si].End
		if si == tm.Sentence {
			limit = tm.Start
		}

		var bestOffset int = -1
		var bestDate time.Time

		for _, tok := range r.tokens[si] {
			if tok.End > limit {
				break
			}
			if tok.Tag != lexicon.TagVaccination && tok.Tag != lexicon.TagHospital {
				continue
			}
			kind, _ := tok.Tag.AnchorKind()
			if ref := r.refs.Lookup([]model.AnchorKind{kind}, model.RefConfZone); ref != nil && tok.Start > bestOffset {
				bestOffset = tok.Start
				bestDate = ref.DateTime
			}
		}
		for _, cand := range r.timexes {
			if cand.Sentence != si || cand.Type != model.TimexDate || !cand.Resolved() {
				continue
			}
			if cand.End <= limit && cand.Start > bestOffset {
				bestOffset = cand.Start
				bestDate = *cand.DateTime
			}
		}
		if bestOffset >= 0 {
			return &bestDate
		}
	}

	if r.exposure != nil {
		return r.exposure
	}
	return r.onset
}

func lowerWord(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
