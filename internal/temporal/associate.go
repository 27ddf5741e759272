package temporal

import (
	"strings"

	"github.com/ppiankov/caseline/internal/model"
)

// Associate assigns each feature of one sentence a deep copy of the TLink
// that governs it. Adjacent features of the same type with no intervening
// resolved timex form one bundle and share the chosen link; a type change
// usually signals a new temporal context, so it closes the bundle. Features
// inside a clause zone are flagged and never dated here.
func Associate(doc string, features []*model.Feature, links []*model.TLink, timexes []*model.Timex, clauses []ClauseZone) {
	if len(features) == 0 {
		return
	}

	var free []*model.Feature
	for _, f := range features {
		if inClause(f, clauses) {
			f.InClause = true
			continue
		}
		free = append(free, f)
	}

	if len(links) == 0 || len(free) == 0 {
		return
	}

	for _, bundle := range bundleFeatures(free, timexes) {
		chosen := governingLink(doc, bundle, links)
		for _, f := range bundle {
			f.Link = chosen.Clone() // Never share a bundle across features
		}
	}
}

// bundleFeatures groups adjacent same-type features with no resolved timex
// between them.
func bundleFeatures(features []*model.Feature, timexes []*model.Timex) [][]*model.Feature {
	var bundles [][]*model.Feature
	cur := []*model.Feature{features[0]}

	for _, f := range features[1:] {
		prev := cur[len(cur)-1]
		if f.Type == prev.Type && !resolvedTimexBetween(timexes, prev.End, f.Start) {
			cur = append(cur, f)
			continue
		}
		bundles = append(bundles, cur)
		cur = []*model.Feature{f}
	}
	return append(bundles, cur)
}

func resolvedTimexBetween(timexes []*model.Timex, from, to int) bool {
	for _, tm := range timexes {
		if tm.Start >= from && tm.End <= to && tm.Resolved() {
			return true
		}
	}
	return false
}

// governingLink positions the bundle among the sentence's links and picks a
// side. Bundles before the first link take the first; after the last, the
// last; otherwise the tie-break decides.
func governingLink(doc string, bundle []*model.Feature, links []*model.TLink) *model.TLink {
	bStart := bundle[0].Start
	bEnd := bundle[len(bundle)-1].End

	var before, after *model.TLink
	for _, l := range links {
		ls, le := l.Span()
		if le <= bStart {
			before = l
		}
		if ls >= bEnd && after == nil {
			after = l
		}
	}

	switch {
	case before == nil && after == nil:
		return links[0]
	case before == nil:
		return after
	case after == nil:
		return before
	}

	_, beforeEnd := before.Span()
	afterStart, _ := after.Span()
	gapBefore := doc[beforeEnd:bStart]
	gapAfter := doc[bEnd:afterStart]
	return ChooseGoverningLink(gapBefore, gapAfter, before, after)
}

// ChooseGoverningLink resolves association ambiguity between the links
// flanking a feature bundle. An explicit list boundary in the text before
// the bundle pushes it to the next link; one after keeps it on the previous.
// Otherwise the link with the higher date completeness, penalized one point
// per comma in its gap, wins; the textually shorter gap breaks a remaining
// tie. Pure function, exercised directly by tests.
func ChooseGoverningLink(gapBefore, gapAfter string, before, after *model.TLink) *model.TLink {
	if isNextSeparated(gapBefore) {
		return after
	}
	if isNextSeparated(gapAfter) {
		return before
	}

	scoreBefore := before.Completeness() - strings.Count(gapBefore, ",")
	scoreAfter := after.Completeness() - strings.Count(gapAfter, ",")
	if scoreBefore > scoreAfter {
		return before
	}
	if scoreAfter > scoreBefore {
		return after
	}

	if len(strings.TrimSpace(gapBefore)) <= len(strings.TrimSpace(gapAfter)) {
		return before
	}
	return after
}

// isNextSeparated detects an explicit list boundary: a semicolon, an "and",
// or an ampersand in the separating text.
func isNextSeparated(gap string) bool {
	g := strings.ToLower(gap)
	return strings.Contains(g, ";") ||
		strings.Contains(g, "&") ||
		strings.Contains(" "+g+" ", " and ")
}

func inClause(f *model.Feature, clauses []ClauseZone) bool {
	for _, c := range clauses {
		if c.Covers(f.Start) {
			return true
		}
	}
	return false
}
