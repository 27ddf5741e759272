package temporal

import (
	"regexp"
	"strings"

	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/model"
)

// ClauseZone is a text range whose contained features must never be
// independently time-stamped (the tail of an "X, 3 days after Y" clause).
type ClauseZone struct {
	Start int
	End   int
}

// Covers reports whether an offset lies inside the clause.
func (c ClauseZone) Covers(offset int) bool {
	return offset >= c.Start && offset < c.End
}

var (
	rangeGap    = regexp.MustCompile(`(?i)^(?:to|until|till)$`)
	multipleGap = regexp.MustCompile(`(?i)^(?:,|and|&|,\s*and)(?:\s+on)?$`)
	associateGap = regexp.MustCompile(`(?i)^,?\s*(?:and\s+)?$|^,?\s*after$`)
)

// BuildLinks groups one sentence's timexes into ordered TLink bundles and
// classifies each bundle's relation. DUR timexes are attached later by
// post-processing; IGNORE-role timexes never join a bundle, though OR and
// ASSOCIATE classification sets IGNORE itself as a side effect.
func BuildLinks(doc string, s extract.Sentence, timexes []*model.Timex) ([]*model.TLink, []ClauseZone) {
	var eligible []*model.Timex
	for _, tm := range timexes {
		if tm.Role != model.RoleNormal {
			continue
		}
		switch tm.Type {
		case model.TimexDate, model.TimexRel, model.TimexWeekday:
			eligible = append(eligible, tm)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	var links []*model.TLink
	var clauses []ClauseZone
	cur := &model.TLink{Type: model.LinkNormal, Timexes: []*model.Timex{eligible[0]}}

	for _, tm := range eligible[1:] {
		prev := cur.Timexes[len(cur.Timexes)-1]
		gap := ""
		if tm.Start > prev.End {
			gap = doc[prev.End:tm.Start]
		}
		g := strings.ToLower(strings.TrimSpace(gap))

		switch {
		case tm.Start == prev.Start,
			g == "-" && prev.Type == model.TimexDate && tm.Type == model.TimexDate:
			cur.Type = model.LinkBetween
			cur.Timexes = append(cur.Timexes, tm)

		case rangeGap.MatchString(g),
			betweenBefore(doc, s, cur) && strings.Contains(" "+g+" ", " and "):
			cur.Type = model.LinkBetween
			cur.Timexes = append(cur.Timexes, tm)

		case g == "or":
			cur.Type = model.LinkOr
			tm.Role = model.RoleIgnore // An alternative, not an additional fact
			cur.Timexes = append(cur.Timexes, tm)

		case multipleGap.MatchString(g) && prev.Type == model.TimexDate && tm.Type == model.TimexDate:
			cur.Type = model.LinkMultiple
			cur.Timexes = append(cur.Timexes, tm)

		case prev.Type == model.TimexDate && tm.Type == model.TimexRel && associateGap.MatchString(g):
			cur.Type = model.LinkAssociate
			tm.Role = model.RoleIgnore
			cur.Timexes = append(cur.Timexes, tm)
			clauses = append(clauses, clauseSpan(doc, s, prev.End, tm))

		default:
			links = append(links, cur)
			cur = &model.TLink{Type: model.LinkNormal, Timexes: []*model.Timex{tm}}
		}
	}
	links = append(links, cur)

	for _, l := range links {
		orderBetween(l)
	}
	return links, clauses
}

// betweenBefore reports whether the bundle's first timex is introduced by
// the word "between".
func betweenBefore(doc string, s extract.Sentence, l *model.TLink) bool {
	start := l.Timexes[0].Start
	from := start - 12
	if from < s.Start {
		from = s.Start
	}
	lead := strings.ToLower(doc[from:start])
	return strings.Contains(lead, "between")
}

// clauseSpan computes the clause zone of an ASSOCIATE relation: from the
// separator to the next comma or the sentence end.
func clauseSpan(doc string, s extract.Sentence, from int, rel *model.Timex) ClauseZone {
	end := s.End
	if i := strings.IndexByte(doc[rel.End:s.End], ','); i >= 0 {
		end = rel.End + i
	}
	return ClauseZone{Start: from, End: end}
}

// orderBetween keeps BETWEEN bundles start-before-end once both resolve.
func orderBetween(l *model.TLink) {
	if l.Type != model.LinkBetween || len(l.Timexes) < 2 {
		return
	}
	first, last := l.Timexes[0], l.Timexes[len(l.Timexes)-1]
	if first.Resolved() && last.Resolved() && last.DateTime.Before(*first.DateTime) {
		l.Timexes[0], l.Timexes[len(l.Timexes)-1] = last, first
	}
}
