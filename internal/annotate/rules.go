package annotate

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/caseline/internal/model"
)

const monthRe = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`
const countRe = `(?:\d+|a|an|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|few|several|couple)`

// pattern is one ordered timex rule. Earlier patterns win on overlap.
type pattern struct {
	re   *regexp.Regexp
	kind model.TimexType
}

var patterns = []pattern{
	// Absolute dates, most complete first
	{regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`), model.TimexDate},
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`), model.TimexDate},
	{regexp.MustCompile(`(?i)\b` + monthRe + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`), model.TimexDate},
	{regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthRe + `\s+\d{4}\b`), model.TimexDate},
	{regexp.MustCompile(`(?i)\b` + monthRe + `\s+\d{4}\b`), model.TimexDate},
	{regexp.MustCompile(`\b\d{1,2}/\d{4}\b`), model.TimexDate},
	{regexp.MustCompile(`(?i)\b(?:in|since|during)\s+(?:19|20)\d{2}\b`), model.TimexDate},

	// Relative expressions
	{regexp.MustCompile(`(?i)\b` + countRe + `\s+(?:hour|day|week|month|year)s?\s+(?:later|afterwards?|after|before|prior|earlier|ago|post)\b`), model.TimexRel},
	{regexp.MustCompile(`(?i)\b(?:the\s+)?(?:next|following|previous|same)\s+(?:day|morning|evening|night|week|month)\b`), model.TimexRel},
	{regexp.MustCompile(`(?i)\bday\s+\d+\b`), model.TimexRel},
	{regexp.MustCompile(`(?i)\bthe\s+(?:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|\d+(?:st|nd|rd|th))\s+day\b`), model.TimexRel},

	// Durations
	{regexp.MustCompile(`(?i)\b(?:for|lasting|over)\s+` + countRe + `\s+(?:hour|day|week|month|year)s?\b`), model.TimexDur},
	{regexp.MustCompile(`(?i)\bx\s?\d+\s?(?:days?|weeks?|d|w)\b`), model.TimexDur},

	// Weekday names
	{regexp.MustCompile(`(?i)\b(?:sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`), model.TimexWeekday},

	// Frequencies
	{regexp.MustCompile(`(?i)\b(?:daily|weekly|monthly|bid|tid|qid|prn|once\s+a\s+day|twice\s+(?:a\s+day|daily))\b`), model.TimexFrq},

	// Ages
	{regexp.MustCompile(`(?i)\b\d+\s?-?\s?(?:years?|yrs?)\s?-?\s?old\b|\b\d+\s?y/?o\b`), model.TimexAge},
}

// RuleAnnotator is the built-in regex timex annotator.
type RuleAnnotator struct{}

// NewRuleAnnotator creates the default annotator.
func NewRuleAnnotator() *RuleAnnotator {
	return &RuleAnnotator{}
}

// Annotate finds timexes in the text. DATE timexes get a resolved datetime
// and completeness rank; relative forms are left for the resolver. The
// reference date is unused by the rule annotator but part of the collaborator
// contract. Sentence indices are assigned by the caller.
func (a *RuleAnnotator) Annotate(text string, reference *time.Time) ([]*model.Timex, error) {
	type candidate struct {
		tm   *model.Timex
		prio int
	}
	var cands []candidate

	for prio, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			tm := &model.Timex{
				Type:     p.kind,
				Text:     text[loc[0]:loc[1]],
				Start:    loc[0],
				End:      loc[1],
				Sentence: -1,
				Role:     model.RoleNormal,
			}
			if p.kind == model.TimexDate {
				dt, comp := resolveDate(tm.Text)
				if dt == nil {
					continue // Not actually a date (e.g. 20/40 acuity)
				}
				tm.DateTime = dt
				tm.Completeness = comp
			}
			cands = append(cands, candidate{tm, prio})
		}
	}

	// Overlap pruning: earlier pattern wins, then longer match
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].prio != cands[j].prio {
			return cands[i].prio < cands[j].prio
		}
		return (cands[i].tm.End - cands[i].tm.Start) > (cands[j].tm.End - cands[j].tm.Start)
	})
	var kept []*model.Timex
	for _, c := range cands {
		overlap := false
		for _, k := range kept {
			if c.tm.Start < k.End && k.Start < c.tm.End {
				overlap = true
				break
			}
		}
		if !overlap {
			kept = append(kept, c.tm)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept, nil
}

// resolveDate parses an absolute date expression, returning nil when the
// surface form is not a valid date. Completeness: 3 = year+month+day,
// 2 = year+month, 1 = year only.
func resolveDate(text string) (*time.Time, int) {
	s := strings.TrimSpace(text)
	lower := strings.ToLower(s)

	// "in 2020" / "since 1998"
	for _, prefix := range []string{"in ", "since ", "during "} {
		if strings.HasPrefix(lower, prefix) {
			year, ok := parseCount(s[len(prefix):])
			if !ok {
				return nil, 0
			}
			t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			return &t, 1
		}
	}

	if strings.Contains(s, "-") {
		if t, err := time.Parse("2006-1-2", s); err == nil {
			u := t.UTC()
			return &u, 3
		}
		return nil, 0
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) == 2 {
			m, ok1 := parseCount(parts[0])
			y, ok2 := parseCount(parts[1])
			if !ok1 || !ok2 || m < 1 || m > 12 || y < 1900 || y > 2200 {
				return nil, 0
			}
			t := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
			return &t, 2
		}
		if t, ok := parseSlashDate(s); ok {
			return &t, 3
		}
		return nil, 0
	}

	// Month-name forms
	fields := strings.Fields(strings.NewReplacer(",", " ", "of", " ").Replace(lower))
	var month time.Month
	var day, year int
	haveMonth, haveDay := false, false
	for _, f := range fields {
		if m, ok := parseMonth(f); ok && !haveMonth {
			month = m
			haveMonth = true
			continue
		}
		if n, ok := parseOrdinalOrNumber(f); ok {
			if n > 31 {
				year = n
			} else if !haveDay {
				day = n
				haveDay = true
			}
		}
	}
	if !haveMonth || year == 0 {
		return nil, 0
	}
	if haveDay {
		t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day {
			return nil, 0
		}
		return &t, 3
	}
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return &t, 2
}

func parseOrdinalOrNumber(s string) (int, bool) {
	if n, ok := parseCount(s); ok {
		return n, true
	}
	return parseOrdinal(s)
}

var offsetRe = regexp.MustCompile(`(?i)^(` + countRe + `)\s+(hour|day|week|month|year)s?\s+(\w+)$`)

// ParseOffset decomposes a "3 days later" style expression into count, unit
// and signal word.
func ParseOffset(text string) (n int, unit, signal string, ok bool) {
	m := offsetRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, "", "", false
	}
	n, ok = parseCount(m[1])
	if !ok {
		return 0, "", "", false
	}
	return n, strings.ToLower(m[2]), strings.ToLower(m[3]), true
}

var adjacentRe = regexp.MustCompile(`(?i)^(?:the\s+)?(next|following|previous|same)\s+(day|morning|evening|night|week|month)$`)

// ParseAdjacent decomposes "the next day" style expressions into the signal
// word and unit.
func ParseAdjacent(text string) (signal, unit string, ok bool) {
	m := adjacentRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", false
	}
	unit = strings.ToLower(m[2])
	switch unit {
	case "morning", "evening", "night":
		unit = "day"
	}
	return strings.ToLower(m[1]), unit, true
}

var dayNumRe = regexp.MustCompile(`(?i)^day\s+(\d+)$`)
var ordDayRe = regexp.MustCompile(`(?i)^the\s+(\w+)\s+day$`)

// ParseDayNumber recognizes "day 3" / "the third day" forms, returning the
// day count.
func ParseDayNumber(text string) (int, bool) {
	s := strings.TrimSpace(text)
	if m := dayNumRe.FindStringSubmatch(s); m != nil {
		return parseCount(m[1])
	}
	if m := ordDayRe.FindStringSubmatch(s); m != nil {
		return parseOrdinal(m[1])
	}
	return 0, false
}

// Weekday recognizes a bare weekday-name timex.
func Weekday(text string) (time.Weekday, bool) {
	return parseWeekday(text)
}

var durRe = regexp.MustCompile(`(?i)^(?:for|lasting|over)\s+(` + countRe + `)\s+(hour|day|week|month|year)s?$`)
var durXRe = regexp.MustCompile(`(?i)^x\s?(\d+)\s?(days?|weeks?|d|w)$`)

// ParseDurationText decomposes a DUR timex into count and unit.
func ParseDurationText(text string) (n int, unit string, ok bool) {
	s := strings.TrimSpace(text)
	if m := durRe.FindStringSubmatch(s); m != nil {
		n, ok = parseCount(m[1])
		return n, strings.ToLower(m[2]), ok
	}
	if m := durXRe.FindStringSubmatch(s); m != nil {
		n, ok = parseCount(m[1])
		unit = "day"
		if strings.HasPrefix(strings.ToLower(m[2]), "w") {
			unit = "week"
		}
		return n, unit, ok
	}
	return 0, "", false
}
