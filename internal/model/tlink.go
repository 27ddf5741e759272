package model

import "time"

// TLinkType classifies the relation shared by the timexes of one bundle
type TLinkType string

const (
	LinkNormal         TLinkType = "NORMAL"          // Single timex
	LinkBetween        TLinkType = "BETWEEN"         // Date range (start/end pair)
	LinkMultiple       TLinkType = "MULTIPLE"        // Repeated occurrences, one per timex
	LinkOr             TLinkType = "OR"              // Alternatives; only the first counts
	LinkAssociate      TLinkType = "ASSOCIATE"       // DATE qualified by a trailing REL clause
	LinkDuration       TLinkType = "DURATION"        // Start date plus a DUR timex
	LinkMultiDurations TLinkType = "MULTI_DURATIONS" // Several starts, parallel end list
)

// TLink is an ordered bundle of timexes sharing one sentence-local relation.
// A Feature owns at most one TLink; Clone before attaching a bundle to more
// than one feature so per-feature edits never alias.
type TLink struct {
	Type    TLinkType `json:"type"`
	Timexes []*Timex  `json:"timexes"`
	Ends    []*Timex  `json:"ends,omitempty"` // MULTI_DURATIONS parallel end timexes
}

// Clone returns a deep copy of the link, including its timexes.
func (l *TLink) Clone() *TLink {
	if l == nil {
		return nil
	}
	c := &TLink{Type: l.Type}
	for _, tm := range l.Timexes {
		c.Timexes = append(c.Timexes, tm.Clone())
	}
	for _, tm := range l.Ends {
		c.Ends = append(c.Ends, tm.Clone())
	}
	return c
}

// Resolved reports whether any timex in the bundle carries a date.
func (l *TLink) Resolved() bool {
	if l == nil {
		return false
	}
	for _, tm := range l.Timexes {
		if tm.Resolved() {
			return true
		}
	}
	return false
}

// StartDate returns the earliest resolved date in the bundle, or nil.
func (l *TLink) StartDate() *time.Time {
	if l == nil {
		return nil
	}
	var min *time.Time
	for _, tm := range l.Timexes {
		if tm.DateTime == nil {
			continue
		}
		if min == nil || tm.DateTime.Before(*min) {
			min = tm.DateTime
		}
	}
	return min
}

// EndDate returns the range end for BETWEEN/DURATION-shaped links, or nil.
func (l *TLink) EndDate() *time.Time {
	if l == nil {
		return nil
	}
	switch l.Type {
	case LinkBetween:
		if n := len(l.Timexes); n >= 2 && l.Timexes[n-1].Resolved() {
			return l.Timexes[n-1].DateTime
		}
	case LinkMultiDurations:
		if n := len(l.Ends); n > 0 && l.Ends[n-1].Resolved() {
			return l.Ends[n-1].DateTime
		}
	}
	return nil
}

// Completeness returns the best date-completeness rank among the bundle's
// timexes, used by the association tie-break.
func (l *TLink) Completeness() int {
	if l == nil {
		return 0
	}
	best := 0
	for _, tm := range l.Timexes {
		if tm.Completeness > best {
			best = tm.Completeness
		}
	}
	return best
}

// Span returns the text interval covered by the bundle.
func (l *TLink) Span() (start, end int) {
	if l == nil || len(l.Timexes) == 0 {
		return 0, 0
	}
	start = l.Timexes[0].Start
	end = l.Timexes[0].End
	for _, tm := range l.Timexes[1:] {
		if tm.Start < start {
			start = tm.Start
		}
		if tm.End > end {
			end = tm.End
		}
	}
	return start, end
}
