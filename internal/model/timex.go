package model

import "time"

// TimexType categorizes a temporal expression
type TimexType string

const (
	TimexDate    TimexType = "DATE"    // Calendar date, possibly partial
	TimexRel     TimexType = "REL"     // Relative expression ("3 days later")
	TimexDur     TimexType = "DUR"     // Duration ("for 5 days")
	TimexWeekday TimexType = "WEEKDAY" // Bare weekday name
	TimexFrq     TimexType = "FRQ"     // Frequency ("twice daily")
	TimexAge     TimexType = "AGE"     // Age expression ("45 years old")
	TimexOther   TimexType = "OTHER"   // Recognized but unclassified
)

// TimexRole marks whether a timex may drive timeline continuity
type TimexRole string

const (
	RoleNormal TimexRole = "NORMAL"
	RoleIgnore TimexRole = "IGNORE" // Suppressed: follow-up dates, expirations, alternatives
)

// Timex is a typed temporal expression located in the document. The annotator
// produces it once; only Role and DateTime are mutated afterwards.
type Timex struct {
	Type         TimexType  `json:"type"`
	Text         string     `json:"text"`
	Start        int        `json:"start"`
	End          int        `json:"end"`
	Sentence     int        `json:"sentence"`
	DateTime     *time.Time `json:"datetime,omitempty"` // Resolved date, nil if unresolved
	Role         TimexRole  `json:"role"`
	Completeness int        `json:"completeness"` // 0-3: how many of year/month/day are specified
}

// Resolved reports whether the timex carries a concrete date.
func (t *Timex) Resolved() bool {
	return t.DateTime != nil
}

// Clone returns an independent copy of the timex.
func (t *Timex) Clone() *Timex {
	c := *t
	if t.DateTime != nil {
		dt := *t.DateTime
		c.DateTime = &dt
	}
	return &c
}
