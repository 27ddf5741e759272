package annotate

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// parseMonth accepts full or abbreviated month names, with trailing period.
func parseMonth(s string) (time.Month, bool) {
	s = strings.ToLower(strings.TrimSuffix(s, "."))
	if len(s) < 3 {
		return 0, false
	}
	m, ok := monthNames[s[:3]]
	return m, ok
}

// expandYear maps a two-digit year onto 19xx/20xx with a pivot at 30.
func expandYear(y int) int {
	if y >= 100 {
		return y
	}
	if y < 30 {
		return 2000 + y
	}
	return 1900 + y
}

// parseSlashDate parses M/D/Y (US convention). Returns false for impossible
// month/day values, so visual-acuity fractions like 20/40 never become dates.
func parseSlashDate(text string) (time.Time, bool) {
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	m, err1 := strconv.Atoi(parts[0])
	d, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	y = expandYear(y)
	if m < 1 || m > 12 || d < 1 || d > 31 || y < 1900 || y > 2200 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != time.Month(m) {
		return time.Time{}, false
	}
	return t, true
}

// numberWords covers the small counts narratives spell out.
var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "few": 3, "several": 3, "couple": 2,
}

// parseCount parses a digit string or number word.
func parseCount(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := numberWords[s]
	return n, ok
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// parseOrdinal parses "third" or "3rd" style ordinals.
func parseOrdinal(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, ok := ordinalWords[s]; ok {
		return n, true
	}
	trimmed := strings.TrimRight(s, "stndrh")
	if trimmed != s {
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n, true
		}
	}
	return 0, false
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// parseWeekday parses a full weekday name.
func parseWeekday(s string) (time.Weekday, bool) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// AddUnit advances a date by n calendar units ("day", "week", "month",
// "year", "hour"). Unknown units count as days.
func AddUnit(t time.Time, n int, unit string) time.Time {
	switch strings.ToLower(strings.TrimSuffix(unit, "s")) {
	case "hour":
		return t.Add(time.Duration(n) * time.Hour)
	case "week":
		return t.AddDate(0, 0, 7*n)
	case "month":
		return t.AddDate(0, n, 0)
	case "year":
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}
