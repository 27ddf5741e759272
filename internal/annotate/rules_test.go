package annotate

import (
	"testing"
	"time"

	"github.com/ppiankov/caseline/internal/model"
)

func annotateOne(t *testing.T, text string) []*model.Timex {
	t.Helper()
	timexes, err := NewRuleAnnotator().Annotate(text, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return timexes
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnnotate_SlashDate(t *testing.T) {
	timexes := annotateOne(t, "Seen on 1/2/2020 for rash.")

	if len(timexes) != 1 {
		t.Fatalf("expected 1 timex, got %d", len(timexes))
	}
	tm := timexes[0]
	if tm.Type != model.TimexDate {
		t.Errorf("expected DATE, got %s", tm.Type)
	}
	if tm.Text != "1/2/2020" {
		t.Errorf("unexpected text: %q", tm.Text)
	}
	if tm.DateTime == nil || !tm.DateTime.Equal(date(2020, time.January, 2)) {
		t.Errorf("expected 2020-01-02, got %v", tm.DateTime)
	}
	if tm.Completeness != 3 {
		t.Errorf("expected completeness 3, got %d", tm.Completeness)
	}
	if tm.Role != model.RoleNormal {
		t.Errorf("expected NORMAL role, got %s", tm.Role)
	}
}

func TestAnnotate_DateForms(t *testing.T) {
	tests := []struct {
		text         string
		want         time.Time
		completeness int
	}{
		{"2020-03-05", date(2020, time.March, 5), 3},
		{"March 5, 2019", date(2019, time.March, 5), 3},
		{"5th of March 2019", date(2019, time.March, 5), 3},
		{"3/2019", date(2019, time.March, 1), 2},
		{"Sep 2018", date(2018, time.September, 1), 2},
		{"in 2020", date(2020, time.January, 1), 1},
	}

	for _, tc := range tests {
		timexes := annotateOne(t, "Event recorded "+tc.text+" per chart.")
		if len(timexes) != 1 {
			t.Fatalf("%q: expected 1 timex, got %d", tc.text, len(timexes))
		}
		tm := timexes[0]
		if tm.Type != model.TimexDate {
			t.Errorf("%q: expected DATE, got %s", tc.text, tm.Type)
			continue
		}
		if tm.DateTime == nil || !tm.DateTime.Equal(tc.want) {
			t.Errorf("%q: expected %v, got %v", tc.text, tc.want, tm.DateTime)
		}
		if tm.Completeness != tc.completeness {
			t.Errorf("%q: expected completeness %d, got %d", tc.text, tc.completeness, tm.Completeness)
		}
	}
}

func TestAnnotate_RejectsNonDates(t *testing.T) {
	// Acuity fractions and impossible dates must not become timexes
	for _, text := range []string{
		"Visual acuity 20/40 both eyes.",
		"Noted on 13/45/2020 by the nurse.",
		"BP was 120/80 at rest.",
	} {
		if timexes := annotateOne(t, text); len(timexes) != 0 {
			t.Errorf("%q: expected no timexes, got %d (%q)", text, len(timexes), timexes[0].Text)
		}
	}
}

func TestAnnotate_RelativeForms(t *testing.T) {
	tests := []struct {
		text string
		kind model.TimexType
	}{
		{"3 days later", model.TimexRel},
		{"a week after", model.TimexRel},
		{"two months prior", model.TimexRel},
		{"the next day", model.TimexRel},
		{"day 3", model.TimexRel},
		{"the third day", model.TimexRel},
		{"for 5 days", model.TimexDur},
		{"x3 days", model.TimexDur},
		{"Monday", model.TimexWeekday},
		{"twice daily", model.TimexFrq},
		{"45 years old", model.TimexAge},
	}

	for _, tc := range tests {
		timexes := annotateOne(t, "Symptoms noted "+tc.text+".")
		if len(timexes) != 1 {
			t.Fatalf("%q: expected 1 timex, got %d", tc.text, len(timexes))
		}
		if timexes[0].Type != tc.kind {
			t.Errorf("%q: expected %s, got %s", tc.text, tc.kind, timexes[0].Type)
		}
		if timexes[0].Type != model.TimexDate && timexes[0].Resolved() {
			t.Errorf("%q: relative form must not resolve in the annotator", tc.text)
		}
	}
}

func TestAnnotate_OverlapPruning(t *testing.T) {
	// "January 15, 2020" must yield one DATE, not a nested month-year match
	timexes := annotateOne(t, "Vaccinated January 15, 2020 at clinic.")
	if len(timexes) != 1 {
		t.Fatalf("expected 1 timex, got %d", len(timexes))
	}
	if timexes[0].Text != "January 15, 2020" {
		t.Errorf("expected the full date to win, got %q", timexes[0].Text)
	}
}

func TestAnnotate_MultipleSorted(t *testing.T) {
	timexes := annotateOne(t, "Rash on 1/1/2020 resolved 3 days later.")
	if len(timexes) != 2 {
		t.Fatalf("expected 2 timexes, got %d", len(timexes))
	}
	if timexes[0].Start > timexes[1].Start {
		t.Error("timexes not sorted by start offset")
	}
	if timexes[0].Type != model.TimexDate || timexes[1].Type != model.TimexRel {
		t.Errorf("unexpected types: %s, %s", timexes[0].Type, timexes[1].Type)
	}
}

func TestParseOffset(t *testing.T) {
	n, unit, signal, ok := ParseOffset("3 days later")
	if !ok || n != 3 || unit != "day" || signal != "later" {
		t.Errorf("ParseOffset(3 days later) = %d %q %q %v", n, unit, signal, ok)
	}

	n, unit, signal, ok = ParseOffset("a week after")
	if !ok || n != 1 || unit != "week" || signal != "after" {
		t.Errorf("ParseOffset(a week after) = %d %q %q %v", n, unit, signal, ok)
	}

	n, unit, signal, ok = ParseOffset("several months ago")
	if !ok || n != 3 || unit != "month" || signal != "ago" {
		t.Errorf("ParseOffset(several months ago) = %d %q %q %v", n, unit, signal, ok)
	}

	if _, _, _, ok := ParseOffset("completely unrelated"); ok {
		t.Error("expected ParseOffset to reject non-offset text")
	}
}

func TestParseAdjacent(t *testing.T) {
	signal, unit, ok := ParseAdjacent("the next day")
	if !ok || signal != "next" || unit != "day" {
		t.Errorf("ParseAdjacent(the next day) = %q %q %v", signal, unit, ok)
	}

	signal, unit, ok = ParseAdjacent("following morning")
	if !ok || signal != "following" || unit != "day" {
		t.Errorf("ParseAdjacent(following morning) = %q %q %v", signal, unit, ok)
	}

	if _, _, ok := ParseAdjacent("3 days later"); ok {
		t.Error("expected ParseAdjacent to reject offset forms")
	}
}

func TestParseDayNumber(t *testing.T) {
	if n, ok := ParseDayNumber("day 3"); !ok || n != 3 {
		t.Errorf("ParseDayNumber(day 3) = %d %v", n, ok)
	}
	if n, ok := ParseDayNumber("the third day"); !ok || n != 3 {
		t.Errorf("ParseDayNumber(the third day) = %d %v", n, ok)
	}
	if _, ok := ParseDayNumber("the next day"); ok {
		t.Error("expected ParseDayNumber to reject adjacency forms")
	}
}

func TestParseDurationText(t *testing.T) {
	if n, unit, ok := ParseDurationText("for 5 days"); !ok || n != 5 || unit != "day" {
		t.Errorf("ParseDurationText(for 5 days) = %d %q %v", n, unit, ok)
	}
	if n, unit, ok := ParseDurationText("lasting two weeks"); !ok || n != 2 || unit != "week" {
		t.Errorf("ParseDurationText(lasting two weeks) = %d %q %v", n, unit, ok)
	}
	if n, unit, ok := ParseDurationText("x3 days"); !ok || n != 3 || unit != "day" {
		t.Errorf("ParseDurationText(x3 days) = %d %q %v", n, unit, ok)
	}
	if n, unit, ok := ParseDurationText("x2w"); !ok || n != 2 || unit != "week" {
		t.Errorf("ParseDurationText(x2w) = %d %q %v", n, unit, ok)
	}
	if _, _, ok := ParseDurationText("5 days later"); ok {
		t.Error("expected ParseDurationText to reject offset forms")
	}
}
