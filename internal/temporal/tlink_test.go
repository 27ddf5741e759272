package temporal

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/caseline/internal/annotate"
	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/model"
)

// buildLinksFor annotates a one-sentence narrative and builds its links.
func buildLinksFor(t *testing.T, doc string) ([]*model.TLink, []ClauseZone, []*model.Timex) {
	t.Helper()
	sentences := extract.SplitSentences(doc)
	if len(sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(sentences))
	}
	timexes, err := annotate.NewRuleAnnotator().Annotate(doc, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, tm := range timexes {
		tm.Sentence = 0
	}
	links, clauses := BuildLinks(doc, sentences[0], timexes)
	return links, clauses, timexes
}

func TestBuildLinks_Between(t *testing.T) {
	links, _, _ := buildLinksFor(t, "Symptoms lasted from 1/1/2020 to 1/5/2020.")

	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	l := links[0]
	if l.Type != model.LinkBetween {
		t.Errorf("expected BETWEEN, got %s", l.Type)
	}
	if len(l.Timexes) != 2 {
		t.Fatalf("expected 2 timexes in the bundle, got %d", len(l.Timexes))
	}
	if l.StartDate().Day() != 1 || l.EndDate().Day() != 5 {
		t.Errorf("unexpected range: %v to %v", l.StartDate(), l.EndDate())
	}
}

func TestBuildLinks_BetweenAnd(t *testing.T) {
	links, _, _ := buildLinksFor(t, "Dosed between 1/1/2020 and 1/5/2020.")

	if len(links) != 1 || links[0].Type != model.LinkBetween {
		t.Fatalf("expected one BETWEEN link, got %+v", links)
	}
}

func TestBuildLinks_BetweenReordered(t *testing.T) {
	links, _, _ := buildLinksFor(t, "Treated from 1/5/2020 to 1/1/2020.")

	if len(links) != 1 || links[0].Type != model.LinkBetween {
		t.Fatalf("expected one BETWEEN link, got %+v", links)
	}
	l := links[0]
	if !l.Timexes[0].DateTime.Before(*l.Timexes[1].DateTime) {
		t.Error("BETWEEN bundle must keep start before end")
	}
}

func TestBuildLinks_Multiple(t *testing.T) {
	links, _, _ := buildLinksFor(t, "Doses given on 1/1/2020, 2/1/2020 and 3/1/2020.")

	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].Type != model.LinkMultiple {
		t.Errorf("expected MULTIPLE, got %s", links[0].Type)
	}
	if len(links[0].Timexes) != 3 {
		t.Errorf("expected 3 timexes, got %d", len(links[0].Timexes))
	}
}

func TestBuildLinks_Or(t *testing.T) {
	links, _, timexes := buildLinksFor(t, "Vaccinated on 1/1/2020 or 1/2/2020.")

	if len(links) != 1 || links[0].Type != model.LinkOr {
		t.Fatalf("expected one OR link, got %+v", links)
	}
	if timexes[1].Role != model.RoleIgnore {
		t.Errorf("the alternative date must be IGNORE, got %s", timexes[1].Role)
	}
	if timexes[0].Role != model.RoleNormal {
		t.Errorf("the first date must stay NORMAL, got %s", timexes[0].Role)
	}
}

func TestBuildLinks_Associate(t *testing.T) {
	doc := "Fever on 1/1/2020, 3 days after vaccination."
	links, clauses, timexes := buildLinksFor(t, doc)

	if len(links) != 1 || links[0].Type != model.LinkAssociate {
		t.Fatalf("expected one ASSOCIATE link, got %+v", links)
	}
	if timexes[1].Role != model.RoleIgnore {
		t.Errorf("the qualifying REL must be IGNORE, got %s", timexes[1].Role)
	}

	if len(clauses) != 1 {
		t.Fatalf("expected 1 clause zone, got %d", len(clauses))
	}
	if !clauses[0].Covers(strings.Index(doc, "vaccination")) {
		t.Error("clause zone must cover the qualifying clause")
	}
	if clauses[0].Covers(strings.Index(doc, "Fever")) {
		t.Error("clause zone must not cover the main clause")
	}
}

func TestBuildLinks_SeparateBundles(t *testing.T) {
	links, _, _ := buildLinksFor(t, "Rash on 1/1/2020 resolved by 1/5/2020.")

	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	for _, l := range links {
		if l.Type != model.LinkNormal {
			t.Errorf("expected NORMAL, got %s", l.Type)
		}
		if len(l.Timexes) != 1 {
			t.Errorf("expected 1 timex per bundle, got %d", len(l.Timexes))
		}
	}
}

func TestBuildLinks_IgnoredRolesExcluded(t *testing.T) {
	doc := "Rash on 1/1/2020 and 2/1/2020."
	sentences := extract.SplitSentences(doc)
	timexes, err := annotate.NewRuleAnnotator().Annotate(doc, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, tm := range timexes {
		tm.Sentence = 0
	}
	timexes[1].Role = model.RoleIgnore

	links, _ := BuildLinks(doc, sentences[0], timexes)
	if len(links) != 1 || len(links[0].Timexes) != 1 {
		t.Fatalf("IGNORE timex joined a bundle: %+v", links)
	}
}

func TestBuildLinks_NoTimexes(t *testing.T) {
	doc := "No dates in this sentence."
	sentences := extract.SplitSentences(doc)
	links, clauses := BuildLinks(doc, sentences[0], nil)
	if links != nil || clauses != nil {
		t.Errorf("expected no links for an undated sentence, got %+v", links)
	}
}

func TestClauseZone_Covers(t *testing.T) {
	c := ClauseZone{Start: 10, End: 20}
	if !c.Covers(10) || !c.Covers(19) {
		t.Error("expected interval start and interior to be covered")
	}
	if c.Covers(20) || c.Covers(9) {
		t.Error("expected half-open interval semantics")
	}
}

func dated(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
