package temporal

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/caseline/internal/annotate"
	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/lexicon"
	"github.com/ppiankov/caseline/internal/model"
)

// buildTimeline annotates and classifies a narrative, then builds its zones.
func buildTimeline(t *testing.T, doc string) (*Timeline, []*model.Timex) {
	t.Helper()
	sentences := extract.SplitSentences(doc)
	classes := ClassifySentences(sentences, lexicon.Default())
	timexes, err := annotate.NewRuleAnnotator().Annotate(doc, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, tm := range timexes {
		tm.Sentence = extract.SentenceAt(sentences, tm.Start)
	}
	tl := NewTimeline(doc, sentences, classes)
	tl.Build(timexes)
	return tl, timexes
}

func TestTimeline_Build(t *testing.T) {
	doc := "Rash on 1/1/2020. Fever on 2/1/2020. Resolved later."
	tl, timexes := buildTimeline(t, doc)

	zones := tl.Zones()
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].End != zones[1].Start {
		t.Errorf("first zone must end where the second begins: %d vs %d", zones[0].End, zones[1].Start)
	}
	if zones[1].End != len(doc) {
		t.Errorf("last zone must reach the document end, got %d", zones[1].End)
	}
	if !zones[0].DateTime.Equal(*timexes[0].DateTime) {
		t.Errorf("zone 0 carries wrong date: %v", zones[0].DateTime)
	}

	// The trailing sentence is governed by the second date
	z := tl.ZoneAt(strings.Index(doc, "Resolved"))
	if z == nil {
		t.Fatal("expected a zone over the trailing sentence")
	}
	if !z.DateTime.Equal(*timexes[1].DateTime) {
		t.Errorf("trailing sentence governed by wrong date: %v", z.DateTime)
	}
}

func TestTimeline_IgnoreTruncates(t *testing.T) {
	doc := "Rash on 1/1/2020. Follow-up was scheduled. Fever noted."
	tl, _ := buildTimeline(t, doc)

	zones := tl.Zones()
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
	followUp := strings.Index(doc, "Follow-up")
	if zones[0].End != followUp {
		t.Errorf("zone must stop at the IGNORE sentence: end %d, expected %d", zones[0].End, followUp)
	}
	if tl.ZoneAt(strings.Index(doc, "Fever")) != nil {
		t.Error("no zone may cover text past an IGNORE sentence")
	}
	if tl.MostRecentAt(strings.Index(doc, "Fever")) == nil {
		t.Error("MostRecentAt must still find the preceding zone")
	}
}

func TestTimeline_SkipExcised(t *testing.T) {
	doc := "Rash on 1/1/2020. History of asthma. Fever noted."
	tl, _ := buildTimeline(t, doc)

	zones := tl.Zones()
	if len(zones) != 2 {
		t.Fatalf("expected the zone split in two, got %d", len(zones))
	}
	if tl.ZoneAt(strings.Index(doc, "asthma")) != nil {
		t.Error("SKIP sentence must not be covered")
	}

	// Propagation continues past the skipped sentence
	z := tl.ZoneAt(strings.Index(doc, "Fever"))
	if z == nil {
		t.Fatal("expected coverage to resume after the SKIP sentence")
	}
	if !z.DateTime.Equal(*dated(2020, time.January, 1)) {
		t.Errorf("resumed zone carries wrong date: %v", z.DateTime)
	}
}

func TestTimeline_SuppressedRolesExcluded(t *testing.T) {
	doc := "Report received on 3/2/2019. Fever on 4/5/2019."
	sentences := extract.SplitSentences(doc)
	classes := ClassifySentences(sentences, lexicon.Default())
	timexes, err := annotate.NewRuleAnnotator().Annotate(doc, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, tm := range timexes {
		tm.Sentence = extract.SentenceAt(sentences, tm.Start)
	}
	SuppressRoles(doc, timexes, lexicon.Default())

	tl := NewTimeline(doc, sentences, classes)
	tl.Build(timexes)

	zones := tl.Zones()
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
	if !zones[0].DateTime.Equal(*dated(2019, time.April, 5)) {
		t.Errorf("zone must come from the clinical date, got %v", zones[0].DateTime)
	}
}

func TestTimeline_Insert(t *testing.T) {
	doc := "Rash on 1/1/2020 and later fever persisted for a while."
	tl, _ := buildTimeline(t, doc)
	if len(tl.Zones()) != 1 {
		t.Fatalf("expected 1 initial zone, got %d", len(tl.Zones()))
	}

	feverAt := strings.Index(doc, "fever")
	tm := &model.Timex{
		Type: model.TimexDate, Text: "resolved", Start: feverAt, End: feverAt + 5,
		Sentence: 0, DateTime: dated(2020, time.January, 4), Role: model.RoleNormal, Completeness: 3,
	}
	tl.Insert(tm)

	zones := tl.Zones()
	if len(zones) != 2 {
		t.Fatalf("expected the zone split by the insert, got %d zones", len(zones))
	}
	if zones[0].End != feverAt || zones[1].Start != feverAt {
		t.Errorf("split must happen at the inserted timex: %+v", zones)
	}
	if !zones[1].DateTime.Equal(*tm.DateTime) {
		t.Errorf("new zone carries wrong date: %v", zones[1].DateTime)
	}
}

func TestTimeline_MostRecentAt(t *testing.T) {
	doc := "Rash on 1/1/2020. Fever on 2/1/2020."
	tl, _ := buildTimeline(t, doc)

	// Before any zone there is nothing to fall back on
	if tl.MostRecentAt(0) != nil {
		t.Error("expected nil before the first zone")
	}

	z := tl.MostRecentAt(len(doc) + 100)
	if z == nil {
		t.Fatal("expected the last zone for an offset past the end")
	}
	if !z.DateTime.Equal(*dated(2020, time.February, 1)) {
		t.Errorf("expected the most recent zone, got %v", z.DateTime)
	}
}
