package temporal

import (
	"strings"
	"testing"

	"github.com/ppiankov/caseline/internal/annotate"
	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/lexicon"
	"github.com/ppiankov/caseline/internal/model"
)

func TestClassifySentences(t *testing.T) {
	doc := "Follow-up information was requested. " +
		"Lot number 12345 was documented. " +
		"History of asthma. " +
		"Patient expired on 1/2/2020. " +
		"The vial expired."
	sentences := extract.SplitSentences(doc)
	if len(sentences) != 5 {
		t.Fatalf("expected 5 sentences, got %d", len(sentences))
	}

	classes := ClassifySentences(sentences, lexicon.Default())

	want := []SentenceClass{ClassIgnore, ClassIgnore, ClassSkip, ClassNormal, ClassIgnore}
	for i, cls := range classes {
		if cls != want[i] {
			t.Errorf("sentence %d (%q): expected class %d, got %d", i, sentences[i].Text, want[i], cls)
		}
	}
}

func TestClassifySentences_ConcomitantUnknownDateExempt(t *testing.T) {
	doc := "Concomitant DrugX was started on an unspecified date. " +
		"Symptoms began on an unspecified date."
	sentences := extract.SplitSentences(doc)
	classes := ClassifySentences(sentences, lexicon.Default())

	if classes[0] != ClassNormal {
		t.Errorf("concomitant sentence must stay NORMAL, got %d", classes[0])
	}
	if classes[1] != ClassIgnore {
		t.Errorf("unknown-date sentence must be IGNORE, got %d", classes[1])
	}
}

func TestSuppressRoles(t *testing.T) {
	doc := "Report received on 3/2/2019. Fever on 4/5/2019."
	timexes, err := annotate.NewRuleAnnotator().Annotate(doc, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(timexes) != 2 {
		t.Fatalf("expected 2 timexes, got %d", len(timexes))
	}

	SuppressRoles(doc, timexes, lexicon.Default())

	if timexes[0].Role != model.RoleIgnore {
		t.Errorf("report-received date must be IGNORE, got %s", timexes[0].Role)
	}
	if timexes[1].Role != model.RoleNormal {
		t.Errorf("clinical date must stay NORMAL, got %s", timexes[1].Role)
	}
}

func TestSuppressRoles_Expiration(t *testing.T) {
	doc := "Lot ABC, expiration 6/2021. Rash began 5/1/2021."
	timexes, err := annotate.NewRuleAnnotator().Annotate(doc, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	SuppressRoles(doc, timexes, lexicon.Default())

	for _, tm := range timexes {
		if tm.Text == "6/2021" && tm.Role != model.RoleIgnore {
			t.Errorf("expiration date must be IGNORE, got %s", tm.Role)
		}
		if tm.Text == "5/1/2021" && tm.Role != model.RoleNormal {
			t.Errorf("onset date must stay NORMAL, got %s", tm.Role)
		}
	}
}

func TestContainsWord(t *testing.T) {
	if !containsWord("the sample was coded today", "coded") {
		t.Error("expected whole-word match")
	}
	if containsWord("the value was decoded today", "coded") {
		t.Error("cue must not fire inside a longer word")
	}
	if !containsWord(strings.ToLower("Lot number 12345"), "lot number") {
		t.Error("expected phrase match on word boundaries")
	}
}
