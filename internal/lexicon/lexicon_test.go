package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/caseline/internal/model"
)

func writeLexicon(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return path
}

const validLexicon = `
exact:
  Rash: SYMPTOM
  "flu shot": VACCINE
  "past medical history": HISTORY_CUE
regex:
  - pattern: '(?i)^\w+itis$'
    tag: SYMPTOM
primary:
  - type: SYMPTOM
    seq: [SYMPTOM]
secondary:
  - type: MEDICAL_HISTORY
    seq: [HISTORY_CUE, SYMPTOM]
signals:
  later:
    relation: after
    confidence: 0.9
ignore_cues: ["follow-up"]
skip_cues: ["history of"]
role_ignore_cues: ["reported on"]
`

func TestLoad_Valid(t *testing.T) {
	lex, err := Load(writeLexicon(t, validLexicon))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Surface forms are lowercased on load
	if lex.Exact["rash"] != TagSymptom {
		t.Errorf("expected SYMPTOM for rash, got %s", lex.Exact["rash"])
	}
	if lex.Exact["flu shot"] != TagVaccine {
		t.Errorf("expected VACCINE for flu shot, got %s", lex.Exact["flu shot"])
	}

	if len(lex.Regex) != 1 || !lex.Regex[0].Pattern.MatchString("colitis") {
		t.Error("regex rule not compiled")
	}

	if len(lex.Primary) != 1 || lex.Primary[0].Type != model.FeatureSymptom {
		t.Errorf("primary grammar not loaded: %+v", lex.Primary)
	}
	if len(lex.Secondary) != 1 || len(lex.Secondary[0].Seq) != 2 {
		t.Errorf("secondary grammar not loaded: %+v", lex.Secondary)
	}

	rule, ok := lex.Signals["later"]
	if !ok || rule.Relation != RelAfter || rule.Confidence != 0.9 {
		t.Errorf("signal not loaded: %+v (%v)", rule, ok)
	}

	// Longest exact entry has three tokens
	if lex.MaxPhraseLen != 3 {
		t.Errorf("expected MaxPhraseLen 3, got %d", lex.MaxPhraseLen)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "exact: [unclosed"},
		{"bad regex", "regex:\n  - pattern: '(unclosed'\n    tag: SYMPTOM\n"},
		{"empty seq", "primary:\n  - type: SYMPTOM\n    seq: []\n"},
		{"bad relation", "signals:\n  later:\n    relation: sideways\n    confidence: 0.5\n"},
	}

	for _, tc := range tests {
		if _, err := Load(writeLexicon(t, tc.content)); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}

	if _, err := Load("/nonexistent/lexicon.yaml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDefault(t *testing.T) {
	lex := Default()

	if lex.Exact["rash"] != TagSymptom {
		t.Error("built-in lexicon missing basic symptom entry")
	}
	if lex.MaxPhraseLen < 2 {
		t.Errorf("built-in lexicon must carry multi-token phrases, MaxPhraseLen %d", lex.MaxPhraseLen)
	}
	if len(lex.Primary) == 0 || len(lex.Secondary) == 0 {
		t.Error("built-in grammars missing")
	}
	if _, ok := lex.Signals["later"]; !ok {
		t.Error("built-in signal table missing 'later'")
	}
}

func TestTag_Matches(t *testing.T) {
	if !TagSymptom.Matches(TagSymptom) {
		t.Error("a tag must match itself")
	}
	if TagSymptom.Matches(TagDrug) {
		t.Error("distinct tags must not match")
	}
	if !TagAny.Matches(TagWord) || !TagAny.Matches(TagSymptom) {
		t.Error("wildcard must accept content tags")
	}
	if TagAny.Matches(TagConj) || TagAny.Matches(TagUnimportant) {
		t.Error("wildcard must reject non-content tags")
	}
}

func TestTag_AnchorKind(t *testing.T) {
	kind, ok := TagVaccination.AnchorKind()
	if !ok || kind != model.AnchorVaccination {
		t.Errorf("expected VACCINATION anchor, got %s (%v)", kind, ok)
	}
	kind, ok = TagDrug.AnchorKind()
	if !ok || kind != model.AnchorDrug {
		t.Errorf("expected DRUG anchor, got %s (%v)", kind, ok)
	}
	if _, ok := TagWord.AnchorKind(); ok {
		t.Error("WORD must not be an anchor")
	}
}
