package lexicon

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ppiankov/caseline/internal/model"
	"gopkg.in/yaml.v3"
)

// Tag is a token-level semantic tag assigned by the lexical tagger
type Tag string

const (
	TagDrug          Tag = "DRUG"
	TagVaccine       Tag = "VACCINE"
	TagSymptom       Tag = "SYMPTOM"
	TagDiagnosisCue  Tag = "DIAGNOSIS_CUE"  // "diagnosed with", "dx"
	TagHistoryCue    Tag = "HISTORY_CUE"    // "history of", "h/o"
	TagFamilyCue     Tag = "FAMILY_CUE"     // "family history of"
	TagRuleOutCue    Tag = "RULE_OUT_CUE"   // "rule out", "r/o"
	TagDeathCue      Tag = "DEATH_CUE"      // "cause of death", "died of"
	TagOnsetCue      Tag = "ONSET_CUE"      // "developed", "experienced"
	TagVaccination   Tag = "VACCINATION"    // Vaccination event anchors
	TagInjection     Tag = "INJECTION"      // Injection event anchors
	TagHospital      Tag = "HOSPITALIZATION" // Hospitalization anchors
	TagAdministration Tag = "ADMINISTRATION" // "received", "given", "administered"
	TagDose          Tag = "DOSE"           // "dose", "booster"
	TagConcomitant   Tag = "CONCOMITANT"
	TagConj          Tag = "CONJ" // "and", "or", "&"
	TagWord          Tag = "WORD" // Any other word token
	TagUnimportant   Tag = "UNIMPORTANT" // Punctuation and bare numbers, dropped
	TagAny           Tag = "*"    // Grammar wildcard: any content-bearing token
)

// contentTags are what the grammar wildcard accepts.
var contentTags = map[Tag]bool{
	TagWord: true, TagSymptom: true, TagDrug: true, TagVaccine: true,
}

// Matches reports whether a grammar element accepts a token tag.
func (t Tag) Matches(tok Tag) bool {
	if t == TagAny {
		return contentTags[tok]
	}
	return t == tok
}

// AnchorKind maps event tags to the time-reference anchor vocabulary.
// The second return is false for tags that are not anchors.
func (t Tag) AnchorKind() (model.AnchorKind, bool) {
	switch t {
	case TagVaccination:
		return model.AnchorVaccination, true
	case TagInjection:
		return model.AnchorInjection, true
	case TagHospital:
		return model.AnchorHospitalization, true
	case TagAdministration:
		return model.AnchorAdministration, true
	case TagVaccine:
		return model.AnchorVaccine, true
	case TagDrug:
		return model.AnchorDrug, true
	}
	return "", false
}

// RegexRule is an ordered regex fallback for the tagger; first match wins.
type RegexRule struct {
	Pattern *regexp.Regexp
	Tag     Tag
}

// ChunkRule is one pattern of a chunking grammar. Rules are tried in order,
// so longer/more specific sequences must come first.
type ChunkRule struct {
	Type model.FeatureType
	Seq  []Tag
}

// Relation is the direction a signal word implies for a relative timex
type Relation string

const (
	RelAfter  Relation = "AFTER"  // Offset added to the anchor
	RelBefore Relation = "BEFORE" // Offset subtracted from the anchor
	RelSame   Relation = "SAME"   // Anchor date taken as-is
)

// SignalRule maps a trigger word to a relation with a confidence weight.
type SignalRule struct {
	Relation   Relation
	Confidence float64
}

// Lexicon is the process-wide, read-only configuration for the pipeline.
// Load it once at startup and pass it in explicitly; it must not be mutated
// while analyses are running.
type Lexicon struct {
	Exact     map[string]Tag // Lowercased surface form (1-3 tokens) -> tag
	Regex     []RegexRule
	Primary   []ChunkRule // Recursively re-chunked to recover compounds
	Secondary []ChunkRule // Single pass, disjoint label set
	Signals   map[string]SignalRule

	// Sentence classification cues, checked in this order.
	IgnoreCues     []string // Sentence stops zone propagation entirely
	ZoneBreakers   []string // Token breakers with the same effect
	UnknownDate    []string // "unknown/unspecified date" phrases (concomitant-exempt)
	SkipCues       []string // History content: sentence excised from zones
	RoleIgnoreCues []string // Context immediately before a timex suppresses its role

	SummaryClauses []string // "who presents with" style clause openers
	MaxPhraseLen   int      // Longest exact-match entry, in tokens
}

// file is the YAML shape of a lexicon configuration.
type file struct {
	Exact          map[string]string `yaml:"exact"`
	Regex          []fileRegex       `yaml:"regex"`
	Primary        []fileRule        `yaml:"primary"`
	Secondary      []fileRule        `yaml:"secondary"`
	Signals        map[string]fileSignal `yaml:"signals"`
	IgnoreCues     []string          `yaml:"ignore_cues"`
	ZoneBreakers   []string          `yaml:"zone_breakers"`
	UnknownDate    []string          `yaml:"unknown_date"`
	SkipCues       []string          `yaml:"skip_cues"`
	RoleIgnoreCues []string          `yaml:"role_ignore_cues"`
	SummaryClauses []string          `yaml:"summary_clauses"`
}

type fileRegex struct {
	Pattern string `yaml:"pattern"`
	Tag     string `yaml:"tag"`
}

type fileRule struct {
	Type string   `yaml:"type"`
	Seq  []string `yaml:"seq"`
}

type fileSignal struct {
	Relation   string  `yaml:"relation"`
	Confidence float64 `yaml:"confidence"`
}

// Load reads a lexicon from a YAML file. Any malformed entry is a fatal
// error: the pipeline must not run with a partial lexicon.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	lex := &Lexicon{
		Exact:          make(map[string]Tag, len(f.Exact)),
		Signals:        make(map[string]SignalRule, len(f.Signals)),
		IgnoreCues:     f.IgnoreCues,
		ZoneBreakers:   f.ZoneBreakers,
		UnknownDate:    f.UnknownDate,
		SkipCues:       f.SkipCues,
		RoleIgnoreCues: f.RoleIgnoreCues,
		SummaryClauses: f.SummaryClauses,
	}

	for surface, tag := range f.Exact {
		lex.Exact[strings.ToLower(surface)] = Tag(tag)
	}
	for _, r := range f.Regex {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile regex %q: %w", r.Pattern, err)
		}
		lex.Regex = append(lex.Regex, RegexRule{Pattern: re, Tag: Tag(r.Tag)})
	}

	var convErr error
	convert := func(rules []fileRule) []ChunkRule {
		out := make([]ChunkRule, 0, len(rules))
		for _, r := range rules {
			if len(r.Seq) == 0 {
				convErr = fmt.Errorf("chunk rule %q has empty sequence", r.Type)
				return nil
			}
			cr := ChunkRule{Type: model.FeatureType(r.Type)}
			for _, s := range r.Seq {
				cr.Seq = append(cr.Seq, Tag(s))
			}
			out = append(out, cr)
		}
		return out
	}
	lex.Primary = convert(f.Primary)
	lex.Secondary = convert(f.Secondary)
	if convErr != nil {
		return nil, convErr
	}

	for word, s := range f.Signals {
		rel := Relation(strings.ToUpper(s.Relation))
		switch rel {
		case RelAfter, RelBefore, RelSame:
		default:
			return nil, fmt.Errorf("signal %q: unknown relation %q", word, s.Relation)
		}
		lex.Signals[strings.ToLower(word)] = SignalRule{Relation: rel, Confidence: s.Confidence}
	}

	lex.finish()
	return lex, nil
}

// finish computes derived fields after construction.
func (l *Lexicon) finish() {
	for surface := range l.Exact {
		n := len(strings.Fields(surface))
		if n > l.MaxPhraseLen {
			l.MaxPhraseLen = n
		}
	}
	if l.MaxPhraseLen == 0 {
		l.MaxPhraseLen = 1
	}
}
