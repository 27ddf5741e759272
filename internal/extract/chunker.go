package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/caseline/internal/lexicon"
	"github.com/ppiankov/caseline/internal/model"
)

// Chunker applies the chunking grammars over tagged sentences and emits
// typed feature spans. The primary grammar's matches are re-chunked
// recursively to recover compound features ("rash and fever"); the secondary
// grammar runs a single pass for its disjoint label set. Outputs are merged
// and sorted by start offset.
type Chunker struct {
	lex *lexicon.Lexicon
	doc string // Original document text, for raw span slices
}

// NewChunker creates a chunker over a loaded lexicon and the document text.
func NewChunker(lex *lexicon.Lexicon, doc string) *Chunker {
	return &Chunker{lex: lex, doc: doc}
}

// Chunk emits the features of one tagged sentence.
func (c *Chunker) Chunk(s Sentence, tokens []Token) []model.Feature {
	// Unimportant tokens never participate in grammar matching
	kept := tokens[:0:0]
	for _, tok := range tokens {
		if tok.Tag != lexicon.TagUnimportant {
			kept = append(kept, tok)
		}
	}

	secondary := c.apply(kept, c.lex.Secondary, s.Index, false)

	// Tokens consumed by the secondary grammar are withheld from the primary
	// pass so a "history of asthma" span is not also chunked as a symptom.
	free := kept[:0:0]
	for _, tok := range kept {
		if !coveredBy(secondary, tok) {
			free = append(free, tok)
		}
	}
	primary := c.apply(free, c.lex.Primary, s.Index, true)

	merged := append(primary, secondary...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
	return merged
}

// apply runs one grammar over a token list. When recursive is set, a match
// whose window holds several content tokens is re-chunked to recover the
// individual features, retyped to the outer rule's label.
func (c *Chunker) apply(tokens []Token, grammar []lexicon.ChunkRule, sentence int, recursive bool) []model.Feature {
	var features []model.Feature

	i := 0
	for i < len(tokens) {
		rule, n := matchRule(grammar, tokens[i:])
		if n == 0 {
			i++
			continue
		}
		window := tokens[i : i+n]

		if recursive && n > 1 && countContent(window) > 1 {
			inner := c.apply(stripLeadingCues(window), grammar, sentence, false)
			if len(inner) > 1 {
				for k := range inner {
					inner[k].Type = rule.Type
				}
				features = append(features, inner...)
				i += n
				continue
			}
		}

		features = append(features, c.makeFeature(rule.Type, window, sentence))
		i += n
	}

	return features
}

// matchRule finds the first grammar rule whose sequence matches at the head
// of the token list, returning the rule and the number of tokens consumed.
// Rules are ordered longest/most-specific first in the lexicon.
func matchRule(grammar []lexicon.ChunkRule, tokens []Token) (lexicon.ChunkRule, int) {
	for _, rule := range grammar {
		if len(rule.Seq) > len(tokens) {
			continue
		}
		ok := true
		for k, want := range rule.Seq {
			if !want.Matches(tokens[k].Tag) {
				ok = false
				break
			}
		}
		if ok {
			return rule, len(rule.Seq)
		}
	}
	return lexicon.ChunkRule{}, 0
}

func (c *Chunker) makeFeature(ft model.FeatureType, window []Token, sentence int) model.Feature {
	start := window[0].Start
	end := window[len(window)-1].End
	text := c.doc[start:end]

	// Clean display text keeps only the content-bearing tokens
	var clean []string
	for _, tok := range window {
		if isContent(tok.Tag) {
			clean = append(clean, tok.Text)
		}
	}
	cleanText := strings.Join(clean, " ")
	if cleanText == "" {
		cleanText = text
	}

	f := model.Feature{
		Type:      ft,
		Text:      text,
		CleanText: massage(cleanText),
		Sentence:  sentence,
		Start:     start,
		End:       end,
	}
	massageSpan(&f)
	return f
}

var (
	repeatedSeps = regexp.MustCompile(`([,;])[\s,;]+`)
	orphanDigits = regexp.MustCompile(`(^|\s)\d+(\s|$)`)
	trailingJunk = regexp.MustCompile(`[\s,;]+$|\s+(and|or)$`)
)

// massage cleans a display string: repeated separators collapse to one,
// orphan digits are stripped, trailing conjunctions and commas are trimmed.
func massage(s string) string {
	s = repeatedSeps.ReplaceAllString(s, "$1 ")
	s = orphanDigits.ReplaceAllString(s, " ")
	s = trailingJunk.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// massageSpan strips a stray leading comma from the raw span, adjusting
// offsets so the span still indexes the original document.
func massageSpan(f *model.Feature) {
	for len(f.Text) > 0 && (f.Text[0] == ',' || f.Text[0] == ' ') {
		f.Text = f.Text[1:]
		f.Start++
	}
}

func countContent(tokens []Token) int {
	n := 0
	for _, tok := range tokens {
		if isContent(tok.Tag) {
			n++
		}
	}
	return n
}

// stripLeadingCues drops tokens before the first content token.
func stripLeadingCues(tokens []Token) []Token {
	for i, tok := range tokens {
		if isContent(tok.Tag) {
			return tokens[i:]
		}
	}
	return nil
}

func isContent(t lexicon.Tag) bool {
	switch t {
	case lexicon.TagWord, lexicon.TagSymptom, lexicon.TagDrug, lexicon.TagVaccine:
		return true
	}
	return false
}

func coveredBy(features []model.Feature, tok Token) bool {
	for _, f := range features {
		if tok.Start >= f.Start && tok.End <= f.End {
			return true
		}
	}
	return false
}
