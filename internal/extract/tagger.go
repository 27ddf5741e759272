package extract

import (
	"strings"
	"unicode"

	"github.com/ppiankov/caseline/internal/lexicon"
)

// Token is a located, tagged token of one sentence.
type Token struct {
	Text  string
	Start int // Document offset
	End   int
	Tag   lexicon.Tag
}

// Tagger maps surface tokens to semantic tags using the lexicon's exact-match
// hash plus its ordered regex fallbacks; first match wins. Punctuation and
// purely numeric tokens are tagged unimportant and dropped by the caller.
type Tagger struct {
	lex *lexicon.Lexicon
}

// NewTagger creates a tagger over a loaded lexicon.
func NewTagger(lex *lexicon.Lexicon) *Tagger {
	return &Tagger{lex: lex}
}

// Tag tokenizes and tags one sentence. Offsets are document offsets; the
// sentence's own Start is used as the base. Multi-word lexicon entries are
// matched greedily (longest phrase first) and produce one token.
func (t *Tagger) Tag(s Sentence) []Token {
	raw := tokenize(s.Text, s.Start)
	var out []Token

	for i := 0; i < len(raw); i++ {
		// Try multi-token exact phrases, longest first
		matched := false
		maxLen := t.lex.MaxPhraseLen
		if maxLen > len(raw)-i {
			maxLen = len(raw) - i
		}
		for n := maxLen; n >= 1; n-- {
			phrase := joinTokens(raw[i : i+n])
			if tag, ok := t.lex.Exact[phrase]; ok {
				out = append(out, Token{
					Text:  phrase,
					Start: raw[i].Start,
					End:   raw[i+n-1].End,
					Tag:   tag,
				})
				i += n - 1
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		tok := raw[i]
		tok.Tag = t.classify(tok.Text)
		out = append(out, tok)
	}

	return out
}

// classify applies regex fallbacks, then the punctuation/numeric rule.
func (t *Tagger) classify(text string) lexicon.Tag {
	for _, r := range t.lex.Regex {
		if r.Pattern.MatchString(text) {
			return r.Tag
		}
	}
	if isPunctOrNumeric(text) {
		return lexicon.TagUnimportant
	}
	return lexicon.TagWord
}

// tokenize splits sentence text into word and punctuation tokens with
// document offsets.
func tokenize(text string, base int) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		c := rune(text[i])
		if unicode.IsSpace(c) {
			i++
			continue
		}
		if isWordByte(text[i]) {
			j := i
			for j < len(text) && (isWordByte(text[j]) || isInnerByte(text, j)) {
				j++
			}
			tokens = append(tokens, Token{Text: text[i:j], Start: base + i, End: base + j})
			i = j
			continue
		}
		// Single punctuation token
		tokens = append(tokens, Token{Text: text[i : i+1], Start: base + i, End: base + i + 1})
		i++
	}
	return tokens
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '&'
}

// isInnerByte accepts / - ' inside a word when flanked by word bytes, so
// "h/o", "1/1/2020" and "guillain-barre" stay single tokens.
func isInnerByte(text string, j int) bool {
	c := text[j]
	if c != '/' && c != '-' && c != '\'' {
		return false
	}
	return j+1 < len(text) && isWordByte(text[j+1])
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = strings.ToLower(tok.Text)
	}
	return strings.Join(parts, " ")
}

func isPunctOrNumeric(text string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	return !hasLetter
}
