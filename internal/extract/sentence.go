package extract

import "unicode"

// Sentence is a located sentence of the original document. Offsets index the
// original text so downstream spans stay anchored to the source.
type Sentence struct {
	Index int
	Start int
	End   int
	Text  string
}

// SplitSentences splits narrative text into located sentences. Terminators
// are . ! ? followed by whitespace, plus blank lines. Abbreviation periods
// followed by a lowercase letter do not split.
func SplitSentences(text string) []Sentence {
	var sentences []Sentence
	start := -1

	flush := func(end int) {
		if start < 0 || end <= start {
			return
		}
		raw := text[start:end]
		// Trim trailing whitespace from the span
		for end > start && isSpaceByte(text[end-1]) {
			end--
		}
		if end <= start {
			start = -1
			return
		}
		raw = text[start:end]
		sentences = append(sentences, Sentence{
			Index: len(sentences),
			Start: start,
			End:   end,
			Text:  raw,
		})
		start = -1
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if start < 0 {
			if !isSpaceByte(c) {
				start = i
			}
			continue
		}

		switch c {
		case '.', '!', '?':
			// Split only when followed by whitespace or end of text, and not
			// an abbreviation continuing in lowercase ("e.g. this").
			if i+1 >= len(text) {
				flush(i + 1)
				continue
			}
			if isSpaceByte(text[i+1]) {
				j := i + 1
				for j < len(text) && isSpaceByte(text[j]) {
					j++
				}
				if j >= len(text) || !unicode.IsLower(rune(text[j])) {
					flush(i + 1)
				}
			}
		case '\n':
			// A blank line ends the sentence even without a terminator
			if i+1 < len(text) && text[i+1] == '\n' {
				flush(i)
			}
		}
	}
	if start >= 0 {
		flush(len(text))
	}

	return sentences
}

// SentenceAt returns the index of the sentence covering the offset, or -1.
func SentenceAt(sentences []Sentence, offset int) int {
	for _, s := range sentences {
		if offset >= s.Start && offset < s.End {
			return s.Index
		}
	}
	return -1
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
