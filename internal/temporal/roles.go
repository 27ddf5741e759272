package temporal

import (
	"regexp"
	"strings"

	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/lexicon"
	"github.com/ppiankov/caseline/internal/model"
)

// SentenceClass drives how a sentence interacts with the timeline.
type SentenceClass int

const (
	ClassNormal SentenceClass = iota
	ClassIgnore               // Stops zone propagation entirely at the sentence
	ClassSkip                 // History content: excised from any spanning zone
)

// "Patient expired" means the patient died; only product-expiry uses of
// "expired" break timeline continuity.
var patientExpired = regexp.MustCompile(`(?i)\b(?:patient|pt|he|she)\s+expired\b|\bexpired\s+on\b`)

// ClassifySentences assigns a class to every sentence. Precedence is fixed:
// ignore cues, then zone breakers, then unknown-date phrases (exempt when
// the sentence is about a concomitant), then skip cues.
func ClassifySentences(sentences []extract.Sentence, lex *lexicon.Lexicon) []SentenceClass {
	classes := make([]SentenceClass, len(sentences))

	for i, s := range sentences {
		lower := strings.ToLower(s.Text)

		if containsAny(lower, lex.IgnoreCues) {
			classes[i] = ClassIgnore
			continue
		}
		breaker := false
		for _, b := range lex.ZoneBreakers {
			if !containsWord(lower, b) {
				continue
			}
			if b == "expired" && patientExpired.MatchString(lower) {
				continue
			}
			breaker = true
			break
		}
		if breaker {
			classes[i] = ClassIgnore
			continue
		}
		if containsAny(lower, lex.UnknownDate) && !strings.Contains(lower, "concomitant") {
			classes[i] = ClassIgnore
			continue
		}
		if containsAny(lower, lex.SkipCues) {
			classes[i] = ClassSkip
		}
	}

	return classes
}

// roleContextWindow is how far back from a timex the suppression cues reach.
const roleContextWindow = 24

// SuppressRoles marks timexes that must not drive timeline continuity:
// follow-up dates, report-received dates, expiration dates, acuity readings.
// Only Role is mutated.
func SuppressRoles(text string, timexes []*model.Timex, lex *lexicon.Lexicon) {
	lower := strings.ToLower(text)
	for _, tm := range timexes {
		from := tm.Start - roleContextWindow
		if from < 0 {
			from = 0
		}
		ctx := lower[from:tm.Start]
		for _, cue := range lex.RoleIgnoreCues {
			if strings.Contains(ctx, cue) {
				tm.Role = model.RoleIgnore
				break
			}
		}
	}
}

func containsAny(s string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}

// containsWord matches a cue on word boundaries so "coded" does not fire
// inside "decoded".
func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isAlnum(s[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(s) || !isAlnum(s[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(word)
		if idx >= len(s) {
			return false
		}
	}
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
