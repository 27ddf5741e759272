package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/lexicon"
	"github.com/ppiankov/caseline/internal/model"
)

// RefTable is the document's time-reference lookup: anchor events mapped to
// resolved dates with provenance confidence.
type RefTable struct {
	refs []model.TimeReference
}

// Add appends an entry.
func (r *RefTable) Add(ref model.TimeReference) {
	r.refs = append(r.refs, ref)
}

// Lookup returns the entry with the smallest anchor offset among the given
// kinds with confidence strictly above the floor, or nil.
func (r *RefTable) Lookup(kinds []model.AnchorKind, minConf float64) *model.TimeReference {
	var best *model.TimeReference
	for i := range r.refs {
		ref := &r.refs[i]
		if ref.Confidence <= minConf || !kindIn(ref.Kind, kinds) {
			continue
		}
		if best == nil || ref.AnchorStart < best.AnchorStart {
			best = ref
		}
	}
	return best
}

// LookupDose returns the entry for a specific dose number, preferring the
// smallest anchor offset.
func (r *RefTable) LookupDose(kinds []model.AnchorKind, dose int) *model.TimeReference {
	var best *model.TimeReference
	for i := range r.refs {
		ref := &r.refs[i]
		if ref.Dose != dose || !kindIn(ref.Kind, kinds) {
			continue
		}
		if best == nil || ref.AnchorStart < best.AnchorStart {
			best = ref
		}
	}
	return best
}

// All returns the collected entries.
func (r *RefTable) All() []model.TimeReference {
	return r.refs
}

func kindIn(k model.AnchorKind, kinds []model.AnchorKind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

var doseRe = regexp.MustCompile(`(?i)\b(?:dose\s*#?\s*(\d+)|(\d+)(?:st|nd|rd|th)\s+dose|(first|second|third|fourth|fifth)\s+dose|booster)\b`)

var doseWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
}

// doseTokenReach is how many tokens around an anchor a dose word may sit.
const doseTokenReach = 5

// BuildRefs constructs the time-reference table from caller-supplied dates,
// anchor-tagged tokens, and vaccine/drug mentions co-located with resolved
// timexes. SKIP sentences contribute nothing.
func BuildRefs(sentences []extract.Sentence, classes []SentenceClass, tokens [][]extract.Token,
	timexes []*model.Timex, exposure, onset *time.Time, family model.ReportFamily) *RefTable {

	table := &RefTable{}

	if exposure != nil {
		kind := model.AnchorVaccination
		if family == model.FamilyFAERS {
			kind = model.AnchorAdministration
		}
		table.Add(model.TimeReference{
			Kind: kind, Confidence: model.RefConfUser, DateTime: *exposure,
		})
	}
	if onset != nil {
		table.Add(model.TimeReference{
			Kind: model.AnchorOnset, Confidence: model.RefConfUser, DateTime: *onset,
		})
	}

	bySentence := timexesBySentence(timexes, len(sentences))

	for si, toks := range tokens {
		if si < len(classes) && classes[si] == ClassSkip {
			continue
		}
		dated := nearestDatedTimex(bySentence[si])
		if dated == nil {
			continue
		}
		for ti, tok := range toks {
			kind, ok := tok.Tag.AnchorKind()
			if !ok {
				continue
			}
			conf := model.RefConfTag
			switch tok.Tag {
			case lexicon.TagVaccine:
				conf = model.RefConfVaccine
			case lexicon.TagDrug:
				conf = model.RefConfDrug
			}
			table.Add(model.TimeReference{
				Kind:        kind,
				MatchedText: tok.Text,
				Dose:        doseNear(toks, ti),
				Sentence:    si,
				AnchorStart: tok.Start,
				TimexStart:  dated.Start,
				Confidence:  conf,
				DateTime:    *dated.DateTime,
			})
		}
	}

	return table
}

// doseNear scans the token window around an anchor for a dose number.
func doseNear(toks []extract.Token, anchor int) int {
	lo := anchor - doseTokenReach
	if lo < 0 {
		lo = 0
	}
	hi := anchor + doseTokenReach + 1
	if hi > len(toks) {
		hi = len(toks)
	}
	parts := make([]string, 0, hi-lo)
	for _, tok := range toks[lo:hi] {
		parts = append(parts, tok.Text)
	}
	m := doseRe.FindStringSubmatch(strings.Join(parts, " "))
	if m == nil {
		return 0
	}
	for _, g := range m[1:3] {
		if g != "" {
			n, _ := strconv.Atoi(g)
			return n
		}
	}
	if m[3] != "" {
		return doseWords[strings.ToLower(m[3])]
	}
	if strings.EqualFold(m[0], "booster") {
		return 3
	}
	return 0
}

func timexesBySentence(timexes []*model.Timex, n int) [][]*model.Timex {
	out := make([][]*model.Timex, n)
	for _, tm := range timexes {
		if tm.Sentence >= 0 && tm.Sentence < n {
			out[tm.Sentence] = append(out[tm.Sentence], tm)
		}
	}
	return out
}

// nearestDatedTimex picks the first resolved NORMAL-role timex of a sentence.
func nearestDatedTimex(timexes []*model.Timex) *model.Timex {
	for _, tm := range timexes {
		if tm.Resolved() && tm.Role == model.RoleNormal {
			return tm
		}
	}
	return nil
}
