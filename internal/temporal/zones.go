package temporal

import (
	"sort"

	"github.com/ppiankov/caseline/internal/extract"
	"github.com/ppiankov/caseline/internal/model"
)

// Timeline maintains the ordered, non-overlapping impact zones of one
// document. Each resolved timex governs the interval from its own span to
// the next resolved timex, unless an IGNORE sentence truncates it first;
// SKIP sentences are excised, splitting the zone that spans them.
type Timeline struct {
	doc       string
	sentences []extract.Sentence
	classes   []SentenceClass
	zones     []model.ImpactZone
}

// NewTimeline creates an empty timeline over a classified document.
func NewTimeline(doc string, sentences []extract.Sentence, classes []SentenceClass) *Timeline {
	return &Timeline{doc: doc, sentences: sentences, classes: classes}
}

// Build opens the initial zones from the resolved, NORMAL-role DATE timexes
// in document order.
func (t *Timeline) Build(timexes []*model.Timex) {
	var openers []*model.Timex
	for _, tm := range timexes {
		if tm.Type != model.TimexDate || tm.Role != model.RoleNormal || !tm.Resolved() {
			continue
		}
		if t.suppressed(tm.Sentence) {
			continue
		}
		openers = append(openers, tm)
	}
	sort.Slice(openers, func(i, j int) bool { return openers[i].Start < openers[j].Start })

	for i, tm := range openers {
		end := len(t.doc)
		if i+1 < len(openers) {
			end = openers[i+1].Start
		}
		end = t.truncate(tm.Start, end)
		if end <= tm.Start {
			continue
		}
		t.zones = append(t.zones, model.ImpactZone{
			Start: tm.Start, End: end, DateTime: *tm.DateTime, Source: tm,
		})
	}
	t.exciseSkips()
}

// Insert folds a newly resolved timex into the zone list, splitting the
// zone it falls inside or appending a new one, then re-runs SKIP excision.
func (t *Timeline) Insert(tm *model.Timex) {
	if !tm.Resolved() || tm.Role != model.RoleNormal || t.suppressed(tm.Sentence) {
		return
	}

	for i := range t.zones {
		z := &t.zones[i]
		if !z.Covers(tm.Start) {
			continue
		}
		if z.Start == tm.Start {
			return // Already governed from the same opener
		}
		newZone := model.ImpactZone{Start: tm.Start, End: z.End, DateTime: *tm.DateTime, Source: tm}
		z.End = tm.Start
		t.zones = append(t.zones, newZone)
		t.sortZones()
		t.exciseSkips()
		return
	}

	// Outside every zone: open a fresh one up to the next zone or doc end
	end := len(t.doc)
	for _, z := range t.zones {
		if z.Start > tm.Start && z.Start < end {
			end = z.Start
		}
	}
	end = t.truncate(tm.Start, end)
	if end <= tm.Start {
		return
	}
	t.zones = append(t.zones, model.ImpactZone{Start: tm.Start, End: end, DateTime: *tm.DateTime, Source: tm})
	t.sortZones()
	t.exciseSkips()
}

// ZoneAt returns the zone covering the offset, or nil.
func (t *Timeline) ZoneAt(offset int) *model.ImpactZone {
	for i := range t.zones {
		if t.zones[i].Covers(offset) {
			return &t.zones[i]
		}
	}
	return nil
}

// MostRecentAt returns the zone covering the offset, or failing that the
// nearest zone that starts before it.
func (t *Timeline) MostRecentAt(offset int) *model.ImpactZone {
	if z := t.ZoneAt(offset); z != nil {
		return z
	}
	var best *model.ImpactZone
	for i := range t.zones {
		z := &t.zones[i]
		if z.Start <= offset && (best == nil || z.Start > best.Start) {
			best = z
		}
	}
	return best
}

// First returns the earliest zone, or nil when the timeline is empty.
func (t *Timeline) First() *model.ImpactZone {
	if len(t.zones) == 0 {
		return nil
	}
	return &t.zones[0]
}

// Zones returns the sorted zone list.
func (t *Timeline) Zones() []model.ImpactZone {
	return t.zones
}

// suppressed reports whether a sentence may not open zones.
func (t *Timeline) suppressed(sentence int) bool {
	if sentence < 0 || sentence >= len(t.classes) {
		return false
	}
	return t.classes[sentence] != ClassNormal
}

// truncate clamps a zone end at the first IGNORE sentence after the start.
func (t *Timeline) truncate(start, end int) int {
	for i, s := range t.sentences {
		if t.classes[i] != ClassIgnore {
			continue
		}
		if s.Start > start && s.Start < end {
			end = s.Start
		}
	}
	return end
}

// exciseSkips removes every SKIP sentence interval from the zones it
// intersects, splitting zones that span one. Propagation continues past the
// skipped sentence.
func (t *Timeline) exciseSkips() {
	for i, s := range t.sentences {
		if t.classes[i] != ClassSkip {
			continue
		}
		var out []model.ImpactZone
		for _, z := range t.zones {
			switch {
			case z.End <= s.Start || z.Start >= s.End:
				out = append(out, z)
			case z.Start < s.Start && z.End > s.End:
				left := z
				left.End = s.Start
				right := z
				right.Start = s.End
				out = append(out, left, right)
			case z.Start < s.Start:
				z.End = s.Start
				out = append(out, z)
			case z.End > s.End:
				z.Start = s.End
				out = append(out, z)
			}
		}
		t.zones = out
	}
	t.sortZones()
}

func (t *Timeline) sortZones() {
	sort.Slice(t.zones, func(i, j int) bool { return t.zones[i].Start < t.zones[j].Start })
}
