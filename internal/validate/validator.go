package validate

import (
	"fmt"
	"time"

	"github.com/ppiankov/caseline/internal/model"
)

// Validator checks the finished tables against the structural invariants
// of an analysis. Violations are collected as warnings on the result and
// never abort the run.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Check verifies one result against the narrative it was built from and
// returns every violation found.
func (v *Validator) Check(doc string, res *model.DocumentFeature, zones []model.ImpactZone) []model.ValidationResult {
	var out []model.ValidationResult
	out = append(out, v.checkFeatures(doc, res)...)
	out = append(out, v.checkTimexes(doc, res)...)
	out = append(out, v.checkZones(zones)...)
	out = append(out, v.checkDates(res)...)
	return out
}

// checkFeatures verifies offsets, ordering, and id assignment.
func (v *Validator) checkFeatures(doc string, res *model.DocumentFeature) []model.ValidationResult {
	var out []model.ValidationResult
	prevStart := -1
	for _, f := range res.Features {
		if f.Start < 0 || f.End > len(doc) || f.Start >= f.End {
			out = append(out, model.ValidationResult{
				Check:   "feature_span",
				Detail:  fmt.Sprintf("span [%d,%d) out of bounds for %d-byte narrative", f.Start, f.End, len(doc)),
				Feature: f.ID,
			})
			continue
		}
		if doc[f.Start:f.End] != f.Text && f.Text != "" {
			out = append(out, model.ValidationResult{
				Check:   "feature_text",
				Detail:  fmt.Sprintf("text %q does not match narrative span %q", f.Text, doc[f.Start:f.End]),
				Feature: f.ID,
			})
		}
		if f.Start < prevStart {
			out = append(out, model.ValidationResult{
				Check:   "feature_order",
				Detail:  "features not sorted by start offset",
				Feature: f.ID,
			})
		}
		prevStart = f.Start
		if f.ID <= 0 {
			out = append(out, model.ValidationResult{
				Check:  "feature_id",
				Detail: fmt.Sprintf("feature at %d has no id", f.Start),
			})
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			out = append(out, model.ValidationResult{
				Check:   "feature_confidence",
				Detail:  fmt.Sprintf("confidence %.2f outside [0,1]", f.Confidence),
				Feature: f.ID,
			})
		}
	}
	return out
}

func (v *Validator) checkTimexes(doc string, res *model.DocumentFeature) []model.ValidationResult {
	var out []model.ValidationResult
	for _, tm := range res.Timexes {
		if tm.Start < 0 || tm.Start >= len(doc) {
			out = append(out, model.ValidationResult{
				Check:  "timex_span",
				Detail: fmt.Sprintf("timex %q at %d out of bounds", tm.Text, tm.Start),
			})
		}
		if tm.Date != "" {
			if _, err := time.Parse(model.DateOnly, tm.Date); err != nil {
				out = append(out, model.ValidationResult{
					Check:  "timex_date",
					Detail: fmt.Sprintf("timex %q carries unparseable date %q", tm.Text, tm.Date),
				})
			}
		}
	}
	return out
}

// checkZones verifies the timeline stayed sorted and non-overlapping.
func (v *Validator) checkZones(zones []model.ImpactZone) []model.ValidationResult {
	var out []model.ValidationResult
	for i := 1; i < len(zones); i++ {
		if zones[i].Start < zones[i-1].End {
			out = append(out, model.ValidationResult{
				Check:  "zone_overlap",
				Detail: fmt.Sprintf("zone [%d,%d) overlaps [%d,%d)", zones[i].Start, zones[i].End, zones[i-1].Start, zones[i-1].End),
			})
		}
	}
	return out
}

// checkDates verifies start/end symmetry and the exposure-onset ordering.
func (v *Validator) checkDates(res *model.DocumentFeature) []model.ValidationResult {
	var out []model.ValidationResult
	for _, f := range res.Features {
		if f.StartDate == "" || f.EndDate == "" {
			continue
		}
		start, err1 := time.Parse(model.DateOnly, f.StartDate)
		end, err2 := time.Parse(model.DateOnly, f.EndDate)
		if err1 != nil || err2 != nil {
			continue
		}
		if end.Before(start) {
			out = append(out, model.ValidationResult{
				Check:   "date_order",
				Detail:  fmt.Sprintf("end %s precedes start %s", f.EndDate, f.StartDate),
				Feature: f.ID,
			})
		}
	}
	if res.ExposureDate != "" && res.OnsetDate != "" {
		exp, err1 := time.Parse(model.DateOnly, res.ExposureDate)
		on, err2 := time.Parse(model.DateOnly, res.OnsetDate)
		if err1 == nil && err2 == nil && on.Before(exp) {
			out = append(out, model.ValidationResult{
				Check:  "onset_before_exposure",
				Detail: fmt.Sprintf("onset %s precedes exposure %s", res.OnsetDate, res.ExposureDate),
			})
		}
	}
	return out
}
