package estimate

import (
	"time"

	"github.com/ppiankov/caseline/internal/model"
	"github.com/ppiankov/caseline/internal/temporal"
)

// Result holds the estimated document dates and the confidence attached to
// each of them.
type Result struct {
	Exposure     *time.Time
	ExposureConf float64
	Onset        *time.Time
	OnsetConf    float64
	OnsetHours   *float64
	Confidence   float64
}

// Estimator derives document-level exposure and onset dates from the
// resolved features, time references, and caller-supplied dates.
type Estimator struct {
	exposureKinds [][]model.AnchorKind
}

// NewEstimator creates an estimator with the report family's anchor
// preference tiers, most-trusted tier first.
func NewEstimator(exposureKinds [][]model.AnchorKind) *Estimator {
	return &Estimator{exposureKinds: exposureKinds}
}

// Estimate computes the document dates. Caller-supplied dates always win;
// estimation only fills the gaps. Missing both anchors leaves the result
// empty rather than failing.
func (e *Estimator) Estimate(userExposure, userOnset *time.Time, features []*model.Feature, timexes []*model.Timex, refs *temporal.RefTable) Result {
	var res Result

	res.Exposure, res.ExposureConf = e.exposure(userExposure, timexes, refs)
	res.Onset, res.OnsetConf = e.onset(userOnset, features, res.Exposure)

	res.Confidence = documentConfidence(userExposure, userOnset, res)

	if res.Exposure != nil && res.Onset != nil {
		h := res.Onset.Sub(*res.Exposure).Hours()
		res.OnsetHours = &h
	}
	return res
}

// exposure prefers the user date, then the reference table tier by tier,
// then the first dated timex of the narrative.
func (e *Estimator) exposure(user *time.Time, timexes []*model.Timex, refs *temporal.RefTable) (*time.Time, float64) {
	if user != nil {
		return user, 1
	}

	for _, tier := range e.exposureKinds {
		if ref := refs.Lookup(tier, model.RefConfZone); ref != nil {
			dt := ref.DateTime
			return &dt, ref.Confidence
		}
	}

	for _, tm := range timexes {
		if tm.Type == model.TimexDate && tm.Role == model.RoleNormal && tm.Resolved() {
			return tm.DateTime, 0.5
		}
	}
	return nil, 0
}

// onset prefers the user date, then the earliest dated clinical event. An
// event dated before the exposure is clamped to it, with the confidence
// knocked down to reflect the disagreement.
func (e *Estimator) onset(user *time.Time, features []*model.Feature, exposure *time.Time) (*time.Time, float64) {
	if user != nil {
		return user, 1
	}

	var min *time.Time
	for _, f := range features {
		if !f.Type.IsClinicalEvent() || !f.Resolved() {
			continue
		}
		dt := f.Link.StartDate()
		if dt == nil {
			continue
		}
		if min == nil || dt.Before(*min) {
			min = dt
		}
	}
	if min == nil {
		return nil, 0
	}

	if exposure != nil && min.Before(*exposure) {
		clamped := *exposure
		return &clamped, 0.7
	}
	return min, 0.9
}

// documentConfidence grades the overall estimate: 1.0 with both dates
// supplied, 0.9 when exposure is supplied and only onset had to be
// inferred, 0.8 when both were inferred.
func documentConfidence(userExposure, userOnset *time.Time, res Result) float64 {
	switch {
	case userExposure != nil && userOnset != nil:
		return 1
	case userExposure != nil:
		return 0.9
	default:
		if res.Exposure == nil && res.Onset == nil {
			return 0.5
		}
		return 0.8
	}
}
