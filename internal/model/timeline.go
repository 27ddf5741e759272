package model

import "time"

// ImpactZone is a half-open text interval [Start, End) governed by one
// resolved date. Zones are kept sorted and non-overlapping by the timeline
// manager; a SKIP sentence inside a zone splits it in two.
type ImpactZone struct {
	Start    int       `json:"start"`
	End      int       `json:"end"`
	DateTime time.Time `json:"datetime"`
	Source   *Timex    `json:"source,omitempty"` // Timex that opened the zone
}

// Covers reports whether the offset falls inside the zone.
func (z *ImpactZone) Covers(offset int) bool {
	return offset >= z.Start && offset < z.End
}

// AnchorKind classifies the event a time reference is keyed on
type AnchorKind string

const (
	AnchorVaccine         AnchorKind = "VACCINE"
	AnchorDrug            AnchorKind = "DRUG"
	AnchorVaccination     AnchorKind = "VACCINATION"
	AnchorInjection       AnchorKind = "INJECTION"
	AnchorHospitalization AnchorKind = "HOSPITALIZATION"
	AnchorAdministration  AnchorKind = "ADMINISTRATION"
	AnchorOnset           AnchorKind = "ONSET"
)

// Time reference confidence encodes provenance.
const (
	RefConfUser     = 1.0 // Caller-supplied exposure/onset date
	RefConfTag      = 0.9 // Tag-matched anchor word with a dated timex
	RefConfVaccine  = 0.8 // Vaccine mention co-located with a dated timex
	RefConfDrug     = 0.7 // Drug mention co-located with a dated timex
	RefConfZone     = 0.6 // Impact-zone fallback
)

// TimeReference maps an anchor event to a resolved date.
type TimeReference struct {
	Kind        AnchorKind `json:"kind"`
	MatchedText string     `json:"matched_text,omitempty"`
	Dose        int        `json:"dose,omitempty"` // 0 when no dose number applies
	Sentence    int        `json:"sentence"`
	AnchorStart int        `json:"anchor_start"` // Offset of the anchor mention
	TimexStart  int        `json:"timex_start"`  // Offset of the dating timex
	Confidence  float64    `json:"confidence"`
	DateTime    time.Time  `json:"datetime"`
}
