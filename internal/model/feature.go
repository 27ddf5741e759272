package model

// FeatureType categorizes an extracted clinical feature
type FeatureType string

const (
	FeatureSymptom        FeatureType = "SYMPTOM"                // Signs and symptoms
	FeatureDiagnosis      FeatureType = "DIAGNOSIS"              // Stated diagnoses
	FeatureSecondDx       FeatureType = "SECOND_LEVEL_DIAGNOSIS" // Secondary/complication diagnoses
	FeatureCauseOfDeath   FeatureType = "CAUSE_OF_DEATH"         // Cause-of-death statements
	FeatureDrug           FeatureType = "DRUG"                   // Drug mentions
	FeatureVaccine        FeatureType = "VACCINE"                // Vaccine mentions
	FeatureMedicalHistory FeatureType = "MEDICAL_HISTORY"        // Pre-existing conditions
	FeatureFamilyHistory  FeatureType = "FAMILY_HISTORY"         // Family history items
	FeatureRuleOut        FeatureType = "RULE_OUT"               // "Rule out X" mentions
)

// IsClinicalEvent reports whether the feature type counts toward onset estimation.
func (t FeatureType) IsClinicalEvent() bool {
	switch t {
	case FeatureSymptom, FeatureDiagnosis, FeatureSecondDx, FeatureRuleOut:
		return true
	}
	return false
}

// Feature is a typed span of narrative text produced by the chunker.
// It is created without a temporal link; the associator assigns one and
// post-processing may clear or overwrite it.
type Feature struct {
	Type       FeatureType `json:"type"`
	Text       string      `json:"text"`                  // Raw span text
	CleanText  string      `json:"clean_text,omitempty"`  // Display text with trigger words stripped
	Sentence   int         `json:"sentence"`              // Sentence index (0-based)
	Start      int         `json:"start"`                 // Byte offset into the document
	End        int         `json:"end"`                   // Byte offset past the span
	Link       *TLink      `json:"link,omitempty"`        // Governing temporal link, nil if unresolved
	InClause   bool        `json:"in_clause,omitempty"`   // Inside a clause zone; never independently dated
	ID         int         `json:"id"`                    // Stable id assigned after final ordering
	Comment    string      `json:"comment,omitempty"`     // Reviewer comment slot
	MatchLevel int         `json:"match_level,omitempty"` // Downstream coding match slot
}

// Resolved reports whether the feature carries at least one dated timex.
func (f *Feature) Resolved() bool {
	return f.Link != nil && f.Link.Resolved()
}
