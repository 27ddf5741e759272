package model

import "time"

// ReportFamily discriminates the two supported report families, which differ
// in anchor-tag preference and fallback behavior.
type ReportFamily string

const (
	FamilyVAERS   ReportFamily = "vaers"
	FamilyFAERS   ReportFamily = "faers"
	FamilyGeneric ReportFamily = "generic"
)

// Request is the per-document input to the pipeline. Date strings that fail
// to parse are treated as absent.
type Request struct {
	Text         string       `json:"text"`
	ExposureDate string       `json:"exposure_date,omitempty"` // Caller-supplied, optional
	OnsetDate    string       `json:"onset_date,omitempty"`    // Caller-supplied, optional
	ReceivedDate string       `json:"received_date,omitempty"` // Report reference date, optional
	Family       ReportFamily `json:"family,omitempty"`
}

// FeatureRow is one row of the ordered feature table handed to the
// GUI/storage collaborators.
type FeatureRow struct {
	Type       FeatureType `json:"type"`
	Text       string      `json:"text"`
	Sentence   int         `json:"sentence"`
	StartDate  string      `json:"start_date,omitempty"` // YYYY-MM-DD or empty (UNKNOWN)
	EndDate    string      `json:"end_date,omitempty"`
	Start      int         `json:"start"`
	End        int         `json:"end"`
	Confidence float64     `json:"confidence"`
	Code       string      `json:"code,omitempty"` // External coding slot
	ID         int         `json:"id"`
	Comment    string      `json:"comment,omitempty"`
	MatchLevel int         `json:"match_level,omitempty"`
	CleanText  string      `json:"clean_text,omitempty"`
}

// TimexRow is one row of the ordered timex table.
type TimexRow struct {
	Text       string  `json:"text"`
	Date       string  `json:"date,omitempty"` // YYYY-MM-DD or empty
	Start      int     `json:"start"`
	Confidence float64 `json:"confidence"`
}

// DocumentFeature is the immutable result of analyzing one narrative.
type DocumentFeature struct {
	Subject      string             `json:"subject,omitempty"` // Source identifier (file name)
	AnalyzedAt   time.Time          `json:"analyzed_at"`
	Family       ReportFamily       `json:"family"`
	Features     []FeatureRow       `json:"features"`
	Timexes      []TimexRow         `json:"timexes"`
	ExposureDate string             `json:"exposure_date,omitempty"`
	OnsetDate    string             `json:"onset_date,omitempty"`
	ReceivedDate string             `json:"received_date,omitempty"`
	OnsetHours   int                `json:"onset_hours,omitempty"` // Onset minus exposure, whole hours
	Confidence   float64            `json:"confidence"`            // Document-level estimate grade
	Warnings     []ValidationResult `json:"warnings,omitempty"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional summary; never affects dates
}

// ValidationResult records a non-fatal invariant violation found while
// checking the finished tables.
type ValidationResult struct {
	Check   string `json:"check"`
	Detail  string `json:"detail"`
	Feature int    `json:"feature_id,omitempty"` // Offending feature id, when applicable
}

// LLMSummary contains the optional reviewer-facing summary.
// It is generated after extraction and never feeds back into the tables.
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// DateOnly is the table date format.
const DateOnly = "2006-01-02"

// FormatDate renders a nullable date for table rows.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateOnly)
}
