package adapters

import "github.com/ppiankov/caseline/internal/model"

// FAERSAdapter handles drug adverse event reports, where the exposure
// event is a drug administration.
type FAERSAdapter struct{}

// NewFAERSAdapter creates a new FAERS adapter
func NewFAERSAdapter() *FAERSAdapter {
	return &FAERSAdapter{}
}

// Name returns the adapter name
func (a *FAERSAdapter) Name() string {
	return "faers"
}

// Family returns the report family this adapter handles
func (a *FAERSAdapter) Family() model.ReportFamily {
	return model.FamilyFAERS
}

// ExposureKinds returns anchor preference tiers for exposure estimation
func (a *FAERSAdapter) ExposureKinds() [][]model.AnchorKind {
	return [][]model.AnchorKind{
		{model.AnchorAdministration},
		{model.AnchorDrug, model.AnchorVaccine},
	}
}

// PreZoneLookup reports whether pre-zone features consult the reference table
func (a *FAERSAdapter) PreZoneLookup() bool {
	return false
}

var faersBoilerplate = []string{
	"this case was received from",
	"a spontaneous report was received",
	"case received on",
}

// Normalize strips the FAERS intake boilerplate.
func (a *FAERSAdapter) Normalize(text string) string {
	return stripPrefixes(text, faersBoilerplate)
}
