package adapters

import "github.com/ppiankov/caseline/internal/model"

// VAERSAdapter handles vaccine adverse event reports. The exposure event
// is a vaccination, and narratives often describe pre-vaccination context
// before the first dated sentence, so the pre-zone lookup is enabled.
type VAERSAdapter struct{}

// NewVAERSAdapter creates a new VAERS adapter
func NewVAERSAdapter() *VAERSAdapter {
	return &VAERSAdapter{}
}

// Name returns the adapter name
func (a *VAERSAdapter) Name() string {
	return "vaers"
}

// Family returns the report family this adapter handles
func (a *VAERSAdapter) Family() model.ReportFamily {
	return model.FamilyVAERS
}

// ExposureKinds returns anchor preference tiers for exposure estimation
func (a *VAERSAdapter) ExposureKinds() [][]model.AnchorKind {
	return [][]model.AnchorKind{
		{model.AnchorVaccination, model.AnchorInjection},
		{model.AnchorVaccine, model.AnchorDrug},
	}
}

// PreZoneLookup reports whether pre-zone features consult the reference table
func (a *VAERSAdapter) PreZoneLookup() bool {
	return true
}

var vaersBoilerplate = []string{
	"information has been received",
	"this case was reported by",
	"this spontaneous report",
	"initial report received on",
}

// Normalize strips the VAERS intake boilerplate.
func (a *VAERSAdapter) Normalize(text string) string {
	return stripPrefixes(text, vaersBoilerplate)
}
