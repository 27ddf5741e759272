package adapters

import "github.com/ppiankov/caseline/internal/model"

// GenericAdapter is the fallback for narratives with no known family. It
// trusts every anchor kind equally and strips nothing.
type GenericAdapter struct{}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// Family returns the report family this adapter handles
func (a *GenericAdapter) Family() model.ReportFamily {
	return model.FamilyGeneric
}

// ExposureKinds returns anchor preference tiers for exposure estimation
func (a *GenericAdapter) ExposureKinds() [][]model.AnchorKind {
	return [][]model.AnchorKind{
		{model.AnchorVaccination, model.AnchorInjection, model.AnchorAdministration},
		{model.AnchorVaccine, model.AnchorDrug},
	}
}

// PreZoneLookup reports whether pre-zone features consult the reference table
func (a *GenericAdapter) PreZoneLookup() bool {
	return false
}

// Normalize returns the text unchanged.
func (a *GenericAdapter) Normalize(text string) string {
	return text
}
