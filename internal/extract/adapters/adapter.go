package adapters

import (
	"strings"

	"github.com/ppiankov/caseline/internal/model"
)

// Adapter captures the conventions of one report family: which anchor
// events mark the exposure, whether features before the first dated zone
// may fall back to the reference table, and how to strip the family's
// boilerplate before analysis.
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// Family returns the report family this adapter handles
	Family() model.ReportFamily

	// ExposureKinds returns anchor preference tiers for exposure
	// estimation, most trusted first
	ExposureKinds() [][]model.AnchorKind

	// PreZoneLookup reports whether features before the first impact zone
	// may resolve through the time-reference table
	PreZoneLookup() bool

	// Normalize strips family boilerplate from the narrative
	Normalize(text string) string
}

// Registry manages report-family adapters
type Registry struct {
	adapters map[model.ReportFamily]Adapter
	generic  Adapter
}

// NewRegistry creates a registry with the built-in adapters.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[model.ReportFamily]Adapter)}
	r.Register(NewVAERSAdapter())
	r.Register(NewFAERSAdapter())
	r.generic = NewGenericAdapter()
	return r
}

// Register registers an adapter for its family.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Family()] = a
}

// Find returns the adapter for the family, falling back to generic.
func (r *Registry) Find(family model.ReportFamily) Adapter {
	if a, ok := r.adapters[family]; ok {
		return a
	}
	return r.generic
}

// stripPrefixes blanks out boilerplate sentences that begin with any of
// the given phrases. Blanked bytes become spaces so every offset after
// them still indexes the original text.
func stripPrefixes(text string, prefixes []string) string {
	lower := strings.ToLower(text)
	out := []byte(text)
	for _, p := range prefixes {
		idx := strings.Index(lower, p)
		if idx < 0 {
			continue
		}
		end := idx + len(p)
		for end < len(text) && text[end] != '.' {
			end++
		}
		if end < len(text) {
			end++
		}
		for i := idx; i < end; i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}
	return string(out)
}
