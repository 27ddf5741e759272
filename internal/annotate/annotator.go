// Package annotate finds and types candidate temporal expressions in raw
// narrative text. The production deployment plugs a vendor annotator in
// behind the Annotator interface; the rule annotator in this package is the
// default implementation and the one exercised by tests.
package annotate

import (
	"time"

	"github.com/ppiankov/caseline/internal/model"
)

// Annotator returns candidate timexes with type and offsets and, where
// resolvable without context, a concrete datetime. Returned timexes must be
// sorted by start offset and non-overlapping; Role is always NORMAL (the
// core mutates it).
type Annotator interface {
	Annotate(text string, reference *time.Time) ([]*model.Timex, error)
}
