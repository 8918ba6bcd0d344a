// Package decode turns raw artifact bytes into structured, format-specific
// representations. One decoder per format family; decoders never panic and
// report all failures as *Error values so viewers can surface them as
// inline alerts.
package decode

import (
	"strings"

	"github.com/arcadia-data/preview/pkg/classify"
)

// Error is a format-specific parse failure. Reasons holds every problem
// found; the CSV decoder in particular accumulates row-level errors rather
// than aborting on the first bad row.
type Error struct {
	Format  classify.FormatFamily
	Reasons []string
}

func (e *Error) Error() string {
	return string(e.Format) + " decode failed: " + strings.Join(e.Reasons, "; ")
}

func newError(format classify.FormatFamily, reasons ...string) *Error {
	return &Error{Format: format, Reasons: reasons}
}
