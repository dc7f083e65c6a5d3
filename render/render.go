// Package render defines the interface for presenting a session report.
package render

import (
	"io"

	"github.com/sonnes/lekha/core"
)

// Renderer writes a report to the given writer in a specific format.
type Renderer interface {
	Render(w io.Writer, r *core.Report) error
}
