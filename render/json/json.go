// Package json renders a report as the history record it would produce.
package json

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sonnes/lekha/core"
)

// Renderer renders a report to JSON.
type Renderer struct {
	// Indent controls pretty-printing. When true, output is indented.
	Indent bool

	// Now stamps the record. Nil means time.Now.
	Now func() time.Time
}

// New creates a JSON Renderer with indentation enabled.
func New() *Renderer {
	return &Renderer{Indent: true}
}

// Render writes r as a history record.
func (r *Renderer) Render(w io.Writer, rep *core.Report) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return r.Write(w, core.NewRecord(rep, now()))
}

// Write encodes an existing record.
func (r *Renderer) Write(w io.Writer, rec any) error {
	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rec)
}
