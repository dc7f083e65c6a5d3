// Package reader defines the interface for folding agent-specific session logs
// into a core.Snapshot and looking up session metadata.
package reader

import "github.com/sonnes/lekha/core"

// Reader aggregates agent session data.
type Reader interface {
	// ReadFile folds the transcript at path into a Snapshot. A missing file
	// yields an empty Snapshot and no error.
	ReadFile(path string, f core.Features) (*core.Snapshot, error)

	// ResolveTranscript returns the transcript path for a session, preferring
	// hint when it exists.
	ResolveTranscript(sessionID, hint string) (string, error)

	// LookupSession returns index metadata for a session, or nil when the
	// agent has none.
	LookupSession(sessionID, cwd string) (*core.SessionInfo, error)
}
