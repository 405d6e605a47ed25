// Package store persists topic sessions as one JSON document per
// topic+day and reads them back for resumption and history display. One
// store instance is created per duologue invocation in
// cmd/duologue/wiring.go; the orchestration loop is the only writer.
package store

import (
	"fmt"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
)

// Writer persists the current topic session to durable storage.
type Writer interface {
	Save(topic string, messages []session.Message, status session.Status) error
}

// Reader retrieves session data from storage.
type Reader interface {
	// LoadCurrent returns the most recently modified session, or nil when
	// none exists or the latest session is completed.
	LoadCurrent() (*Session, error)
	// List returns summaries for every session file, most recent
	// filename first.
	List() ([]Summary, error)
}

// Store combines Writer and Reader into a single handle.
type Store interface {
	Writer
	Reader
}

// Session is the persisted form of one topic session.
type Session struct {
	Timestamp      string            `json:"timestamp"` // YYYYMMDD_HHMMSS of last save
	Topic          string            `json:"topic"`
	Messages       []session.Message `json:"messages"`
	EvolutionStage int               `json:"evolution_stage"`
	Status         session.Status    `json:"status"`
}

// Summary is the projection of a session file used for history display.
type Summary struct {
	Date         string // "2006-01-02 15:04", from the document timestamp
	Topic        string
	Status       session.Status
	MessageCount int
}

// StoreError reports a file read/write/parse failure. Listing and loading
// skip malformed files rather than aborting the scan; save failures are
// surfaced to the caller.
type StoreError struct {
	Op   string // "save", "load", "list"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
