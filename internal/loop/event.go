package loop

import (
	"time"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
)

// EventKind identifies the type of an orchestration event.
type EventKind int

const (
	EventInfo          EventKind = iota // general informational message
	EventTopicStart                     // a fresh topic session opened
	EventMessage                        // a message was appended to the session
	EventTopicComplete                  // the session was finalized
	EventWaiting                        // deadline armed; next speaker known
	EventError                          // recoverable error (save failure etc.)
	EventStopped                        // loop stopped (context cancelled)
	EventDone                           // loop finished (max topics reached)
)

// Event is a structured notification emitted by the orchestrator. When
// the Orchestrator.Events channel is set, events are sent there for TUI
// or stdout consumption; the loop never blocks on a slow consumer.
type Event struct {
	Kind      EventKind
	Timestamp time.Time

	// Session state at emission time
	Topic        string
	MessageCount int
	NextSpeaker  session.PersonaID

	// Message fields (EventMessage, EventTopicStart, EventTopicComplete)
	Role    session.PersonaID
	Content string

	// Info/error text
	Message string

	// Completed-topic counter (EventTopicComplete, EventDone)
	TopicsDone int
}
