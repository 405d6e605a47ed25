// Package session defines the conversation domain types shared by the
// store, the persona engine, and the orchestration loop.
package session

import "time"

// PersonaID identifies one of the two fixed conversation personas.
type PersonaID string

// Status is the lifecycle state of a topic session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// TimestampLayout is the wall-clock format stamped on each message.
const TimestampLayout = "15:04:05"

// Message is a single turn in a topic session. Messages are append-only:
// once created they are never edited or removed, and slice order is
// conversation order.
type Message struct {
	Role      PersonaID `json:"role"`
	Content   string    `json:"content"`
	Timestamp string    `json:"timestamp"`
}

// NewMessage stamps a message with the given wall-clock time.
func NewMessage(role PersonaID, content string, at time.Time) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: at.Format(TimestampLayout),
	}
}

// State is the current in-memory topic session. It is owned by the
// orchestration loop and passed explicitly to collaborators; there is no
// ambient global session.
type State struct {
	Topic     string
	Messages  []Message
	StartedAt time.Time
}

// Append adds one message to the session.
func (s *State) Append(m Message) {
	s.Messages = append(s.Messages, m)
}

// Last returns the most recent message, or false if the session is empty.
func (s *State) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// EvolutionStage is a purely informational measure of how far a
// conversation has progressed: one stage per five messages.
func EvolutionStage(messageCount int) int {
	return messageCount / 5
}

// NextSpeaker returns whichever of the two personas did not author the
// last message, enforcing strict alternation. An empty history yields
// first, the initiating persona.
func NextSpeaker(messages []Message, first, second PersonaID) PersonaID {
	if len(messages) == 0 {
		return first
	}
	if messages[len(messages)-1].Role == first {
		return second
	}
	return first
}
