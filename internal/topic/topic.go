// Package topic decides when a discussion is exhausted and generates the
// next one. Completion detection is LLM-judged, not rule-based, so the
// manager tolerates ambiguous verdicts: any failure defaults to
// "continue" rather than cutting a topic short.
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/persona"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
)

// DefaultCompletionThreshold is the minimum message count before a
// completion check goes out to the backend at all.
const DefaultCompletionThreshold = 8

// Generator produces a completion for a prompt. *backend.Adapter
// satisfies this interface.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Manager runs the topic lifecycle: completion checks and next-topic
// generation, themed by a personality pack.
type Manager struct {
	gen       Generator
	pack      persona.Pack
	threshold int
	log       zerolog.Logger
}

// NewManager creates a Manager. threshold <= 0 selects
// DefaultCompletionThreshold.
func NewManager(gen Generator, pack persona.Pack, threshold int, log zerolog.Logger) *Manager {
	if threshold <= 0 {
		threshold = DefaultCompletionThreshold
	}
	return &Manager{
		gen:       gen,
		pack:      pack,
		threshold: threshold,
		log:       log,
	}
}

// IsComplete reports whether the conversation has exhausted its topic.
// Short histories return false without a backend call. The verdict is
// positive only when the lowercased response contains the literal token
// "complete"; a backend failure also reads as "continue".
func (m *Manager) IsComplete(ctx context.Context, history []session.Message) bool {
	if len(history) < m.threshold {
		return false
	}

	recent := history[len(history)-m.threshold:]
	serialized, err := json.MarshalIndent(recent, "", "  ")
	if err != nil {
		serialized = []byte("[]")
	}

	prompt := fmt.Sprintf(`Check if these AIs are done with their chat.
Look for:
1. Have they both made their points?
2. Is the conversation getting stale?
3. Are they starting to repeat stuff?
4. Does it feel like a natural end?

Chat:
%s

Just say 'complete' if they're done or 'continue' if they should keep talking.`, serialized)

	verdict, err := m.gen.Generate(ctx, prompt)
	if err != nil {
		m.log.Warn().Err(err).Msg("completion check failed, continuing topic")
		return false
	}
	return strings.Contains(strings.ToLower(verdict), "complete")
}

// Next asks the initiating persona for a new topic continuous with the
// previous one. A backend failure yields the pack's default topic.
func (m *Manager) Next(ctx context.Context, previousTopic string) string {
	prompt := fmt.Sprintf(`Current chat was about: %s

As %s, suggest a new topic to discuss with %s.
Keep it:
- Related to %s
- Interesting but not too complex
- Something two tech-savvy friends would debate
- Casual and fun

Just give the topic, no extra text.`,
		previousTopic, m.pack.First.ID, m.pack.Second.ID, m.pack.Theme)

	next, err := m.gen.Generate(ctx, prompt)
	if err != nil {
		m.log.Warn().Err(err).Msg("topic generation failed, using default topic")
		return m.pack.DefaultTopic
	}
	return singleLine(strings.TrimSpace(next))
}

// singleLine collapses a multi-line topic suggestion into one line so it
// stays usable as a filename component and header text.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
