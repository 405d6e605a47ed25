package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
)

// DefaultContextWindow is how many trailing messages are serialized into
// a turn prompt.
const DefaultContextWindow = 5

// Generator produces a completion for a prompt. *backend.Adapter
// satisfies this interface.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine produces persona-conditioned conversation turns. Turn generation
// never fails: when the backend exhausts its retries, the pack's fallback
// reply is returned instead so the orchestration loop keeps running.
type Engine struct {
	gen           Generator
	pack          Pack
	contextWindow int
	log           zerolog.Logger
}

// NewEngine creates an Engine for the given pack. contextWindow <= 0
// selects DefaultContextWindow.
func NewEngine(gen Generator, pack Pack, contextWindow int, log zerolog.Logger) *Engine {
	if contextWindow <= 0 {
		contextWindow = DefaultContextWindow
	}
	return &Engine{
		gen:           gen,
		pack:          pack,
		contextWindow: contextWindow,
		log:           log,
	}
}

// Respond generates speaker's reply to lastMessage given the recent
// history. The returned string is always usable as message content.
func (e *Engine) Respond(ctx context.Context, lastMessage string, speaker session.PersonaID, history []session.Message) string {
	prompt := e.buildPrompt(lastMessage, speaker, history)

	reply, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		e.log.Warn().Err(err).Str("speaker", string(speaker)).Msg("turn generation failed, using fallback reply")
		return e.pack.FallbackReply
	}
	return strings.TrimSpace(reply)
}

// buildPrompt interpolates persona style, serialized recent context, the
// message being replied to, and the formatting requirements into one
// prompt string.
func (e *Engine) buildPrompt(lastMessage string, speaker session.PersonaID, history []session.Message) string {
	profile, ok := e.pack.Profile(speaker)
	if !ok {
		profile = e.pack.First
	}

	recent := history
	if len(recent) > e.contextWindow {
		recent = recent[len(recent)-e.contextWindow:]
	}
	context, err := json.MarshalIndent(recent, "", "  ")
	if err != nil {
		context = []byte("[]")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", profile.Style)
	fmt.Fprintf(&sb, "Recent chat:\n%s\n\n", context)
	fmt.Fprintf(&sb, "Reply to: %s\n\n", lastMessage)
	sb.WriteString(`Requirements:
- Talk naturally like you're chatting with a friend
- Use your personality but keep it real
- Actually respond to what was said
- Add your own thoughts or disagree if you want
- Keep it to 2-3 sentences
- Use normal language, avoid being too technical
- Stay on topic but be conversational`)
	if profile.Quirk != "" {
		fmt.Fprintf(&sb, "\n- %s", profile.Quirk)
	}
	return sb.String()
}
