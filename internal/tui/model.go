package tui

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/loop"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/persona"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/store"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/tui/components"
)

// thinkRotateEvery is the cadence at which the footer "thinking" line
// cycles through the next speaker's processing pool.
const thinkRotateEvery = 4 * time.Second

// Model is the bubbletea model for the conversation dashboard.
type Model struct {
	events  <-chan loop.Event
	history store.Reader // nil disables the sidebar
	pack    persona.Pack
	theme   Theme
	rng     *rand.Rand

	// Display state
	chat       components.ChatView
	spin       spinner.Model
	layout     Layout
	width      int
	height     int
	transcript []loop.Event // raw events, re-rendered on resize

	// Loop state
	topic       string
	msgCount    int
	topicsDone  int
	nextSpeaker session.PersonaID
	thinking    string
	sessions    []store.Summary
	done        bool
	err         error
}

// eventMsg wraps a loop.Event as a bubbletea message.
type eventMsg loop.Event

// loopDoneMsg signals the event channel has closed.
type loopDoneMsg struct{}

// loopErrMsg carries a loop error back to the dashboard.
type loopErrMsg struct{ err error }

// historyMsg delivers the refreshed session list for the sidebar.
type historyMsg struct{ sessions []store.Summary }

// thinkTickMsg fires on the thinking-line rotation cadence.
type thinkTickMsg struct{}

// New creates a dashboard Model that consumes events from the given
// channel. reader may be nil, in which case the history sidebar stays
// empty. accentColor may be empty for the default.
func New(events <-chan loop.Event, reader store.Reader, pack persona.Pack, accentColor string) Model {
	width, height := 80, 24
	layout := Calculate(width, height)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = thinkingStyle

	return Model{
		events:      events,
		history:     reader,
		pack:        pack,
		theme:       NewTheme(accentColor, pack),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		chat:        components.NewChatView(layout.Chat.Width, layout.Chat.Height),
		spin:        sp,
		layout:      layout,
		width:       width,
		height:      height,
		nextSpeaker: pack.First.ID,
	}
}

// Init returns the initial commands: listen for events, spin, rotate the
// thinking line, and load the session history.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.events), m.spin.Tick, thinkTick()}
	if m.history != nil {
		cmds = append(cmds, loadHistory(m.history))
	}
	return tea.Batch(cmds...)
}

// Err returns any error that occurred during the loop.
func (m Model) Err() error {
	return m.err
}

// waitForEvent returns a command that blocks on the event channel.
func waitForEvent(ch <-chan loop.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return loopDoneMsg{}
		}
		return eventMsg(ev)
	}
}

// loadHistory returns a command that lists persisted sessions for the
// sidebar. List errors read as an empty history.
func loadHistory(r store.Reader) tea.Cmd {
	return func() tea.Msg {
		sessions, err := r.List()
		if err != nil {
			return historyMsg{}
		}
		return historyMsg{sessions: sessions}
	}
}

// thinkTick returns a command that fires the next thinking-line rotation.
func thinkTick() tea.Cmd {
	return tea.Tick(thinkRotateEvery, func(time.Time) tea.Msg {
		return thinkTickMsg{}
	})
}
