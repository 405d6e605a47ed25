package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/loop"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/persona"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout = Calculate(msg.Width, msg.Height)
		if !m.layout.TooSmall {
			m.chat = m.chat.SetSize(m.layout.Chat.Width, m.layout.Chat.Height)
			m.chat = m.chat.SetBlocks(m.renderTranscript())
		}
		return m, nil

	case eventMsg:
		return m.handleEvent(loop.Event(msg))

	case historyMsg:
		m.sessions = msg.sessions
		return m, nil

	case thinkTickMsg:
		m.rotateThinking()
		return m, thinkTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case loopDoneMsg:
		m.done = true
		return m, tea.Quit

	case loopErrMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "f":
		m.chat = m.chat.ToggleFollow()
		return m, nil
	}

	// Remaining keys (arrows, pgup/pgdown, etc.) drive transcript scrolling.
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

func (m Model) handleEvent(ev loop.Event) (tea.Model, tea.Cmd) {
	if ev.Topic != "" {
		m.topic = ev.Topic
	}
	if ev.MessageCount > 0 {
		m.msgCount = ev.MessageCount
	}
	if ev.TopicsDone > 0 {
		m.topicsDone = ev.TopicsDone
	}
	if ev.NextSpeaker != "" {
		m.nextSpeaker = ev.NextSpeaker
	}

	var cmds []tea.Cmd
	switch ev.Kind {
	case loop.EventTopicStart:
		// Fresh session: the transcript restarts under the new topic.
		m.transcript = nil
		m.chat = m.chat.Clear()

	case loop.EventTopicComplete:
		if m.history != nil {
			cmds = append(cmds, loadHistory(m.history))
		}

	case loop.EventWaiting:
		m.rotateThinking()
	}

	if block := m.theme.RenderEvent(ev, m.layout.Chat.Width); block != "" {
		m.transcript = append(m.transcript, ev)
		m.chat = m.chat.Append(block)
	}

	cmds = append(cmds, waitForEvent(m.events))
	return m, tea.Batch(cmds...)
}

// rotateThinking picks a fresh processing line from the next speaker's
// pool.
func (m *Model) rotateThinking() {
	profile, ok := m.pack.Profile(m.nextSpeaker)
	if !ok {
		m.thinking = ""
		return
	}
	m.thinking = persona.PickRandom(m.rng, profile.ProcessingLines)
}

// renderTranscript re-renders every retained event at the current chat
// width.
func (m Model) renderTranscript() []string {
	blocks := make([]string, 0, len(m.transcript))
	for _, ev := range m.transcript {
		if block := m.theme.RenderEvent(ev, m.layout.Chat.Width); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
