package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard: header bar, chat transcript with the
// session history sidebar, thinking line, footer bar.
func (m Model) View() string {
	if m.layout.TooSmall {
		return "Terminal too small (minimum 80×24). Resize or run with --no-tui.\n"
	}

	header := m.renderHeader()
	body := m.chat.View()
	if m.layout.Sidebar.Width > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar())
	}
	thinking := m.renderThinking()
	footer := m.renderFooter()

	return header + "\n" + body + "\n" + thinking + "\n" + footer
}

func (m Model) renderHeader() string {
	topic := m.topic
	if topic == "" {
		topic = "…"
	}
	content := fmt.Sprintf("💬 CHATTING ABOUT: %s", singleLine(topic))
	return m.theme.AccentHeaderStyle().Width(m.width).Render(content)
}

// renderSidebar renders the completed-session history panel.
func (m Model) renderSidebar() string {
	w := m.layout.Sidebar.Width - 2  // border columns
	h := m.layout.Sidebar.Height - 2 // border rows
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	lines := []string{doneStyle.Render("HISTORY")}
	for _, s := range m.sessions {
		if len(lines) >= h {
			break
		}
		topic := singleLine(s.Topic)
		if len([]rune(topic)) > w-2 && w > 3 {
			topic = string([]rune(topic)[:w-3]) + "…"
		}
		lines = append(lines,
			timestampStyle.Render(s.Date)+infoStyle.Render(fmt.Sprintf(" (%d)", s.MessageCount)),
			"  "+topic,
		)
	}
	if len(m.sessions) == 0 {
		lines = append(lines, footerStyle.Render("no sessions yet"))
	}

	return m.theme.PanelBorderStyle(false).
		Width(w).
		Height(h).
		Render(strings.Join(lines, "\n"))
}

// renderThinking renders the pre-turn indicator: spinner, next speaker,
// and the current processing line.
func (m Model) renderThinking() string {
	if m.done {
		return ""
	}
	line := m.thinking
	if line == "" {
		line = "..."
	}
	speaker := m.theme.SpeakerStyle(m.nextSpeaker).Render(string(m.nextSpeaker))
	return fmt.Sprintf(" %s %s %s", m.spin.View(), speaker, thinkingStyle.Render(singleLine(line)))
}

func (m Model) renderFooter() string {
	left := fmt.Sprintf("pack: %s  │  messages: %d  │  topics done: %d", m.pack.Name, m.msgCount, m.topicsDone)

	right := "q to quit"
	if !m.chat.Following() {
		right = "↑ scrolled · f to follow  │  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}

	return footerStyle.Width(m.width).Render(
		left + strings.Repeat(" ", gap) + right,
	)
}
