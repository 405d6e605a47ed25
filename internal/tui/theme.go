package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/loop"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/persona"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
)

// Theme holds accent-color-derived styles plus the per-persona styles
// computed from the active personality pack. Non-accent styles (palette,
// timestamp, error) are package-level in styles.go.
type Theme struct {
	accentStyle     lipgloss.Style // for the header bar
	borderFocused   lipgloss.Style // focused panel border
	borderUnfocused lipgloss.Style // unfocused panel border
	speakers        map[session.PersonaID]lipgloss.Style
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#00FF00")
// and the active pack. If accentColor is empty, the default accent color
// is used. Personas with no accent color of their own render in the
// default info style.
func NewTheme(accentColor string, pack persona.Pack) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)

	speakers := make(map[session.PersonaID]lipgloss.Style, 2)
	for _, p := range []persona.Profile{pack.First, pack.Second} {
		style := infoStyle
		if p.AccentColor != "" {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(p.AccentColor))
		}
		speakers[p.ID] = style.Bold(true)
	}

	return Theme{
		accentStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		borderFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c),
		borderUnfocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray),
		speakers: speakers,
	}
}

// AccentHeaderStyle returns the style for the header bar.
func (t Theme) AccentHeaderStyle() lipgloss.Style {
	return t.accentStyle
}

// PanelBorderStyle returns the appropriate border style for a panel based
// on whether it currently holds keyboard focus.
func (t Theme) PanelBorderStyle(focused bool) lipgloss.Style {
	if focused {
		return t.borderFocused
	}
	return t.borderUnfocused
}

// SpeakerStyle returns the display style for a persona.
func (t Theme) SpeakerStyle(id session.PersonaID) lipgloss.Style {
	if s, ok := t.speakers[id]; ok {
		return s
	}
	return infoStyle.Bold(true)
}

// RenderEvent renders a loop.Event as one chat block (possibly spanning
// several terminal lines) at the given width. Returns "" for event kinds
// that carry no chat content.
func (t Theme) RenderEvent(ev loop.Event, width int) string {
	ts := timestampStyle.Render(fmt.Sprintf("[%s]", ev.Timestamp.Format("15:04:05")))

	switch ev.Kind {
	case loop.EventMessage:
		return t.renderMessage(ts, ev.Role, ev.Content, width)

	case loop.EventTopicStart:
		label := singleLine(ev.Topic)
		return fmt.Sprintf("%s  %s", ts, doneStyle.Render("── "+label+" ──"))

	case loop.EventTopicComplete:
		return fmt.Sprintf("%s  %s", ts, doneStyle.Render(fmt.Sprintf("✅ topic complete (%d total)", ev.TopicsDone)))

	case loop.EventError:
		return fmt.Sprintf("%s  %s", ts, errorStyle.Render("❌ "+singleLine(ev.Message)))

	case loop.EventStopped:
		return fmt.Sprintf("%s  %s", ts, errorStyle.Render("⏹ "+singleLine(ev.Message)))

	case loop.EventDone:
		return fmt.Sprintf("%s  %s", ts, doneStyle.Render("✅ "+singleLine(ev.Message)))

	case loop.EventInfo:
		return fmt.Sprintf("%s  %s", ts, infoStyle.Render(singleLine(ev.Message)))

	default:
		return ""
	}
}

// renderMessage renders one persona turn: a timestamped speaker line
// followed by the body wrapped to the chat width and indented.
func (t Theme) renderMessage(ts string, role session.PersonaID, content string, width int) string {
	bodyW := width - 4
	if bodyW < 20 {
		bodyW = 20
	}
	body := lipgloss.NewStyle().Width(bodyW).Render(content)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s", ts, t.SpeakerStyle(role).Render(string(role))))
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("\n    ")
		b.WriteString(line)
	}
	return b.String()
}

// singleLine collapses newlines so status lines cannot break the layout.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
