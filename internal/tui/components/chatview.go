// Package components holds reusable bubbletea widgets for the dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ChatView is a scrollable transcript panel that wraps bubbles/viewport.
// In follow mode (default), new blocks cause the view to auto-scroll to
// the bottom. Scrolling away from the bottom leaves follow mode; pressing
// 'f' toggles it explicitly.
type ChatView struct {
	vp     viewport.Model
	blocks []string // rendered (pre-styled) chat blocks
	follow bool
	width  int
	height int
}

// NewChatView creates a ChatView with the given dimensions, initially in
// follow mode.
func NewChatView(w, h int) ChatView {
	return ChatView{
		vp:     viewport.New(w, h),
		follow: true,
		width:  w,
		height: h,
	}
}

// Append adds a rendered chat block to the transcript.
func (v ChatView) Append(block string) ChatView {
	v.blocks = append(v.blocks, block)
	v.sync()
	return v
}

// SetBlocks replaces the whole transcript, e.g. after a re-render at a
// new width.
func (v ChatView) SetBlocks(blocks []string) ChatView {
	v.blocks = make([]string, len(blocks))
	copy(v.blocks, blocks)
	v.sync()
	return v
}

// Clear drops the transcript, e.g. on a topic transition.
func (v ChatView) Clear() ChatView {
	v.blocks = nil
	v.sync()
	return v
}

// Len returns the number of chat blocks currently held.
func (v ChatView) Len() int {
	return len(v.blocks)
}

// ToggleFollow switches follow mode on or off. When turned on, scrolls
// immediately to the bottom.
func (v ChatView) ToggleFollow() ChatView {
	v.follow = !v.follow
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Following reports whether follow mode is currently active.
func (v ChatView) Following() bool {
	return v.follow
}

// SetSize resizes the view to the given dimensions.
func (v ChatView) SetSize(w, h int) ChatView {
	v.width = w
	v.height = h
	v.vp.Width = w
	v.vp.Height = h
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Update handles bubbletea messages (scroll keys, mouse events).
func (v ChatView) Update(msg tea.Msg) (ChatView, tea.Cmd) {
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	if v.follow && !v.vp.AtBottom() {
		// Only leave follow mode on explicit scrolling, not on resize.
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			v.follow = false
		}
	}
	return v, cmd
}

// View renders the transcript content.
func (v ChatView) View() string {
	return v.vp.View()
}

func (v *ChatView) sync() {
	v.vp.SetContent(strings.Join(v.blocks, "\n"))
	if v.follow {
		v.vp.GotoBottom()
	}
}
