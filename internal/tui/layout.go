package tui

// Rect represents a rectangular region of the terminal.
type Rect struct {
	X, Y, Width, Height int
}

// Layout holds the computed region geometry for a given terminal size.
type Layout struct {
	Header   Rect
	Chat     Rect
	Sidebar  Rect // zero Width when the terminal is too narrow for history
	Thinking Rect
	Footer   Rect
	TooSmall bool // true when terminal is below the minimum 80×24
}

// Calculate computes the dashboard layout for a terminal of the given
// dimensions. Returns a Layout with TooSmall=true if width < 80 or
// height < 24.
//
// Algorithm:
//   - Header: full width, 1 row at top
//   - Footer: full width, 1 row at bottom
//   - Thinking: full width, 1 row above the footer
//   - Sidebar: 30% of width, clamped to [28, 40]; hidden below 100 columns
//   - Chat: remaining width × remaining height (left of sidebar)
func Calculate(width, height int) Layout {
	if width < 80 || height < 24 {
		return Layout{TooSmall: true}
	}

	bodyH := height - 3 // header + thinking + footer rows

	sidebarW := 0
	if width >= 100 {
		sidebarW = width * 30 / 100
		if sidebarW < 28 {
			sidebarW = 28
		}
		if sidebarW > 40 {
			sidebarW = 40
		}
	}
	chatW := width - sidebarW

	return Layout{
		Header:   Rect{X: 0, Y: 0, Width: width, Height: 1},
		Chat:     Rect{X: 0, Y: 1, Width: chatW, Height: bodyH},
		Sidebar:  Rect{X: chatW, Y: 1, Width: sidebarW, Height: bodyH},
		Thinking: Rect{X: 0, Y: height - 2, Width: width, Height: 1},
		Footer:   Rect{X: 0, Y: height - 1, Width: width, Height: 1},
		TooSmall: false,
	}
}
