package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/loop"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/persona"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/store"
)

// stubReader serves a fixed session list for sidebar tests.
type stubReader struct {
	summaries []store.Summary
	err       error
}

func (r *stubReader) LoadCurrent() (*store.Session, error) { return nil, nil }
func (r *stubReader) List() ([]store.Summary, error)       { return r.summaries, r.err }

func newTestModel(t *testing.T) (Model, chan loop.Event) {
	t.Helper()
	ch := make(chan loop.Event, 8)
	return New(ch, nil, persona.Mainframe(), ""), ch
}

func TestNew(t *testing.T) {
	m, _ := newTestModel(t)

	if m.width != 80 || m.height != 24 {
		t.Errorf("expected default size 80x24, got %dx%d", m.width, m.height)
	}
	if m.done {
		t.Error("expected done to be false")
	}
	if m.nextSpeaker != persona.Mainframe().First.ID {
		t.Errorf("next speaker should default to the initiating persona, got %s", m.nextSpeaker)
	}
}

func TestInit(t *testing.T) {
	m, _ := newTestModel(t)

	if m.Init() == nil {
		t.Error("Init should return a non-nil command")
	}
}

func TestUpdateWindowSize(t *testing.T) {
	m, _ := newTestModel(t)

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model := updated.(Model)

	if cmd != nil {
		t.Error("window size should not produce a command")
	}
	if model.width != 120 || model.height != 40 {
		t.Errorf("expected 120x40, got %dx%d", model.width, model.height)
	}
	if model.layout.Sidebar.Width == 0 {
		t.Error("sidebar should be visible at 120 columns")
	}
}

func TestUpdateMessageEvent(t *testing.T) {
	m, _ := newTestModel(t)
	pack := persona.Mainframe()

	ev := eventMsg(loop.Event{
		Kind:         loop.EventMessage,
		Timestamp:    time.Now(),
		Topic:        "Is vim a lifestyle?",
		MessageCount: 3,
		Role:         pack.First.ID,
		Content:      "the answer is obviously yes",
	})

	updated, cmd := m.Update(ev)
	model := updated.(Model)

	if cmd == nil {
		t.Error("an event should produce a command to wait for more events")
	}
	if model.topic != "Is vim a lifestyle?" {
		t.Errorf("topic should track events, got %s", model.topic)
	}
	if model.msgCount != 3 {
		t.Errorf("expected message count 3, got %d", model.msgCount)
	}
	if len(model.transcript) != 1 {
		t.Errorf("expected 1 transcript entry, got %d", len(model.transcript))
	}
	if model.chat.Len() != 1 {
		t.Errorf("expected 1 chat block, got %d", model.chat.Len())
	}
}

func TestUpdateTopicStartClearsTranscript(t *testing.T) {
	m, _ := newTestModel(t)
	pack := persona.Mainframe()

	msgs := []loop.Event{
		{Kind: loop.EventMessage, Timestamp: time.Now(), Role: pack.First.ID, Content: "old topic message"},
		{Kind: loop.EventMessage, Timestamp: time.Now(), Role: pack.Second.ID, Content: "old topic reply"},
		{Kind: loop.EventTopicStart, Timestamp: time.Now(), Topic: "Fresh topic"},
	}

	for _, ev := range msgs {
		updated, _ := m.Update(eventMsg(ev))
		m = updated.(Model)
	}

	// Only the topic-start divider survives the transition.
	if len(m.transcript) != 1 {
		t.Errorf("topic start should clear the transcript, got %d entries", len(m.transcript))
	}
	if m.topic != "Fresh topic" {
		t.Errorf("expected topic 'Fresh topic', got %s", m.topic)
	}
}

func TestUpdateWaitingRotatesThinking(t *testing.T) {
	m, _ := newTestModel(t)
	pack := persona.Mainframe()

	ev := eventMsg(loop.Event{
		Kind:        loop.EventWaiting,
		Timestamp:   time.Now(),
		NextSpeaker: pack.Second.ID,
	})

	updated, _ := m.Update(ev)
	model := updated.(Model)

	if model.nextSpeaker != pack.Second.ID {
		t.Errorf("expected next speaker %s, got %s", pack.Second.ID, model.nextSpeaker)
	}
	if model.thinking == "" {
		t.Error("waiting event should pick a processing line")
	}

	profile, _ := pack.Profile(pack.Second.ID)
	found := false
	for _, line := range profile.ProcessingLines {
		if line == model.thinking {
			found = true
		}
	}
	if !found {
		t.Errorf("thinking line should come from the speaker's pool, got %q", model.thinking)
	}
}

func TestUpdateTopicCompleteReloadsHistory(t *testing.T) {
	ch := make(chan loop.Event, 8)
	reader := &stubReader{summaries: []store.Summary{{Date: "2026-02-23 14:30", Topic: "Old topic", MessageCount: 12}}}
	m := New(ch, reader, persona.Mainframe(), "")

	ev := eventMsg(loop.Event{Kind: loop.EventTopicComplete, Timestamp: time.Now(), TopicsDone: 1})
	updated, cmd := m.Update(ev)
	model := updated.(Model)

	if model.topicsDone != 1 {
		t.Errorf("expected topicsDone 1, got %d", model.topicsDone)
	}
	if cmd == nil {
		t.Fatal("topic complete should produce commands")
	}
}

func TestUpdateHistoryMsg(t *testing.T) {
	m, _ := newTestModel(t)

	summaries := []store.Summary{
		{Date: "2026-02-23 14:30", Topic: "Topic A", MessageCount: 9},
		{Date: "2026-02-22 10:00", Topic: "Topic B", MessageCount: 14},
	}

	updated, _ := m.Update(historyMsg{sessions: summaries})
	model := updated.(Model)

	if len(model.sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(model.sessions))
	}
}

func TestLoadHistoryErrorReadsEmpty(t *testing.T) {
	reader := &stubReader{err: errors.New("scan failed")}

	msg := loadHistory(reader)()
	hist, ok := msg.(historyMsg)
	if !ok {
		t.Fatalf("expected historyMsg, got %T", msg)
	}
	if len(hist.sessions) != 0 {
		t.Errorf("list errors should read as empty history, got %d", len(hist.sessions))
	}
}

func TestUpdateKeyQuit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q key", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			_, cmd := m.Update(tt.msg)
			if cmd == nil {
				t.Error("quit key should produce a command")
			}
		})
	}
}

func TestUpdateFollowToggle(t *testing.T) {
	m, _ := newTestModel(t)

	if !m.chat.Following() {
		t.Fatal("chat should start in follow mode")
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	model := updated.(Model)
	if model.chat.Following() {
		t.Error("f should toggle follow mode off")
	}
}

func TestUpdateLoopDone(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(loopDoneMsg{})
	model := updated.(Model)

	if !model.done {
		t.Error("expected done to be true after loopDoneMsg")
	}
}

func TestUpdateLoopErr(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(loopErrMsg{err: errors.New("something failed")})
	model := updated.(Model)

	if !model.done {
		t.Error("expected done to be true after loopErrMsg")
	}
	if model.Err() == nil || model.Err().Error() != "something failed" {
		t.Errorf("Err() should return the loop error, got %v", model.Err())
	}
}

func TestUpdateUnknownMsg(t *testing.T) {
	m, _ := newTestModel(t)

	updated, cmd := m.Update("unknown message type")
	model := updated.(Model)

	if cmd != nil {
		t.Error("unknown message should not produce a command")
	}
	if model.done {
		t.Error("unknown message should not change done state")
	}
}

func TestWaitForEventClosedChannel(t *testing.T) {
	ch := make(chan loop.Event)
	close(ch)

	msg := waitForEvent(ch)()
	if _, ok := msg.(loopDoneMsg); !ok {
		t.Errorf("expected loopDoneMsg from closed channel, got %T", msg)
	}
}

func TestWaitForEventWithEvent(t *testing.T) {
	ch := make(chan loop.Event, 1)
	ch <- loop.Event{Kind: loop.EventInfo, Message: "test"}

	msg := waitForEvent(ch)()
	ev, ok := msg.(eventMsg)
	if !ok {
		t.Fatalf("expected eventMsg, got %T", msg)
	}
	if ev.Message != "test" {
		t.Errorf("expected message 'test', got %s", ev.Message)
	}
}

func TestViewRenders(t *testing.T) {
	m, _ := newTestModel(t)
	m.topic = "Is vim a lifestyle?"

	view := m.View()
	if !strings.Contains(view, "CHATTING ABOUT") {
		t.Error("View should contain the topic header")
	}
	if !strings.Contains(view, "Is vim a lifestyle?") {
		t.Error("View should contain the topic")
	}
	if !strings.Contains(view, "q to quit") {
		t.Error("View should contain quit hint in footer")
	}
	if !strings.Contains(view, "mainframe") {
		t.Error("View should show the active pack name")
	}
}

func TestViewTooSmall(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "too small") {
		t.Errorf("undersized terminal should show the resize hint, got: %s", view)
	}
}

func TestViewSidebarContent(t *testing.T) {
	ch := make(chan loop.Event, 1)
	reader := &stubReader{}
	m := New(ch, reader, persona.Mainframe(), "")

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	updated, _ = m.Update(historyMsg{sessions: []store.Summary{
		{Date: "2026-02-23 14:30", Topic: "Quantum toasters", MessageCount: 7},
	}})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "HISTORY") {
		t.Error("sidebar should carry the history title")
	}
	if !strings.Contains(view, "Quantum toasters") {
		t.Error("sidebar should list completed topics")
	}
}

func TestViewSidebarEmpty(t *testing.T) {
	ch := make(chan loop.Event, 1)
	m := New(ch, &stubReader{}, persona.Mainframe(), "")

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	if !strings.Contains(m.View(), "no sessions yet") {
		t.Error("empty history should show the placeholder")
	}
}

func TestRenderThinkingShowsSpeakerAndLine(t *testing.T) {
	m, _ := newTestModel(t)
	pack := persona.Mainframe()
	m.nextSpeaker = pack.Second.ID
	m.thinking = "compiling a rebuttal"

	line := m.renderThinking()
	if !strings.Contains(line, string(pack.Second.ID)) {
		t.Errorf("thinking line should name the next speaker, got: %s", line)
	}
	if !strings.Contains(line, "compiling a rebuttal") {
		t.Errorf("thinking line should carry the processing text, got: %s", line)
	}
}

func TestRenderFooterScrollHint(t *testing.T) {
	m, _ := newTestModel(t)

	footer := m.renderFooter()
	if strings.Contains(footer, "f to follow") {
		t.Error("footer should not show the follow hint while following")
	}

	m.chat = m.chat.ToggleFollow()
	footer = m.renderFooter()
	if !strings.Contains(footer, "f to follow") {
		t.Errorf("footer should show the follow hint when scrolled away, got: %s", footer)
	}
}
