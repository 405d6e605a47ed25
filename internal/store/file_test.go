package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return s
}

func messages(n int) []session.Message {
	msgs := make([]session.Message, n)
	for i := range msgs {
		role := session.PersonaID("AGENT_SMITH")
		if i%2 == 1 {
			role = "THUSU"
		}
		msgs[i] = session.Message{Role: role, Content: "turn", Timestamp: "09:00:00"}
	}
	return msgs
}

func TestSanitizeTopic(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"AI & Web3: Hype??", "AI__Web3_Hype"},
		{"plain topic", "plain_topic"},
		{"punctuation!!! everywhere...", "punctuation_everywhere"},
		{strings.Repeat("a", 40), strings.Repeat("a", 30)},
		{"", ""},
	}
	for _, c := range cases {
		if got := SanitizeTopic(c.topic); got != c.want {
			t.Errorf("SanitizeTopic(%q) = %q, want %q", c.topic, got, c.want)
		}
	}
}

func TestSaveFilename(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save("AI & Web3: Hype??", messages(2), session.StatusInProgress); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(s.dir, "topic_20250314_AI__Web3_Hype.json")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected session file %s: %v", want, err)
	}
}

func TestSaveDocumentShape(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save("some topic", messages(7), session.StatusInProgress); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, "topic_20250314_some_topic.json"))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["timestamp"] != "20250314_092653" {
		t.Errorf("timestamp = %v", raw["timestamp"])
	}
	if raw["evolution_stage"] != float64(1) {
		t.Errorf("evolution_stage = %v, want 1 for 7 messages", raw["evolution_stage"])
	}
	if raw["status"] != "in_progress" {
		t.Errorf("status = %v", raw["status"])
	}
}

func TestSaveThenLoadCurrent(t *testing.T) {
	t.Run("reload extends, never shrinks", func(t *testing.T) {
		s := newTestStore(t)
		first := messages(3)
		if err := s.Save("topic one", first, session.StatusInProgress); err != nil {
			t.Fatal(err)
		}

		loaded, err := s.LoadCurrent()
		if err != nil {
			t.Fatal(err)
		}
		if loaded == nil {
			t.Fatal("expected a current session")
		}
		if loaded.Topic != "topic one" {
			t.Errorf("topic = %q", loaded.Topic)
		}
		if len(loaded.Messages) != 3 {
			t.Fatalf("loaded %d messages, want 3", len(loaded.Messages))
		}

		// Append and save again: load must return the extended list.
		extended := append(loaded.Messages, session.Message{Role: "THUSU", Content: "more", Timestamp: "09:30:00"})
		if err := s.Save("topic one", extended, session.StatusInProgress); err != nil {
			t.Fatal(err)
		}
		reloaded, err := s.LoadCurrent()
		if err != nil {
			t.Fatal(err)
		}
		if len(reloaded.Messages) != 4 {
			t.Fatalf("reloaded %d messages, want 4", len(reloaded.Messages))
		}
		for i := range loaded.Messages {
			if reloaded.Messages[i] != loaded.Messages[i] {
				t.Errorf("message %d reordered: %+v vs %+v", i, reloaded.Messages[i], loaded.Messages[i])
			}
		}
	})

	t.Run("empty directory has no current session", func(t *testing.T) {
		s := newTestStore(t)
		loaded, err := s.LoadCurrent()
		if err != nil {
			t.Fatal(err)
		}
		if loaded != nil {
			t.Errorf("expected nil, got %+v", loaded)
		}
	})

	t.Run("completed latest session is never current again", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Save("finished topic", messages(9), session.StatusCompleted); err != nil {
			t.Fatal(err)
		}
		loaded, err := s.LoadCurrent()
		if err != nil {
			t.Fatal(err)
		}
		if loaded != nil {
			t.Errorf("completed session leaked back as current: %+v", loaded)
		}
	})

	t.Run("malformed latest file reads as no session", func(t *testing.T) {
		s := newTestStore(t)
		path := filepath.Join(s.dir, "topic_20250314_broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		loaded, err := s.LoadCurrent()
		if err != nil {
			t.Fatal(err)
		}
		if loaded != nil {
			t.Errorf("expected nil for malformed file, got %+v", loaded)
		}
	})
}

func TestSaveOverwritesSameTopicSameDay(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save("one topic", messages(2), session.StatusInProgress); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("one topic", messages(4), session.StatusInProgress); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 coalesced file, got %d", len(entries))
	}
	loaded, err := s.LoadCurrent()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Messages) != 4 {
		t.Errorf("overwrite lost messages: %d", len(loaded.Messages))
	}
}

func TestList(t *testing.T) {
	t.Run("orders by filename descending and projects fields", func(t *testing.T) {
		s := newTestStore(t)

		s.now = func() time.Time { return time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC) }
		if err := s.Save("older topic", messages(10), session.StatusCompleted); err != nil {
			t.Fatal(err)
		}
		s.now = func() time.Time { return time.Date(2025, 3, 14, 11, 30, 0, 0, time.UTC) }
		if err := s.Save("newer topic", messages(3), session.StatusInProgress); err != nil {
			t.Fatal(err)
		}

		got, err := s.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d summaries", len(got))
		}
		if got[0].Topic != "newer topic" || got[1].Topic != "older topic" {
			t.Errorf("wrong order: %+v", got)
		}
		if got[0].Date != "2025-03-14 11:30" {
			t.Errorf("date = %q", got[0].Date)
		}
		if got[0].MessageCount != 3 || got[0].Status != session.StatusInProgress {
			t.Errorf("projection = %+v", got[0])
		}
	})

	t.Run("skips malformed files without aborting", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Save("good topic", messages(2), session.StatusCompleted); err != nil {
			t.Fatal(err)
		}
		bad := filepath.Join(s.dir, "topic_20250101_bad.json")
		if err := os.WriteFile(bad, []byte("garbage"), 0644); err != nil {
			t.Fatal(err)
		}

		got, err := s.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Topic != "good topic" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("missing status defaults to completed", func(t *testing.T) {
		s := newTestStore(t)
		doc := `{"timestamp":"20250314_090000","topic":"legacy","messages":[]}`
		path := filepath.Join(s.dir, "topic_20250314_legacy.json")
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}

		got, err := s.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Status != session.StatusCompleted {
			t.Errorf("got %+v", got)
		}
	})
}
