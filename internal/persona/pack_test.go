package persona

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestBuiltin(t *testing.T) {
	t.Run("known packs resolve", func(t *testing.T) {
		for _, name := range BuiltinNames() {
			p, err := Builtin(name)
			if err != nil {
				t.Fatalf("Builtin(%q): %v", name, err)
			}
			if p.Name != name {
				t.Errorf("pack name = %q, want %q", p.Name, name)
			}
			if p.First.ID == p.Second.ID {
				t.Errorf("pack %q: personas must be distinct", name)
			}
			if !strings.Contains(p.OpeningFormat, "%s") {
				t.Errorf("pack %q: opening format missing topic verb", name)
			}
			if p.FallbackReply == "" || p.DefaultTopic == "" {
				t.Errorf("pack %q: missing fallback strings", name)
			}
			if len(p.First.ClosingLines) == 0 || len(p.Second.ClosingLines) == 0 {
				t.Errorf("pack %q: empty closing pools", name)
			}
		}
	})

	t.Run("unknown pack errors", func(t *testing.T) {
		if _, err := Builtin("disco"); err == nil {
			t.Fatal("expected error for unknown pack")
		}
	})
}

func TestPackOther(t *testing.T) {
	p := Mainframe()
	if got := p.Other(p.First.ID); got != p.Second.ID {
		t.Errorf("Other(first) = %q", got)
	}
	if got := p.Other(p.Second.ID); got != p.First.ID {
		t.Errorf("Other(second) = %q", got)
	}
	if got := p.Other("NOBODY"); got != p.First.ID {
		t.Errorf("Other(unknown) = %q, want initiating persona", got)
	}
}

func TestOpeningMessage(t *testing.T) {
	p := Mainframe()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := p.OpeningMessage("quantum computing hype", at)

	if msg.Role != p.First.ID {
		t.Errorf("opening message role = %q, want initiating persona", msg.Role)
	}
	if !strings.Contains(msg.Content, "quantum computing hype") {
		t.Errorf("opening content %q missing topic", msg.Content)
	}
	if msg.Timestamp != "12:00:00" {
		t.Errorf("timestamp = %q", msg.Timestamp)
	}
}

func TestPickRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if got := PickRandom(rng, nil); got != "" {
		t.Errorf("empty pool should yield empty string, got %q", got)
	}

	pool := []string{"a", "b", "c"}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		pick := PickRandom(rng, pool)
		seen[pick] = true
	}
	for _, want := range pool {
		if !seen[want] {
			t.Errorf("element %q never picked in 100 draws", want)
		}
	}
	if len(seen) != len(pool) {
		t.Errorf("picked outside pool: %v", seen)
	}
}
