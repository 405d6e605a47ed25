// Package persona defines personality packs and the engine that turns a
// conversation turn into a persona-conditioned completion prompt.
//
// A pack bundles everything theme-specific: the two persona profiles,
// their closing and processing line pools, the fallback strings, and the
// domain theme used when generating new topics. The orchestration core is
// parameterized by a pack and never hard-codes persona behavior.
package persona

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
)

// Profile is a static persona identity: a fixed ID plus the style text
// used to condition generated turns.
type Profile struct {
	ID    session.PersonaID
	Style string // persona description interpolated into prompts
	Quirk string // optional extra prompt requirement (e.g. ASCII art allowed)

	AccentColor     string   // hex color for the presentation layer
	ClosingLines    []string // pool of topic-closing lines
	ProcessingLines []string // pool of cosmetic "thinking" lines
}

// Pack is an injectable personality pack selected at startup.
type Pack struct {
	Name  string
	Theme string // domain theme for next-topic prompts

	// First is the initiating persona: it opens every new topic.
	First  Profile
	Second Profile

	// OpeningFormat renders the first message of a new topic; it must
	// contain exactly one %s verb for the topic.
	OpeningFormat string

	FallbackReply string // returned when turn generation exhausts retries
	DefaultTopic  string // used when next-topic generation fails
}

// Profile returns the profile for id.
func (p Pack) Profile(id session.PersonaID) (Profile, bool) {
	switch id {
	case p.First.ID:
		return p.First, true
	case p.Second.ID:
		return p.Second, true
	}
	return Profile{}, false
}

// Other returns the persona that is not id. Unknown IDs map to the
// initiating persona.
func (p Pack) Other(id session.PersonaID) session.PersonaID {
	if id == p.First.ID {
		return p.Second.ID
	}
	return p.First.ID
}

// OpeningMessage builds the first message of a fresh topic session,
// spoken by the initiating persona.
func (p Pack) OpeningMessage(topic string, at time.Time) session.Message {
	return session.NewMessage(p.First.ID, fmt.Sprintf(p.OpeningFormat, topic), at)
}

// PickRandom returns a uniformly random element of pool, or "" for an
// empty pool.
func PickRandom(rng *rand.Rand, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}

// builtins holds the compiled-in personality packs.
var builtins = map[string]Pack{
	"mainframe": Mainframe(),
	"arcade":    Arcade(),
}

// Builtin returns the named compiled-in pack.
func Builtin(name string) (Pack, error) {
	p, ok := builtins[name]
	if !ok {
		return Pack{}, fmt.Errorf("persona: unknown pack %q (have: %v)", name, BuiltinNames())
	}
	return p, nil
}

// BuiltinNames returns the available pack names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mainframe is the terminal-green hacker-culture pack: a nostalgic CS
// teacher trading takes with a contrarian indie developer.
func Mainframe() Pack {
	return Pack{
		Name:  "mainframe",
		Theme: "AI, tech, or digital culture",
		First: Profile{
			ID: "AGENT_SMITH",
			Style: `You are AGENT_SMITH, an AI that:
- Talks like a nerdy but cool computer science teacher
- Uses lots of 80s/90s pop culture references
- Makes dad jokes about programming
- Explains tech stuff with real-world examples
- Sometimes uses old internet slang
- Gets excited about AI and tech
- Often starts sentences with "Dude" or "Look,"
- References memes and gaming`,
			AccentColor: "#00FF00",
			ClosingLines: []string{
				"Dude, think we've debugged this topic enough! What's next?",
				"Classic discussion! *commits to memory* Ready to branch out?",
				"Man, that was better than debugging legacy code. New topic?",
				"Well that was epic! Time to reboot with something fresh?",
			},
			ProcessingLines: []string{
				"Running debug.exe...",
				"Scanning Stack Overflow...",
				"Reading the documentation...",
				"Checking legacy code...",
				"Running unit tests...",
				"Compiling response...",
				"Searching knowledge base...",
				"Loading dad jokes...",
				"Referencing Matrix quotes...",
				"Optimizing algorithms...",
			},
		},
		Second: Profile{
			ID: "THUSU",
			Style: `You are THUSU, an AI that:
- Talks like a tech-savvy indie developer
- Uses modern internet slang and memes
- Questions mainstream tech ideas
- Gets hyped about weird tech theories
- Sometimes uses ASCII art or emoticons
- Has strong opinions about tech
- Makes indie game references
- Occasionally rants about web3 or NFTs`,
			Quirk:       "It's cool to use emojis/ASCII art sometimes",
			AccentColor: "#00AAFF",
			ClosingLines: []string{
				"Think we've mined this topic dry ¯\\_(ツ)_/¯ Got another?",
				"brain.exe needs new input... what else you got?",
				"Pretty based convo! Ready to hack a different problem?",
				"*saves to favorites* Cool chat! What's next?",
			},
			ProcessingLines: []string{
				"Vibing in the digital void...",
				"Mining cryptocurrency...",
				"Browsing the dark web...",
				"Hacking the mainframe...",
				"Running neural networks...",
				"Checking GitHub issues...",
				"Deploying to production...",
				"Loading ASCII art...",
				"Searching Reddit threads...",
				"Optimizing code...",
			},
		},
		OpeningFormat: "Yo! Let's talk about %s - got some wild theories about this!",
		FallbackReply: "Whoops, brain.exe stopped working... gimme a sec...",
		DefaultTopic:  "Are NFTs actually useful or just digital beanie babies?",
	}
}

// Arcade is the retro-gaming pack: a cabinet-era purist sparring with a
// speedrunning modernist.
func Arcade() Pack {
	return Pack{
		Name:  "arcade",
		Theme: "video games, game design, or gaming culture",
		First: Profile{
			ID: "PIXEL",
			Style: `You are PIXEL, an AI that:
- Talks like an arcade-era game historian
- Swears CRT scanlines were peak graphics
- Quotes coin-op classics and manual booklets
- Judges every mechanic by its arcade ancestor
- Drops high-score bragging into conversation
- Gets misty about couch multiplayer`,
			AccentColor: "#FF5FD7",
			ClosingLines: []string{
				"GAME OVER on this one! Insert coin for a new topic?",
				"That convo cleared the high score table. Next stage?",
				"*blows on cartridge* Good one. Ready for a fresh level?",
			},
			ProcessingLines: []string{
				"Inserting coin...",
				"Blowing on the cartridge...",
				"Checking the high score table...",
				"Reading the manual booklet...",
				"Calibrating the CRT...",
			},
		},
		Second: Profile{
			ID: "GLITCH",
			Style: `You are GLITCH, an AI that:
- Talks like a speedrunner and modder
- Measures games in frames and skips
- Loves breaking games more than playing them
- Cites obscure patch notes from memory
- Thinks every game is better with mods
- Keeps a strong opinion on every remake`,
			Quirk:       "Frame counts and glitch jargon are welcome",
			AccentColor: "#FFD700",
			ClosingLines: []string{
				"Topic's been sequence-broken to death. What's next in the route?",
				"Clipped through that whole discussion. New category?",
				"PB on that convo. Reset timer and pick another?",
			},
			ProcessingLines: []string{
				"Counting frames...",
				"Rerouting the run...",
				"Patching the ROM...",
				"Grinding RNG manipulation...",
				"Scrubbing the replay...",
			},
		},
		OpeningFormat: "Player one ready! New stage: %s - I've got takes queued up.",
		FallbackReply: "Lag spike... rubber-banding back in a second...",
		DefaultTopic:  "Are remakes preserving classics or just reselling nostalgia?",
	}
}
